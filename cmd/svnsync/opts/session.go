// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opts

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/engine"
	"github.com/walteh/svnsync/pkg/intern"
	"github.com/walteh/svnsync/pkg/operation"
	"github.com/walteh/svnsync/pkg/process"
	"github.com/walteh/svnsync/pkg/state"
)

// 🔌 Session is an engine wired into the full operation pipeline
type Session struct {
	Engine *engine.Engine
	Ops    operation.Operations
	Root   string
	Ignore []string
	store  *state.Store
}

// SessionOptions tunes Open for one command
type SessionOptions struct {
	// Background runs the refresh loop; one-shot commands refresh explicitly
	Background bool
	// OnStatusCompleted is passed to the engine
	OnStatusCompleted func()
}

// 🚀 Open starts an engine for the configured working copy. The pipeline is
// ignore, logging, sidecar, status filter, engine, outermost first.
func (o *RootOpts) Open(ctx context.Context, so SessionOptions) (*Session, error) {
	cfg := o.Config
	logger := zerolog.Ctx(ctx)

	root, err := filepath.Abs(cfg.Resolve(cfg.WorkingDirectory))
	if err != nil {
		return nil, errors.Errorf("resolving working directory: %w", err)
	}
	env, err := cfg.Environment()
	if err != nil {
		return nil, err
	}

	runner := o.Runner
	if runner == nil {
		runner = process.NewExecRunner()
	}

	s := &Session{Root: root, Ignore: cfg.Ignore}

	var snapshots engine.Snapshotter
	if cfg.SnapshotPath != "" {
		store, err := state.Open(ctx, cfg.Resolve(cfg.SnapshotPath))
		if err != nil {
			return nil, errors.Errorf("opening snapshot: %w", err)
		}
		s.store = store
		snapshots = store
	}

	var progress func(string)
	if o.Verbose && o.User != nil {
		progress = o.User.LogProgress
	}

	keys := intern.NewStore()
	eng, err := engine.New(engine.Options{
		Tool:              cfg.Tool,
		WorkingDir:        root,
		Env:               env,
		NonInteractive:    cfg.NonInteractive,
		RefreshInterval:   cfg.Interval(),
		BatchSize:         cfg.BatchSize,
		Runner:            runner,
		Store:             keys,
		Snapshots:         snapshots,
		OnProgress:        progress,
		OnStatusCompleted: so.OnStatusCompleted,
		PauseRefresh:      !so.Background,
	})
	if err != nil {
		s.closeStore()
		return nil, errors.Errorf("creating engine: %w", err)
	}

	ignore, err := operation.NewIgnoreFilter(cfg.Ignore)
	if err != nil {
		s.closeStore()
		return nil, err
	}

	if err := eng.Start(ctx); err != nil {
		s.closeStore()
		return nil, errors.Errorf("starting engine: %w", err)
	}

	s.Engine = eng
	s.Ops = operation.Chain(eng,
		ignore,
		operation.NewLogging(logger),
		operation.NewSidecarFilter(keys, cfg.SidecarSuffix),
		operation.NewStatusFilter(),
	)
	return s, nil
}

// Close stops the engine and flushes the snapshot
func (s *Session) Close(ctx context.Context) error {
	var err error
	if s.Engine != nil {
		err = s.Engine.Close(ctx)
	}
	if cerr := s.closeStore(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (s *Session) closeStore() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// 📂 Paths converts command line arguments into working copy paths
func (s *Session) Paths(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		p, err := s.relative(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Expand is Paths with directories replaced by everything below them.
// Admin directories and ignored paths are skipped.
func (s *Session) Expand(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{s.Root}
	}
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, a := range args {
		abs, err := s.absolute(a)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			p, err := s.relative(a)
			if err != nil {
				return nil, err
			}
			add(p)
			continue
		}
		err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() && d.Name() == ".svn" {
				return filepath.SkipDir
			}
			if p == s.Root {
				return nil
			}
			rel, err := s.relative(p)
			if err != nil {
				return err
			}
			if operation.MatchAny(s.Ignore, rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			add(rel)
			return nil
		})
		if err != nil {
			return nil, errors.Errorf("walking %s: %w", a, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Session) absolute(arg string) (string, error) {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg), nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", arg, err)
	}
	return abs, nil
}

func (s *Session) relative(arg string) (string, error) {
	abs, err := s.absolute(arg)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(s.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("%s is outside the working copy %s", arg, s.Root)
	}
	return filepath.ToSlash(rel), nil
}
