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

// Package watcher turns filesystem events in a working copy into status
// requests.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/metrics"
	"github.com/walteh/svnsync/pkg/operation"
	"github.com/walteh/svnsync/pkg/status"
)

// 🎯 Target receives the requests a watcher produces
type Target interface {
	RequestStatus(paths []string, scope status.Scope)
	RemoveFromDatabase(paths []string)
}

// Option configures a Watcher
type Option func(*Watcher)

// WithIgnore drops events for paths matching any of the doublestar patterns
func WithIgnore(patterns []string) Option {
	return func(w *Watcher) {
		w.ignore = append(w.ignore, patterns...)
	}
}

// 👀 Watcher watches every directory below a working copy root
type Watcher struct {
	root   string
	target Target
	ignore []string
	fs     *fsnotify.Watcher

	mu   sync.Mutex
	dirs map[string]bool
}

// 🏭 New watches root recursively. Events are delivered once Run is called.
func New(root string, target Target, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", root, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:   abs,
		target: target,
		fs:     fsw,
		dirs:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Dirs returns the number of watched directories
func (w *Watcher) Dirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// 🔄 Run forwards events until ctx is done, then releases the watcher
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	defer w.fs.Close()

	logger.Debug().Str("root", w.root).Int("dirs", w.Dirs()).Msg("watching working copy")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	rel, ok := w.relative(ev.Name)
	if !ok {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		metrics.RecordWatchEvent("remove")
		w.forget(ev.Name)
		w.target.RemoveFromDatabase([]string{rel})
		w.target.RequestStatus([]string{rel}, status.ScopeLocal)
	case ev.Has(fsnotify.Create):
		metrics.RecordWatchEvent("create")
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("dir", rel).Msg("cannot watch new directory")
			}
		}
		w.target.RequestStatus([]string{rel}, status.ScopePrevious)
	case ev.Has(fsnotify.Write):
		metrics.RecordWatchEvent("write")
		w.target.RequestStatus([]string{rel}, status.ScopePrevious)
	}
}

// relative maps an absolute event path to a working copy path, rejecting
// admin and ignored paths
func (w *Watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if isAdmin(rel) || operation.MatchAny(w.ignore, rel) {
		return "", false
	}
	return rel, true
}

func isAdmin(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if part == ".svn" {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return errors.Errorf("walking %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root {
			if _, ok := w.relative(p); !ok {
				return filepath.SkipDir
			}
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.dirs[p] {
			return nil
		}
		if err := w.fs.Add(p); err != nil {
			return errors.Errorf("watching %s: %w", p, err)
		}
		w.dirs[p] = true
		return nil
	})
}

// forget drops a removed directory and everything below it
func (w *Watcher) forget(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := name + string(filepath.Separator)
	for d := range w.dirs {
		if d == name || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
}
