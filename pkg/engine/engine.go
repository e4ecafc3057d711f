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

package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/svnsync/pkg/intern"
	"github.com/walteh/svnsync/pkg/metrics"
	"github.com/walteh/svnsync/pkg/operation"
	"github.com/walteh/svnsync/pkg/process"
	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// Defaults applied by New
const (
	DefaultTool            = "svn"
	DefaultRefreshInterval = 200 * time.Millisecond
)

// ErrInactive is returned by Start on a closed engine
var ErrInactive = errors.New("engine is not active")

// 💾 Snapshotter persists cache records across runs
type Snapshotter interface {
	Load(ctx context.Context) ([]status.Record, error)
	Save(ctx context.Context, records []status.Record) error
}

// 🔧 Options configures an Engine
type Options struct {
	// Tool is the svn executable
	Tool string
	// WorkingDir is the working copy root; paths are relative to it
	WorkingDir string
	// Env is added to the environment of every invocation
	Env map[string]string
	// NonInteractive passes --non-interactive to svn
	NonInteractive bool
	// RefreshInterval is the background loop tick
	RefreshInterval time.Duration
	// BatchSize bounds the paths per command line
	BatchSize int

	// Runner executes svn (required)
	Runner process.Runner
	// Store interns cache keys; a new one is created when nil
	Store *intern.Store
	// Snapshots seeds the cache on Start and saves it on Close; optional
	Snapshots Snapshotter

	// OnProgress receives every line svn prints on stdout
	OnProgress func(line string)
	// OnStatusCompleted fires once per completed status call
	OnStatusCompleted func()

	// PauseRefresh starts the engine with the background loop idle
	PauseRefresh bool
}

// 🚂 Engine is the status synchronization engine. It implements operation.Operations.
type Engine struct {
	opts   Options
	cache  *status.Cache
	runner process.Runner

	opMu sync.Mutex

	queueMu     sync.Mutex
	localQueue  map[string]string
	remoteQueue map[string]string

	active  atomic.Bool
	refresh atomic.Bool
	started atomic.Bool

	logger    zerolog.Logger
	lifeCtx   context.Context
	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
}

var _ operation.Operations = (*Engine)(nil)

// 🏭 New creates an engine; call Start before using it
func New(opts Options) (*Engine, error) {
	if opts.Runner == nil {
		return nil, errors.Errorf("runner is required")
	}
	if opts.BatchSize < 0 {
		return nil, errors.Errorf("batch size must not be negative, got %d", opts.BatchSize)
	}
	if opts.Tool == "" {
		opts.Tool = DefaultTool
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = svn.DefaultBatchSize
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Store == nil {
		opts.Store = intern.NewStore()
	}

	return &Engine{
		opts:        opts,
		cache:       status.NewCache(opts.Store),
		runner:      opts.Runner,
		localQueue:  make(map[string]string),
		remoteQueue: make(map[string]string),
		logger:      zerolog.Nop(),
		lifeCtx:     context.Background(),
	}, nil
}

// 🚀 Start seeds the cache from the snapshot and launches the refresh loop.
// The logger in ctx is used for background work.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return errors.Errorf("starting engine: %w", ErrInactive)
	}
	e.logger = *zerolog.Ctx(ctx)

	if e.opts.Snapshots != nil {
		records, err := e.opts.Snapshots.Load(ctx)
		if err != nil {
			e.logger.Warn().Err(err).Msg("ignoring unreadable snapshot")
		} else {
			seeded := e.cache.Seed(records)
			e.logger.Debug().Int("records", seeded).Msg("cache seeded from snapshot")
		}
	}

	e.lifeCtx, e.cancel = context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(e.lifeCtx)
	e.group = group

	e.refresh.Store(!e.opts.PauseRefresh)
	e.active.Store(true)
	metrics.SetCacheRecords(e.cache.Len())

	group.Go(func() error { return e.loop(gctx) })

	e.logger.Debug().
		Str("working_dir", e.opts.WorkingDir).
		Dur("interval", e.opts.RefreshInterval).
		Int("batch_size", e.opts.BatchSize).
		Msg("engine started")
	return nil
}

// 🛑 Close stops the loop, aborts the running svn invocation and writes the
// snapshot. The engine serves nothing afterwards.
func (e *Engine) Close(ctx context.Context) error {
	var err error
	e.closeOnce.Do(func() {
		e.active.Store(false)
		if e.cancel != nil {
			e.cancel()
		}
		if e.group != nil {
			if gerr := e.group.Wait(); gerr != nil && !errors.Is(gerr, context.Canceled) {
				err = errors.Errorf("waiting for refresh loop: %w", gerr)
			}
		}

		// wait out an in-flight invocation before snapshotting
		e.opMu.Lock()
		defer e.opMu.Unlock()

		if e.opts.Snapshots != nil && e.started.Load() {
			if serr := e.opts.Snapshots.Save(ctx, e.cache.Filter(nil)); serr != nil && err == nil {
				err = errors.Errorf("saving snapshot: %w", serr)
			}
		}
		e.logger.Debug().Msg("engine closed")
	})
	return err
}

// IsActive reports whether the engine is started and not closed
func (e *Engine) IsActive() bool {
	return e.active.Load()
}

// SetRefreshEnabled pauses or resumes the background loop
func (e *Engine) SetRefreshEnabled(enabled bool) {
	e.refresh.Store(enabled)
}

func (e *Engine) log(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &e.logger
}

// 🔄 loop drains the queues on every tick until the engine shuts down
func (e *Engine) loop(ctx context.Context) error {
	ticker := time.NewTicker(e.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !e.refresh.Load() || !e.active.Load() {
				continue
			}
			e.cycle(ctx)
		}
	}
}

// cycle runs one refresh; a panic is logged and the loop keeps polling
func (e *Engine) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("panic", fmt.Sprint(r)).Msg("refresh cycle panicked")
		}
	}()
	if err := e.Refresh(ctx); err != nil && ctx.Err() == nil {
		ev := e.logger.Warn().Err(err)
		if kind, ok := svn.KindOf(err); ok {
			ev = ev.Stringer("kind", kind)
		}
		ev.Msg("status refresh failed")
	}
}

// Refresh drains both queues and checks what they held. It is what the
// background loop runs on every tick.
func (e *Engine) Refresh(ctx context.Context) error {
	local, remote := e.drain()

	var errs []error
	if len(remote) > 0 {
		if _, err := e.status(ctx, remote, status.ScopeRemote); err != nil {
			errs = append(errs, err)
		}
	}
	if len(local) > 0 {
		if _, err := e.status(ctx, local, status.ScopeLocal); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// drain empties both queues in one critical section. Paths waiting for a remote
// check are left out of the local batch.
func (e *Engine) drain() (local, remote []string) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	for k, p := range e.remoteQueue {
		remote = append(remote, p)
		delete(e.localQueue, k)
	}
	for _, p := range e.localQueue {
		local = append(local, p)
	}
	e.remoteQueue = make(map[string]string)
	e.localQueue = make(map[string]string)
	metrics.SetQueueDepth(0, 0)
	return local, remote
}

func (e *Engine) enqueue(local, remote []string) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	for _, p := range local {
		e.localQueue[queueKey(p)] = p
	}
	for _, p := range remote {
		e.remoteQueue[queueKey(p)] = p
	}
	metrics.SetQueueDepth(len(e.localQueue), len(e.remoteQueue))
}

// dequeue drops paths a finished check answered. A remote check answers both queues.
func (e *Engine) dequeue(paths []string, scope status.Scope) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	for _, p := range paths {
		k := queueKey(p)
		delete(e.localQueue, k)
		if scope == status.ScopeRemote {
			delete(e.remoteQueue, k)
		}
	}
	metrics.SetQueueDepth(len(e.localQueue), len(e.remoteQueue))
}

// QueueLen returns the number of queued local and remote paths
func (e *Engine) QueueLen() (local, remote int) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	return len(e.localQueue), len(e.remoteQueue)
}

func queueKey(p string) string {
	return strings.ToLower(status.NormalizePath(p))
}

// unique normalizes paths and drops case-insensitive duplicates
func unique(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		n := status.NormalizePath(p)
		if n == "" {
			continue
		}
		k := strings.ToLower(n)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, n)
	}
	return out
}
