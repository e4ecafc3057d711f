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

package operation

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// 📝 logging records every operation that passes through it
type logging struct {
	Operations
	fallback *zerolog.Logger
}

// NewLogging returns a decorator that logs each call, its path count and
// outcome. Calls without a context log to fallback.
func NewLogging(fallback *zerolog.Logger) Decorator {
	if fallback == nil {
		nop := zerolog.Nop()
		fallback = &nop
	}
	return func(inner Operations) Operations {
		return &logging{Operations: inner, fallback: fallback}
	}
}

func (l *logging) logger(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return l.fallback
	}
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		return l.fallback
	}
	return logger
}

func (l *logging) observe(ctx context.Context, op string, paths []string, fn func() (bool, error)) (bool, error) {
	logger := l.logger(ctx)
	start := time.Now()
	logger.Debug().Str("operation", op).Int("paths", len(paths)).Msg("operation started")

	ok, err := fn()

	ev := logger.Debug()
	switch {
	case err != nil:
		ev = logger.Error().Err(err)
		if kind, classified := svn.KindOf(err); classified {
			ev = ev.Stringer("kind", kind)
		}
	case !ok:
		ev = logger.Warn()
	}
	ev.Str("operation", op).
		Int("paths", len(paths)).
		Bool("ok", ok).
		Dur("duration", time.Since(start)).
		Msg("operation finished")
	return ok, err
}

func (l *logging) Status(ctx context.Context, paths []string, scope status.Scope) (bool, error) {
	return l.observe(ctx, "status:"+scope.String(), paths, func() (bool, error) {
		return l.Operations.Status(ctx, paths, scope)
	})
}

func (l *logging) RequestStatus(paths []string, scope status.Scope) {
	l.fallback.Trace().Int("paths", len(paths)).Stringer("scope", scope).Msg("status requested")
	l.Operations.RequestStatus(paths, scope)
}

func (l *logging) Add(ctx context.Context, paths []string) (bool, error) {
	return l.observe(ctx, "add", paths, func() (bool, error) { return l.Operations.Add(ctx, paths) })
}

func (l *logging) Revert(ctx context.Context, paths []string) (bool, error) {
	return l.observe(ctx, "revert", paths, func() (bool, error) { return l.Operations.Revert(ctx, paths) })
}

func (l *logging) Delete(ctx context.Context, paths []string) (bool, error) {
	return l.observe(ctx, "delete", paths, func() (bool, error) { return l.Operations.Delete(ctx, paths) })
}

func (l *logging) Commit(ctx context.Context, paths []string, message string) (bool, error) {
	return l.observe(ctx, "commit", paths, func() (bool, error) { return l.Operations.Commit(ctx, paths, message) })
}

func (l *logging) GetLock(ctx context.Context, paths []string, mode svn.LockMode) (bool, error) {
	return l.observe(ctx, "lock:"+mode.String(), paths, func() (bool, error) { return l.Operations.GetLock(ctx, paths, mode) })
}

func (l *logging) ReleaseLock(ctx context.Context, paths []string) (bool, error) {
	return l.observe(ctx, "unlock", paths, func() (bool, error) { return l.Operations.ReleaseLock(ctx, paths) })
}

func (l *logging) Move(ctx context.Context, from, to string) (bool, error) {
	return l.observe(ctx, "move", []string{from, to}, func() (bool, error) { return l.Operations.Move(ctx, from, to) })
}

func (l *logging) ChangeListAdd(ctx context.Context, paths []string, name string) (bool, error) {
	return l.observe(ctx, "changelist:"+name, paths, func() (bool, error) { return l.Operations.ChangeListAdd(ctx, paths, name) })
}

func (l *logging) ChangeListRemove(ctx context.Context, paths []string) (bool, error) {
	return l.observe(ctx, "changelist:remove", paths, func() (bool, error) { return l.Operations.ChangeListRemove(ctx, paths) })
}

func (l *logging) Resolve(ctx context.Context, paths []string, resolution svn.Resolution) (bool, error) {
	return l.observe(ctx, "resolve:"+string(resolution), paths, func() (bool, error) {
		return l.Operations.Resolve(ctx, paths, resolution)
	})
}

func (l *logging) Update(ctx context.Context, paths []string) (bool, error) {
	return l.observe(ctx, "update", paths, func() (bool, error) { return l.Operations.Update(ctx, paths) })
}

func (l *logging) Cleanup(ctx context.Context) (bool, error) {
	return l.observe(ctx, "cleanup", nil, func() (bool, error) { return l.Operations.Cleanup(ctx) })
}

func (l *logging) RemoveFromDatabase(paths []string) {
	l.fallback.Debug().Int("paths", len(paths)).Msg("removing records")
	l.Operations.RemoveFromDatabase(paths)
}

func (l *logging) ClearDatabase() {
	l.fallback.Debug().Msg("clearing records")
	l.Operations.ClearDatabase()
}
