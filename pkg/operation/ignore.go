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

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// 🙈 ignoreFilter hides paths matching glob patterns from everything below it
type ignoreFilter struct {
	Operations
	patterns []string
}

// NewIgnoreFilter returns a decorator dropping paths that match any of the
// doublestar patterns. No patterns disables it.
func NewIgnoreFilter(patterns []string) (Decorator, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid ignore pattern %q", p)
		}
	}
	pats := append([]string(nil), patterns...)
	return func(inner Operations) Operations {
		return &ignoreFilter{Operations: inner, patterns: pats}
	}, nil
}

// Ignored reports whether any pattern matches p
func (f *ignoreFilter) Ignored(p string) bool {
	return MatchAny(f.patterns, p)
}

// MatchAny reports whether p, in slash form, matches one of the doublestar patterns
func MatchAny(patterns []string, p string) bool {
	p = status.NormalizePath(p)
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, p); ok {
			return true
		}
	}
	return false
}

func (f *ignoreFilter) drop(paths []string) []string {
	if paths == nil {
		return nil
	}
	return keep(paths, func(p string) bool { return !f.Ignored(p) })
}

func (f *ignoreFilter) Status(ctx context.Context, paths []string, scope status.Scope) (bool, error) {
	return forward(ctx, f.drop(paths), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.Status(ctx, kept, scope)
	})
}

func (f *ignoreFilter) RequestStatus(paths []string, scope status.Scope) {
	if kept := f.drop(paths); len(kept) > 0 {
		f.Operations.RequestStatus(kept, scope)
	}
}

func (f *ignoreFilter) GetFilteredAssets(pred func(status.Record) bool) []status.Record {
	return f.Operations.GetFilteredAssets(func(r status.Record) bool {
		return !f.Ignored(r.Path) && (pred == nil || pred(r))
	})
}

func (f *ignoreFilter) Add(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, f.drop(paths), f.Operations.Add)
}

func (f *ignoreFilter) Revert(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, f.drop(paths), f.Operations.Revert)
}

func (f *ignoreFilter) Delete(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, f.drop(paths), f.Operations.Delete)
}

func (f *ignoreFilter) Commit(ctx context.Context, paths []string, message string) (bool, error) {
	return forward(ctx, f.drop(paths), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.Commit(ctx, kept, message)
	})
}

func (f *ignoreFilter) GetLock(ctx context.Context, paths []string, mode svn.LockMode) (bool, error) {
	return forward(ctx, f.drop(paths), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.GetLock(ctx, kept, mode)
	})
}

func (f *ignoreFilter) ReleaseLock(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, f.drop(paths), f.Operations.ReleaseLock)
}

func (f *ignoreFilter) Move(ctx context.Context, from, to string) (bool, error) {
	if f.Ignored(from) || f.Ignored(to) {
		return false, nil
	}
	return f.Operations.Move(ctx, from, to)
}

func (f *ignoreFilter) ChangeListAdd(ctx context.Context, paths []string, name string) (bool, error) {
	return forward(ctx, f.drop(paths), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.ChangeListAdd(ctx, kept, name)
	})
}

func (f *ignoreFilter) ChangeListRemove(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, f.drop(paths), f.Operations.ChangeListRemove)
}

func (f *ignoreFilter) Resolve(ctx context.Context, paths []string, resolution svn.Resolution) (bool, error) {
	return forward(ctx, f.drop(paths), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.Resolve(ctx, kept, resolution)
	})
}

func (f *ignoreFilter) Update(ctx context.Context, paths []string) (bool, error) {
	if paths == nil {
		return f.Operations.Update(ctx, nil)
	}
	return forward(ctx, f.drop(paths), f.Operations.Update)
}
