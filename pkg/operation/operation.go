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
	"path"

	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// 🎯 Operations is everything a caller can ask of the version control layer.
// Mutations report success as a bool; classified svn failures come back as
// *svn.Error values.
type Operations interface {
	// Status checks paths synchronously and merges the result into the cache
	Status(ctx context.Context, paths []string, scope status.Scope) (bool, error)
	// RequestStatus queues paths for the next background refresh
	RequestStatus(paths []string, scope status.Scope)
	// GetAssetStatus returns the cached record, or a default one
	GetAssetStatus(path string) status.Record
	// GetFilteredAssets snapshots every cached record matching pred
	GetFilteredAssets(pred func(status.Record) bool) []status.Record

	Add(ctx context.Context, paths []string) (bool, error)
	Revert(ctx context.Context, paths []string) (bool, error)
	Delete(ctx context.Context, paths []string) (bool, error)
	Commit(ctx context.Context, paths []string, message string) (bool, error)
	GetLock(ctx context.Context, paths []string, mode svn.LockMode) (bool, error)
	ReleaseLock(ctx context.Context, paths []string) (bool, error)
	Move(ctx context.Context, from, to string) (bool, error)
	ChangeListAdd(ctx context.Context, paths []string, name string) (bool, error)
	ChangeListRemove(ctx context.Context, paths []string) (bool, error)
	Resolve(ctx context.Context, paths []string, resolution svn.Resolution) (bool, error)
	// Update brings paths, or the whole working copy when paths is nil, up to HEAD
	Update(ctx context.Context, paths []string) (bool, error)
	Cleanup(ctx context.Context) (bool, error)

	// RemoveFromDatabase forgets cached records, e.g. after a file was deleted on disk
	RemoveFromDatabase(paths []string)
	// ClearDatabase forgets every cached record
	ClearDatabase()
}

// 🧅 Decorator wraps one Operations in another
type Decorator func(Operations) Operations

// Chain wraps inner with decorators so that the first one listed is outermost
func Chain(inner Operations, decorators ...Decorator) Operations {
	ops := inner
	for i := len(decorators) - 1; i >= 0; i-- {
		if decorators[i] == nil {
			continue
		}
		ops = decorators[i](ops)
	}
	return ops
}

// forward calls fn unless every path was filtered out
func forward(ctx context.Context, paths []string, fn func(context.Context, []string) (bool, error)) (bool, error) {
	if len(paths) == 0 {
		return true, nil
	}
	return fn(ctx, paths)
}

func keep(paths []string, pred func(string) bool) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// parents lists the ancestor directories of p, nearest first
func parents(p string) []string {
	out := []string{}
	dir := path.Dir(status.NormalizePath(p))
	for dir != "." && dir != "/" && dir != "" {
		out = append(out, dir)
		dir = path.Dir(dir)
	}
	return out
}
