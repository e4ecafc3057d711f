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
	"sort"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// 🧹 statusFilter drops requests the cached status already answers
type statusFilter struct {
	Operations
}

// NewStatusFilter returns a decorator that only forwards paths whose cached
// status makes the operation meaningful
func NewStatusFilter() Decorator {
	return func(inner Operations) Operations {
		return &statusFilter{Operations: inner}
	}
}

func (f *statusFilter) fileStatus(p string) status.FileStatus {
	return f.GetAssetStatus(p).FileStatus
}

func (f *statusFilter) versioned(p string) bool {
	return f.fileStatus(p).IsVersioned()
}

func (f *statusFilter) insideUnversioned(p string) bool {
	for _, dir := range parents(p) {
		if f.fileStatus(dir) == status.FileUnversioned {
			return true
		}
	}
	return false
}

func (f *statusFilter) Add(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, keep(paths, func(p string) bool {
		return f.fileStatus(p) == status.FileUnversioned && !f.insideUnversioned(p)
	}), f.Operations.Add)
}

func (f *statusFilter) Delete(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, keep(paths, func(p string) bool {
		return f.fileStatus(p) != status.FileUnversioned
	}), f.Operations.Delete)
}

// Revert forwards versioned paths, shortest first so parent folders revert before their children
func (f *statusFilter) Revert(ctx context.Context, paths []string) (bool, error) {
	kept := keep(paths, f.versioned)
	sort.SliceStable(kept, func(i, j int) bool {
		if len(kept[i]) != len(kept[j]) {
			return len(kept[i]) < len(kept[j])
		}
		return kept[i] < kept[j]
	})
	return forward(ctx, kept, f.Operations.Revert)
}

func (f *statusFilter) Commit(ctx context.Context, paths []string, message string) (bool, error) {
	return forward(ctx, keep(paths, func(p string) bool {
		return f.fileStatus(p) != status.FileIgnored
	}), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.Commit(ctx, kept, message)
	})
}

// GetLock skips paths that are already locked, by anyone, in normal mode. A lock
// held by someone else is not an error here: the repository status is refreshed
// and false returned.
func (f *statusFilter) GetLock(ctx context.Context, paths []string, mode svn.LockMode) (bool, error) {
	kept := keep(paths, func(p string) bool {
		rec := f.GetAssetStatus(p)
		if !rec.FileStatus.IsVersioned() {
			return false
		}
		return mode == svn.LockForce || !rec.IsLocked()
	})
	ok, err := forward(ctx, kept, func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.GetLock(ctx, kept, mode)
	})
	if errors.Is(err, svn.ErrLockedByOther) {
		f.RequestStatus(kept, status.ScopeRemote)
		return false, nil
	}
	return ok, err
}

func (f *statusFilter) ReleaseLock(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, keep(paths, func(p string) bool {
		return f.GetAssetStatus(p).LockStatus == status.LockedHere
	}), f.Operations.ReleaseLock)
}

func (f *statusFilter) Move(ctx context.Context, from, to string) (bool, error) {
	if !f.versioned(from) || f.insideUnversioned(to) {
		return false, nil
	}
	return f.Operations.Move(ctx, from, to)
}

func (f *statusFilter) ChangeListAdd(ctx context.Context, paths []string, name string) (bool, error) {
	return forward(ctx, keep(paths, f.versioned), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.ChangeListAdd(ctx, kept, name)
	})
}

func (f *statusFilter) ChangeListRemove(ctx context.Context, paths []string) (bool, error) {
	return forward(ctx, keep(paths, func(p string) bool {
		return f.GetAssetStatus(p).Changelist != ""
	}), f.Operations.ChangeListRemove)
}

func (f *statusFilter) Resolve(ctx context.Context, paths []string, resolution svn.Resolution) (bool, error) {
	return forward(ctx, keep(paths, func(p string) bool {
		rec := f.GetAssetStatus(p)
		return rec.FileStatus == status.FileConflicted || rec.TreeConflict || rec.PropertyStatus == status.PropertyConflicted
	}), func(ctx context.Context, kept []string) (bool, error) {
		return f.Operations.Resolve(ctx, kept, resolution)
	})
}

// Update with no paths updates the whole working copy; otherwise only versioned paths go through
func (f *statusFilter) Update(ctx context.Context, paths []string) (bool, error) {
	if len(paths) == 0 {
		return f.Operations.Update(ctx, nil)
	}
	return forward(ctx, keep(paths, f.versioned), f.Operations.Update)
}
