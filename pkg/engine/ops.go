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
	"os"
	"path/filepath"
	"slices"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// mutate runs command over paths in batches and schedules a refresh of every
// path it was asked about, whether or not svn succeeded
func (e *Engine) mutate(ctx context.Context, command string, paths []string, args func(batch []string) []string) (bool, error) {
	if !e.IsActive() {
		return false, nil
	}
	paths = unique(paths)
	if len(paths) == 0 {
		return true, nil
	}
	defer e.RequestStatus(paths, status.ScopePrevious)

	if err := e.batched(ctx, command, paths, args); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) batched(ctx context.Context, command string, paths []string, args func(batch []string) []string) error {
	for batch := range slices.Chunk(paths, e.opts.BatchSize) {
		if _, err := e.execute(ctx, command, args(batch)); err != nil {
			return err
		}
	}
	return nil
}

// Add schedules paths for addition
func (e *Engine) Add(ctx context.Context, paths []string) (bool, error) {
	return e.mutate(ctx, "add", paths, svn.AddArgs)
}

// Revert drops local changes
func (e *Engine) Revert(ctx context.Context, paths []string) (bool, error) {
	return e.mutate(ctx, "revert", paths, svn.RevertArgs)
}

// Delete schedules paths for deletion
func (e *Engine) Delete(ctx context.Context, paths []string) (bool, error) {
	return e.mutate(ctx, "delete", paths, svn.DeleteArgs)
}

// GetLock locks paths in the repository
func (e *Engine) GetLock(ctx context.Context, paths []string, mode svn.LockMode) (bool, error) {
	return e.mutate(ctx, "lock", paths, func(batch []string) []string {
		return svn.LockArgs(batch, mode)
	})
}

// ReleaseLock unlocks paths
func (e *Engine) ReleaseLock(ctx context.Context, paths []string) (bool, error) {
	return e.mutate(ctx, "unlock", paths, svn.UnlockArgs)
}

// ChangeListAdd moves paths into the named changelist
func (e *Engine) ChangeListAdd(ctx context.Context, paths []string, name string) (bool, error) {
	if name == "" {
		return false, errors.New("changelist name is required")
	}
	return e.mutate(ctx, "changelist", paths, func(batch []string) []string {
		return svn.ChangelistAddArgs(name, batch)
	})
}

// ChangeListRemove takes paths out of their changelist
func (e *Engine) ChangeListRemove(ctx context.Context, paths []string) (bool, error) {
	return e.mutate(ctx, "changelist", paths, svn.ChangelistRemoveArgs)
}

// Resolve marks conflicts on paths resolved
func (e *Engine) Resolve(ctx context.Context, paths []string, resolution svn.Resolution) (bool, error) {
	if !resolution.Valid() {
		return false, errors.Errorf("unknown resolution %q", resolution)
	}
	return e.mutate(ctx, "resolve", paths, func(batch []string) []string {
		return svn.ResolveArgs(resolution, batch)
	})
}

// Move renames from to to, keeping history
func (e *Engine) Move(ctx context.Context, from, to string) (bool, error) {
	if !e.IsActive() {
		return false, nil
	}
	defer e.RequestStatus([]string{from, to}, status.ScopePrevious)

	if _, err := e.execute(ctx, "move", svn.MoveArgs(from, to)); err != nil {
		return false, err
	}
	return true, nil
}

// Update brings paths up to HEAD. With no paths the whole working copy is
// updated and every cached path is refreshed.
func (e *Engine) Update(ctx context.Context, paths []string) (bool, error) {
	if !e.IsActive() {
		return false, nil
	}
	if len(paths) > 0 {
		return e.mutate(ctx, "update", paths, svn.UpdateArgs)
	}

	defer func() {
		cached := e.cache.Filter(nil)
		all := make([]string, len(cached))
		for i, r := range cached {
			all[i] = r.Path
		}
		e.RequestStatus(all, status.ScopePrevious)
	}()
	if _, err := e.execute(ctx, "update", svn.UpdateArgs(nil)); err != nil {
		return false, err
	}
	return true, nil
}

// Cleanup recovers a working copy left locked by an interrupted operation
func (e *Engine) Cleanup(ctx context.Context) (bool, error) {
	if !e.IsActive() {
		return false, nil
	}
	if _, err := e.execute(ctx, "cleanup", svn.CleanupArgs()); err != nil {
		return false, err
	}
	return true, nil
}

// 📦 Commit sends paths to the repository as one revision. Unversioned paths
// present on disk are added and missing paths deleted first, so the revision
// matches what the caller sees.
func (e *Engine) Commit(ctx context.Context, paths []string, message string) (bool, error) {
	if !e.IsActive() {
		return false, nil
	}
	if message == "" {
		return false, errors.New("commit message is required")
	}
	paths = unique(paths)
	if len(paths) == 0 {
		return true, nil
	}
	defer e.RequestStatus(paths, status.ScopePrevious)

	logger := e.log(ctx)

	var toAdd, toDelete []string
	for _, p := range paths {
		switch e.cache.Get(p).FileStatus {
		case status.FileUnversioned:
			if _, err := os.Stat(filepath.Join(e.opts.WorkingDir, filepath.FromSlash(p))); err == nil {
				toAdd = append(toAdd, p)
			}
		case status.FileMissing:
			toDelete = append(toDelete, p)
		}
	}

	if len(toAdd) > 0 {
		logger.Debug().Int("paths", len(toAdd)).Msg("adding unversioned paths before commit")
		if err := e.batched(ctx, "add", toAdd, svn.AddArgs); err != nil {
			return false, err
		}
	}
	if len(toDelete) > 0 {
		logger.Debug().Int("paths", len(toDelete)).Msg("deleting missing paths before commit")
		if err := e.batched(ctx, "delete", toDelete, svn.DeleteArgs); err != nil {
			return false, err
		}
	}

	// one revision: long lists go through a targets file instead of batches
	if len(paths) <= e.opts.BatchSize {
		if _, err := e.execute(ctx, "commit", svn.CommitArgs(message, paths, "")); err != nil {
			return false, err
		}
		return true, nil
	}

	targets, err := os.CreateTemp("", "svnsync-targets-*.txt")
	if err != nil {
		return false, errors.Errorf("creating targets file: %w", err)
	}
	defer os.Remove(targets.Name())

	if _, err := targets.WriteString(svn.TargetsFile(paths)); err != nil {
		targets.Close()
		return false, errors.Errorf("writing targets file: %w", err)
	}
	if err := targets.Close(); err != nil {
		return false, errors.Errorf("closing targets file: %w", err)
	}

	if _, err := e.execute(ctx, "commit", svn.CommitArgs(message, nil, targets.Name())); err != nil {
		return false, err
	}
	return true, nil
}
