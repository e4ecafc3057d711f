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

	"github.com/walteh/svnsync/pkg/intern"
	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// 📎 sidecarFilter keeps companion files (e.g. "hero.png.meta") next to their asset
type sidecarFilter struct {
	Operations
	store     *intern.Store
	suffix    intern.Key
	suffixStr string
}

// NewSidecarFilter returns a decorator that adds each path's sidecar to outgoing
// path lists and hides sidecars from read queries. An empty suffix disables it.
func NewSidecarFilter(store *intern.Store, suffix string) Decorator {
	if suffix == "" {
		return nil
	}
	return func(inner Operations) Operations {
		return &sidecarFilter{
			Operations: inner,
			store:      store,
			suffix:     store.Decompose(suffix),
			suffixStr:  suffix,
		}
	}
}

func (f *sidecarFilter) isSidecar(p string) bool {
	return f.store.Decompose(p).EndsWith(f.suffix)
}

func (f *sidecarFilter) sidecarOf(p string) string {
	return f.store.ConcatenateString(f.store.Decompose(p), f.suffixStr).String()
}

func (f *sidecarFilter) primaryOf(p string) string {
	return f.store.Decompose(p).TrimEnd(f.suffix).String()
}

// known reports whether the cache has ever seen path
func (f *sidecarFilter) known(p string) bool {
	return f.GetAssetStatus(p).FileStatus != status.FileNone
}

// expand appends sidecars after their assets. With onlyKnown set, sidecars the
// cache has no status for are left out.
func (f *sidecarFilter) expand(paths []string, onlyKnown bool) []string {
	if paths == nil {
		return nil
	}
	seen := make(map[string]bool, len(paths)*2)
	out := make([]string, 0, len(paths)*2)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range paths {
		add(p)
		if f.isSidecar(p) {
			continue
		}
		sc := f.sidecarOf(p)
		if !onlyKnown || f.known(sc) {
			add(sc)
		}
	}
	return out
}

func (f *sidecarFilter) Status(ctx context.Context, paths []string, scope status.Scope) (bool, error) {
	return f.Operations.Status(ctx, f.expand(paths, false), scope)
}

func (f *sidecarFilter) RequestStatus(paths []string, scope status.Scope) {
	f.Operations.RequestStatus(f.expand(paths, false), scope)
}

// GetFilteredAssets reports sidecars under their asset's path, once per asset
func (f *sidecarFilter) GetFilteredAssets(pred func(status.Record) bool) []status.Record {
	records := f.Operations.GetFilteredAssets(pred)

	seen := make(map[string]bool, len(records))
	out := make([]status.Record, 0, len(records))
	for _, r := range records {
		if !f.isSidecar(r.Path) {
			seen[r.Path] = true
			out = append(out, r)
		}
	}
	for _, r := range records {
		if !f.isSidecar(r.Path) {
			continue
		}
		primary := f.primaryOf(r.Path)
		if seen[primary] {
			continue
		}
		seen[primary] = true
		r.Path = primary
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (f *sidecarFilter) Add(ctx context.Context, paths []string) (bool, error) {
	return f.Operations.Add(ctx, f.expand(paths, true))
}

func (f *sidecarFilter) Revert(ctx context.Context, paths []string) (bool, error) {
	return f.Operations.Revert(ctx, f.expand(paths, true))
}

func (f *sidecarFilter) Delete(ctx context.Context, paths []string) (bool, error) {
	return f.Operations.Delete(ctx, f.expand(paths, true))
}

func (f *sidecarFilter) Commit(ctx context.Context, paths []string, message string) (bool, error) {
	return f.Operations.Commit(ctx, f.expand(paths, true), message)
}

func (f *sidecarFilter) GetLock(ctx context.Context, paths []string, mode svn.LockMode) (bool, error) {
	return f.Operations.GetLock(ctx, f.expand(paths, true), mode)
}

func (f *sidecarFilter) ReleaseLock(ctx context.Context, paths []string) (bool, error) {
	return f.Operations.ReleaseLock(ctx, f.expand(paths, true))
}

// Move moves the sidecar along with its asset
func (f *sidecarFilter) Move(ctx context.Context, from, to string) (bool, error) {
	ok, err := f.Operations.Move(ctx, from, to)
	if err != nil || !ok || f.isSidecar(from) {
		return ok, err
	}
	sc := f.sidecarOf(from)
	if !f.known(sc) {
		return ok, nil
	}
	return f.Operations.Move(ctx, sc, f.sidecarOf(to))
}

func (f *sidecarFilter) ChangeListAdd(ctx context.Context, paths []string, name string) (bool, error) {
	return f.Operations.ChangeListAdd(ctx, f.expand(paths, true), name)
}

func (f *sidecarFilter) ChangeListRemove(ctx context.Context, paths []string) (bool, error) {
	return f.Operations.ChangeListRemove(ctx, f.expand(paths, true))
}

func (f *sidecarFilter) Resolve(ctx context.Context, paths []string, resolution svn.Resolution) (bool, error) {
	return f.Operations.Resolve(ctx, f.expand(paths, true), resolution)
}

func (f *sidecarFilter) Update(ctx context.Context, paths []string) (bool, error) {
	return f.Operations.Update(ctx, f.expand(paths, true))
}

func (f *sidecarFilter) RemoveFromDatabase(paths []string) {
	f.Operations.RemoveFromDatabase(f.expand(paths, false))
}
