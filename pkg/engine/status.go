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
	"slices"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/metrics"
	"github.com/walteh/svnsync/pkg/process"
	"github.com/walteh/svnsync/pkg/status"
	"github.com/walteh/svnsync/pkg/svn"
)

// 📨 RequestStatus marks paths Pending and queues them for the next refresh.
// ScopePrevious sends each path to the queue matching the level it was last
// reflected at. It never blocks on svn.
func (e *Engine) RequestStatus(paths []string, scope status.Scope) {
	if len(paths) == 0 || !e.IsActive() {
		return
	}
	paths = unique(paths)

	previous := e.cache.MarkPending(paths)

	var local, remote []string
	for i, p := range paths {
		switch {
		case scope == status.ScopeRemote:
			remote = append(remote, p)
		case scope == status.ScopePrevious && previous[i] == status.ReflectionRepository:
			remote = append(remote, p)
		default:
			local = append(local, p)
		}
	}
	e.enqueue(local, remote)
}

// 🔍 Status checks paths now and merges the answer into the cache. It returns
// false when the engine is inactive, svn failed or printed nothing.
func (e *Engine) Status(ctx context.Context, paths []string, scope status.Scope) (bool, error) {
	if !e.IsActive() {
		return false, nil
	}
	paths = unique(paths)
	if len(paths) == 0 {
		return true, nil
	}
	if scope != status.ScopePrevious {
		return e.status(ctx, paths, scope)
	}

	var local, remote []string
	for _, p := range paths {
		if e.cache.Get(p).Reflection == status.ReflectionRepository {
			remote = append(remote, p)
		} else {
			local = append(local, p)
		}
	}
	ok := true
	for _, part := range []struct {
		paths []string
		scope status.Scope
	}{{remote, status.ScopeRemote}, {local, status.ScopeLocal}} {
		if len(part.paths) == 0 {
			continue
		}
		partOK, err := e.status(ctx, part.paths, part.scope)
		if err != nil {
			return false, err
		}
		ok = ok && partOK
	}
	return ok, nil
}

// status runs one check at a concrete scope. All batches are collected before
// the cache is touched; a failed or aborted call leaves the cache as it was.
func (e *Engine) status(ctx context.Context, paths []string, scope status.Scope) (bool, error) {
	if !e.IsActive() {
		return false, nil
	}
	paths = unique(paths)
	logger := e.log(ctx)

	previous := e.cache.MarkPending(paths)

	records := make([]status.Record, 0, len(paths))
	empty := true
	for batch := range slices.Chunk(paths, e.opts.BatchSize) {
		res, err := e.execute(ctx, "status", svn.StatusArgs(scope, batch))
		if err != nil {
			e.cache.Restore(paths, previous)
			metrics.RecordRefresh(scope.String(), false)
			return false, err
		}
		if strings.TrimSpace(res.Stdout) == "" {
			continue
		}
		empty = false

		parsed, err := svn.ParseStatus([]byte(res.Stdout), scope)
		if err != nil {
			e.cache.Restore(paths, previous)
			metrics.RecordRefresh(scope.String(), false)
			return false, errors.Errorf("parsing status of %d paths: %w", len(batch), err)
		}
		records = append(records, parsed...)
	}
	if empty {
		e.cache.Restore(paths, previous)
		metrics.RecordRefresh(scope.String(), false)
		logger.Warn().Int("paths", len(paths)).Msg("svn status printed nothing")
		return false, nil
	}

	// paths svn did not report are unknown to it
	reported := make(map[string]bool, len(records))
	for _, r := range records {
		reported[queueKey(r.Path)] = true
	}
	for _, p := range paths {
		if !reported[queueKey(p)] {
			r := status.NewRecord(p)
			r.Reflection = scope.Reflection()
			r.AllowLocalEdit = true
			records = append(records, r)
		}
	}

	e.cache.Merge(records)
	e.dequeue(paths, scope)

	metrics.RecordRefresh(scope.String(), true)
	metrics.SetCacheRecords(e.cache.Len())
	logger.Debug().Int("paths", len(paths)).Stringer("scope", scope).Msg("status merged")

	if e.opts.OnStatusCompleted != nil {
		e.opts.OnStatusCompleted()
	}
	return true, nil
}

// 🎬 execute runs one svn invocation under the operation lock and classifies
// its stderr. Closing the engine aborts it.
func (e *Engine) execute(ctx context.Context, command string, args []string) (*process.Result, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if !e.IsActive() {
		return nil, errors.Errorf("running svn %s: %w", command, ErrInactive)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(e.lifeCtx, cancel)
	defer stop()

	start := time.Now()
	res, err := e.runner.Run(ctx, process.Request{
		Tool:   e.opts.Tool,
		Args:   svn.Global(args, e.opts.NonInteractive),
		Dir:    e.opts.WorkingDir,
		Env:    e.opts.Env,
		OnLine: e.opts.OnProgress,
	})
	if err != nil {
		result := "error"
		if errors.Is(err, process.ErrAborted) {
			result = "aborted"
		}
		metrics.RecordInvocation(command, result, time.Since(start))
		return res, errors.Errorf("running svn %s: %w", command, err)
	}

	stderr := res.Stderr
	if command == "status" {
		stderr = svn.StripNotFoundWarnings(stderr)
	}
	if failure := svn.Classify(command, stderr); failure != nil {
		metrics.RecordInvocation(command, failure.Kind.String(), res.Duration)
		return res, failure
	}
	if res.ExitCode != 0 && strings.TrimSpace(res.Stderr) == "" {
		metrics.RecordInvocation(command, svn.KindGeneric.String(), res.Duration)
		return res, &svn.Error{Kind: svn.KindGeneric, Command: command}
	}

	metrics.RecordInvocation(command, "ok", res.Duration)
	return res, nil
}

// GetAssetStatus returns the cached record for path, or a default one
func (e *Engine) GetAssetStatus(path string) status.Record {
	return e.cache.Get(path)
}

// GetFilteredAssets snapshots every cached record matching pred
func (e *Engine) GetFilteredAssets(pred func(status.Record) bool) []status.Record {
	return e.cache.Filter(pred)
}

// RemoveFromDatabase forgets paths
func (e *Engine) RemoveFromDatabase(paths []string) {
	e.cache.Remove(paths)
	metrics.SetCacheRecords(e.cache.Len())
}

// ClearDatabase forgets every record
func (e *Engine) ClearDatabase() {
	e.cache.Clear()
	metrics.SetCacheRecords(0)
}
