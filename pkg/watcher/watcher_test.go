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

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/svnsync/pkg/status"
)

type request struct {
	path  string
	scope status.Scope
}

type recorder struct {
	mu        sync.Mutex
	requested []request
	removed   []string
}

func (r *recorder) RequestStatus(paths []string, scope status.Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range paths {
		r.requested = append(r.requested, request{p, scope})
	}
}

func (r *recorder) RemoveFromDatabase(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, paths...)
}

func (r *recorder) sawRequest(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.requested, func(q request) bool { return q.path == path })
}

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger().WithContext(context.Background())
}

func TestHandle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".svn"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Assets"), 0o755))

	tests := []struct {
		name        string
		event       fsnotify.Event
		wantRequest []request
		wantRemoved []string
	}{
		{
			name:        "write",
			event:       fsnotify.Event{Name: filepath.Join(root, "Assets", "a.png"), Op: fsnotify.Write},
			wantRequest: []request{{"Assets/a.png", status.ScopePrevious}},
		},
		{
			name:        "create",
			event:       fsnotify.Event{Name: filepath.Join(root, "b.txt"), Op: fsnotify.Create},
			wantRequest: []request{{"b.txt", status.ScopePrevious}},
		},
		{
			name:        "remove",
			event:       fsnotify.Event{Name: filepath.Join(root, "c.txt"), Op: fsnotify.Remove},
			wantRequest: []request{{"c.txt", status.ScopeLocal}},
			wantRemoved: []string{"c.txt"},
		},
		{
			name:        "rename",
			event:       fsnotify.Event{Name: filepath.Join(root, "d.txt"), Op: fsnotify.Rename},
			wantRequest: []request{{"d.txt", status.ScopeLocal}},
			wantRemoved: []string{"d.txt"},
		},
		{
			name:  "chmod_only",
			event: fsnotify.Event{Name: filepath.Join(root, "e.txt"), Op: fsnotify.Chmod},
		},
		{
			name:  "admin_dir",
			event: fsnotify.Event{Name: filepath.Join(root, ".svn", "wc.db"), Op: fsnotify.Write},
		},
		{
			name:  "ignored",
			event: fsnotify.Event{Name: filepath.Join(root, "Assets", "x.tmp"), Op: fsnotify.Write},
		},
		{
			name:  "outside_root",
			event: fsnotify.Event{Name: filepath.Join(filepath.Dir(root), "elsewhere.txt"), Op: fsnotify.Write},
		},
		{
			name:  "root_itself",
			event: fsnotify.Event{Name: root, Op: fsnotify.Write},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			w, err := New(root, rec, WithIgnore([]string{"**/*.tmp"}))
			require.NoError(t, err)
			t.Cleanup(func() { w.fs.Close() })

			w.handle(testContext(t), tt.event)

			assert.Equal(t, tt.wantRequest, rec.requested)
			assert.Equal(t, tt.wantRemoved, rec.removed)
		})
	}
}

func TestNewSkipsAdminAndIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{".svn/pristine", "Assets/Models", "Library/cache"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}

	w, err := New(root, &recorder{}, WithIgnore([]string{"Library", "Library/**"}))
	require.NoError(t, err)
	defer w.fs.Close()

	// root, Assets, Assets/Models
	assert.Equal(t, 3, w.Dirs())
}

func TestRunDeliversEvents(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	w, err := New(root, rec)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testContext(t))
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("one"), 0o644))
	require.Eventually(t, func() bool { return rec.sawRequest("a.txt") }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.Eventually(t, func() bool { return w.Dirs() == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("two"), 0o644))
	require.Eventually(t, func() bool { return rec.sawRequest("sub/b.txt") }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
