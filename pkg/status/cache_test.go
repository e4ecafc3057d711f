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

package status

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/svnsync/pkg/intern"
)

func TestCacheGetDefaultsOnMiss(t *testing.T) {
	cache := NewCache(intern.NewStore())

	rec := cache.Get("./art/hero.png")
	assert.Equal(t, "art/hero.png", rec.Path)
	assert.Equal(t, FileNone, rec.FileStatus)
	assert.Equal(t, ReflectionNone, rec.Reflection)
	assert.Equal(t, 0, cache.Len(), "a miss should not create an entry")
}

func TestCacheCaseInsensitive(t *testing.T) {
	cache := NewCache(intern.NewStore())
	cache.Merge([]Record{{Path: "Art/Hero.PNG", FileStatus: FileModified, Reflection: ReflectionLocal}})

	for _, p := range []string{"Art/Hero.PNG", "art/hero.png", "ART/HERO.png", "./art/hero.png"} {
		rec := cache.Get(p)
		assert.Equal(t, FileModified, rec.FileStatus, p)
		assert.Equal(t, "Art/Hero.PNG", rec.Path, "original casing is kept in the record")
	}
	assert.Equal(t, 1, cache.Len())
}

func TestCacheMerge(t *testing.T) {
	tests := []struct {
		name     string
		cached   *Record
		fresh    Record
		expected FileStatus
	}{
		{
			name:     "new path is stored as is",
			fresh:    Record{Path: "a.txt", FileStatus: FileAdded},
			expected: FileAdded,
		},
		{
			name:     "fresh record overwrites wholesale",
			cached:   &Record{Path: "a.txt", FileStatus: FileNormal, LockStatus: LockedHere},
			fresh:    Record{Path: "a.txt", FileStatus: FileModified},
			expected: FileModified,
		},
		{
			name:     "locally modified and modified on server becomes conflicted",
			cached:   &Record{Path: "a.txt", FileStatus: FileModified},
			fresh:    Record{Path: "a.txt", FileStatus: FileModified, RemoteStatus: RemoteModified},
			expected: FileConflicted,
		},
		{
			name:     "normal and modified on server stays as reported",
			cached:   &Record{Path: "a.txt", FileStatus: FileNormal},
			fresh:    Record{Path: "a.txt", FileStatus: FileNormal, RemoteStatus: RemoteModified},
			expected: FileNormal,
		},
		{
			name:     "locally modified without server change stays modified",
			cached:   &Record{Path: "a.txt", FileStatus: FileModified},
			fresh:    Record{Path: "a.txt", FileStatus: FileModified},
			expected: FileModified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(intern.NewStore())
			if tt.cached != nil {
				cache.Merge([]Record{*tt.cached})
			}
			cache.Merge([]Record{tt.fresh})

			rec := cache.Get(tt.fresh.Path)
			assert.Equal(t, tt.expected, rec.FileStatus)
			assert.Equal(t, LockNone, rec.LockStatus, "lock fields come from the fresh record only")
		})
	}
}

func TestCacheMarkPending(t *testing.T) {
	cache := NewCache(intern.NewStore())
	cache.Merge([]Record{{Path: "a.txt", FileStatus: FileNormal, Reflection: ReflectionRepository}})

	prev := cache.MarkPending([]string{"a.txt", "b.txt"})
	assert.Equal(t, []Reflection{ReflectionRepository, ReflectionNone}, prev)

	a := cache.Get("a.txt")
	assert.Equal(t, ReflectionPending, a.Reflection)
	assert.Equal(t, FileNormal, a.FileStatus, "pending keeps the last known status")

	b := cache.Get("b.txt")
	assert.Equal(t, ReflectionPending, b.Reflection)
	assert.Equal(t, FileNone, b.FileStatus)
}

func TestCacheRestore(t *testing.T) {
	cache := NewCache(intern.NewStore())
	cache.Merge([]Record{{Path: "a.txt", FileStatus: FileNormal, Reflection: ReflectionLocal}})

	paths := []string{"a.txt", "b.txt"}
	prev := cache.MarkPending(paths)
	cache.Restore(paths, prev)

	assert.Equal(t, ReflectionLocal, cache.Get("a.txt").Reflection)
	assert.Equal(t, ReflectionNone, cache.Get("b.txt").Reflection)

	prev = cache.MarkPending([]string{"a.txt"})
	cache.Merge([]Record{{Path: "a.txt", FileStatus: FileModified, Reflection: ReflectionRepository}})
	cache.Restore([]string{"a.txt"}, prev)
	assert.Equal(t, ReflectionRepository, cache.Get("a.txt").Reflection, "fresh results are not rolled back")
}

func TestCacheRestoreAfterRepeatedMarkPending(t *testing.T) {
	cache := NewCache(intern.NewStore())
	cache.Merge([]Record{{Path: "a.txt", FileStatus: FileNormal, Reflection: ReflectionRepository}})

	first := cache.MarkPending([]string{"a.txt"})
	second := cache.MarkPending([]string{"a.txt"})
	assert.Equal(t, []Reflection{ReflectionRepository}, first)
	assert.Equal(t, []Reflection{ReflectionRepository}, second, "an already pending path reports its settled level")

	cache.Restore([]string{"a.txt"}, second)
	assert.Equal(t, ReflectionRepository, cache.Get("a.txt").Reflection)
}

func TestCacheFilterIsSnapshot(t *testing.T) {
	cache := NewCache(intern.NewStore())
	cache.Merge([]Record{
		{Path: "c.txt", FileStatus: FileModified},
		{Path: "a.txt", FileStatus: FileModified},
		{Path: "b.txt", FileStatus: FileNormal},
	})

	modified := cache.Filter(func(r Record) bool { return r.FileStatus == FileModified })
	require.Len(t, modified, 2)
	assert.Equal(t, "a.txt", modified[0].Path)
	assert.Equal(t, "c.txt", modified[1].Path)

	cache.Merge([]Record{{Path: "a.txt", FileStatus: FileNormal}})
	assert.Equal(t, FileModified, modified[0].FileStatus, "snapshot should not see later merges")

	assert.Len(t, cache.Filter(nil), 3)
}

func TestCacheSeed(t *testing.T) {
	cache := NewCache(intern.NewStore())
	cache.Merge([]Record{{Path: "a.txt", FileStatus: FileModified, Reflection: ReflectionLocal}})

	added := cache.Seed([]Record{
		{Path: "a.txt", FileStatus: FileNormal, Reflection: ReflectionRepository},
		{Path: "b.txt", FileStatus: FileAdded, Reflection: ReflectionLocal},
	})
	assert.Equal(t, 1, added)

	assert.Equal(t, FileModified, cache.Get("a.txt").FileStatus, "seed never overrides live data")
	b := cache.Get("b.txt")
	assert.Equal(t, FileAdded, b.FileStatus)
	assert.Equal(t, ReflectionNone, b.Reflection)
}

func TestCacheRemoveAndClear(t *testing.T) {
	cache := NewCache(intern.NewStore())
	cache.Merge([]Record{
		{Path: "a.txt", FileStatus: FileNormal},
		{Path: "b.txt", FileStatus: FileNormal},
		{Path: "c.txt", FileStatus: FileNormal},
	})

	cache.Remove([]string{"A.TXT", "missing.txt"})
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, FileNone, cache.Get("a.txt").FileStatus)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache(intern.NewStore())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p := fmt.Sprintf("dir_%d/file_%d.txt", w, i)
				cache.MarkPending([]string{p})
				cache.Merge([]Record{{Path: p, FileStatus: FileNormal, Reflection: ReflectionLocal}})
				_ = cache.Get(p)
				_ = cache.Filter(nil)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 400, cache.Len())
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "a/b.txt", expected: "a/b.txt"},
		{name: "dot prefix", input: "./a/b.txt", expected: "a/b.txt"},
		{name: "trailing slash", input: "a/b/", expected: "a/b"},
		{name: "root slash kept", input: "/", expected: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}
