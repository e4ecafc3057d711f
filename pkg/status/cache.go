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
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/walteh/svnsync/pkg/intern"
)

// 🗄️ Cache maps interned, case-insensitive paths to status records
type Cache struct {
	store *intern.Store

	mu      sync.RWMutex
	records map[string]entry
}

type entry struct {
	key    intern.Key
	record Record

	// settled is the level the record had before it went Pending
	settled Reflection
}

// 🏭 NewCache creates an empty cache keyed through store
func NewCache(store *intern.Store) *Cache {
	return &Cache{
		store:   store,
		records: make(map[string]entry),
	}
}

// NormalizePath converts a caller path into the form used as a cache key and on the svn command line
func NormalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func (c *Cache) key(path string) intern.Key {
	return c.store.Decompose(strings.ToLower(NormalizePath(path)))
}

// 🔍 Get returns the record for path, or a default record on a miss
func (c *Cache) Get(path string) Record {
	k := c.key(path)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.records[k.ID()]; ok {
		return e.record
	}
	return NewRecord(NormalizePath(path))
}

// 📋 Filter copies every record matching pred, ordered by path
func (c *Cache) Filter(pred func(Record) bool) []Record {
	c.mu.RLock()
	out := make([]Record, 0)
	for _, e := range c.records {
		if pred == nil || pred(e.record) {
			out = append(out, e.record)
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ⏳ MarkPending moves every path to ReflectionPending and returns the level each
// path was settled at. A path that is already pending reports the level it had
// before its first MarkPending, not ReflectionPending.
func (c *Cache) MarkPending(paths []string) []Reflection {
	keys := make([]intern.Key, len(paths))
	for i, p := range paths {
		keys[i] = c.key(p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	previous := make([]Reflection, len(paths))
	for i, k := range keys {
		e, ok := c.records[k.ID()]
		if !ok {
			e = entry{key: k, record: NewRecord(NormalizePath(paths[i]))}
		}
		if e.record.Reflection != ReflectionPending {
			e.settled = e.record.Reflection
		}
		previous[i] = e.settled
		e.record.Reflection = ReflectionPending
		c.records[k.ID()] = e
	}
	return previous
}

// Restore puts back the reflection levels MarkPending returned, for paths that
// are still pending. Used when a status check fails and nothing was learned.
func (c *Cache) Restore(paths []string, previous []Reflection) {
	keys := make([]intern.Key, len(paths))
	for i, p := range paths {
		keys[i] = c.key(p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, k := range keys {
		e, ok := c.records[k.ID()]
		if !ok || e.record.Reflection != ReflectionPending || i >= len(previous) {
			continue
		}
		e.record.Reflection = previous[i]
		c.records[k.ID()] = e
	}
}

// 🔀 Merge stores fresh records under one lock acquisition. A record overwrites the
// cached one wholesale, except that a path cached as Modified whose fresh record
// reports a repository-side modification becomes Conflicted.
func (c *Cache) Merge(records []Record) {
	keys := make([]intern.Key, len(records))
	for i, r := range records {
		keys[i] = c.key(r.Path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, r := range records {
		k := keys[i]
		r.Path = NormalizePath(r.Path)
		if prev, ok := c.records[k.ID()]; ok {
			if prev.record.FileStatus == FileModified && r.RemoteStatus == RemoteModified {
				r.FileStatus = FileConflicted
			}
		}
		c.records[k.ID()] = entry{key: k, record: r}
	}
}

// 🌱 Seed adds records for paths the cache does not know yet, at ReflectionNone
func (c *Cache) Seed(records []Record) int {
	keys := make([]intern.Key, len(records))
	for i, r := range records {
		keys[i] = c.key(r.Path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for i, r := range records {
		k := keys[i]
		if _, ok := c.records[k.ID()]; ok {
			continue
		}
		r.Reflection = ReflectionNone
		c.records[k.ID()] = entry{key: k, record: r}
		added++
	}
	return added
}

// 🗑️ Remove drops the records for paths
func (c *Cache) Remove(paths []string) {
	keys := make([]intern.Key, len(paths))
	for i, p := range paths {
		keys[i] = c.key(p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.records, k.ID())
	}
}

// 🧹 Clear drops every record
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]entry)
}

// Len returns the number of cached records
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
