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

package intern

import (
	"strings"
	"sync"
	"sync/atomic"
)

// 🔪 Delimiters lists the characters a string is split on
const Delimiters = "./@_"

// 📚 Store owns the token table and the decomposition cache
type Store struct {
	mu sync.Mutex

	// parts is append-only; readers load the current slice header atomically
	parts atomic.Pointer[[]string]
	index map[string]int32
	cache map[string]Key
}

// 🏭 NewStore creates an empty store
func NewStore() *Store {
	s := &Store{
		index: make(map[string]int32),
		cache: make(map[string]Key),
	}
	empty := make([]string, 0, 64)
	s.parts.Store(&empty)
	return s
}

// 🔍 Decompose splits s on the delimiters, interns every token and returns the key for s
func (s *Store) Decompose(str string) Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.cache[str]; ok {
		return k
	}

	tokens := split(str)
	idx := make([]int32, 0, len(tokens))
	for _, tok := range tokens {
		idx = append(idx, s.internLocked(tok))
	}

	k := newKey(s, idx)
	s.cache[str] = k
	return k
}

// internLocked returns the index for tok, appending it to the table if unseen
func (s *Store) internLocked(tok string) int32 {
	if i, ok := s.index[tok]; ok {
		return i
	}

	cur := *s.parts.Load()
	i := int32(len(cur))
	next := append(cur, tok)
	s.parts.Store(&next)
	s.index[tok] = i
	return i
}

// part returns the fragment stored at i
func (s *Store) part(i int32) string {
	return (*s.parts.Load())[i]
}

// 📏 Len returns the number of distinct fragments interned so far
func (s *Store) Len() int {
	return len(*s.parts.Load())
}

// 🧩 Compose concatenates the fragments referenced by k
func (s *Store) Compose(k Key) string {
	if len(k.idx) == 0 {
		return ""
	}
	parts := *s.parts.Load()
	var b strings.Builder
	for _, i := range k.idx {
		b.WriteString(parts[i])
	}
	return b.String()
}

// 🔗 Concatenate returns a key holding a's tokens followed by b's
func (s *Store) Concatenate(a, b Key) Key {
	idx := make([]int32, 0, len(a.idx)+len(b.idx))
	idx = append(idx, a.idx...)
	idx = append(idx, b.idx...)
	return newKey(s, idx)
}

// 🔗 ConcatenateString decomposes str and appends it to k
func (s *Store) ConcatenateString(k Key, str string) Key {
	return s.Concatenate(k, s.Decompose(str))
}

// split cuts str into tokens, keeping every delimiter as a token of its own and
// dropping empty fragments
func split(str string) []string {
	if str == "" {
		return nil
	}

	tokens := make([]string, 0, 8)
	start := 0
	for i := 0; i < len(str); i++ {
		if strings.IndexByte(Delimiters, str[i]) < 0 {
			continue
		}
		if i > start {
			tokens = append(tokens, str[start:i])
		}
		tokens = append(tokens, str[i:i+1])
		start = i + 1
	}
	if start < len(str) {
		tokens = append(tokens, str[start:])
	}
	return tokens
}
