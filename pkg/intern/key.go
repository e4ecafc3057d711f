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
	"encoding/binary"
	"hash/fnv"
	"slices"
)

// 🔑 Key is an immutable sequence of token indices into a Store
type Key struct {
	store *Store
	idx   []int32
	hash  uint64
	id    string
}

func newKey(s *Store, idx []int32) Key {
	buf := make([]byte, 4*len(idx))
	for i, v := range idx {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	h := fnv.New64a()
	_, _ = h.Write(buf)
	return Key{
		store: s,
		idx:   idx,
		hash:  h.Sum64(),
		id:    string(buf),
	}
}

// String composes the key back into its original text
func (k Key) String() string {
	if k.store == nil {
		return ""
	}
	return k.store.Compose(k)
}

// Hash folds the index sequence; equal keys hash equally
func (k Key) Hash() uint64 {
	return k.hash
}

// ID is a comparable form of the index sequence, suitable as a map key
func (k Key) ID() string {
	return k.id
}

// Len returns the number of tokens
func (k Key) Len() int {
	return len(k.idx)
}

// IsEmpty reports whether the key has no tokens
func (k Key) IsEmpty() bool {
	return len(k.idx) == 0
}

// Equal compares the index sequences element-wise
func (k Key) Equal(other Key) bool {
	return slices.Equal(k.idx, other.idx)
}

// StartsWith reports whether prefix's tokens open k
func (k Key) StartsWith(prefix Key) bool {
	if len(prefix.idx) > len(k.idx) {
		return false
	}
	return slices.Equal(k.idx[:len(prefix.idx)], prefix.idx)
}

// EndsWith reports whether suffix's tokens close k
func (k Key) EndsWith(suffix Key) bool {
	if len(suffix.idx) > len(k.idx) {
		return false
	}
	return slices.Equal(k.idx[len(k.idx)-len(suffix.idx):], suffix.idx)
}

// Contains reports whether sub appears as a contiguous token run inside k
func (k Key) Contains(sub Key) bool {
	return k.findFirst(sub) >= 0
}

// FindFirstIndex returns the character offset of the first token run matching sub, or -1
func (k Key) FindFirstIndex(sub Key) int {
	return k.charOffset(k.findFirst(sub))
}

// FindLastIndex returns the character offset of the last token run matching sub, or -1
func (k Key) FindLastIndex(sub Key) int {
	return k.charOffset(k.findLast(sub))
}

// TrimEnd drops suffix's tokens from the end of k; k is returned as is when suffix
// is empty or does not close k
func (k Key) TrimEnd(suffix Key) Key {
	if suffix.IsEmpty() || !k.EndsWith(suffix) {
		return k
	}
	idx := slices.Clone(k.idx[:len(k.idx)-len(suffix.idx)])
	return newKey(k.store, idx)
}

// Concat appends other's tokens to k. The zero Key acts as the empty key.
func (k Key) Concat(other Key) Key {
	switch {
	case k.store != nil:
		return k.store.Concatenate(k, other)
	case other.store != nil:
		return other.store.Concatenate(k, other)
	default:
		return Key{}
	}
}

// ConcatString decomposes str and appends it to k. The zero Key has no store to
// intern str into, so it must come from Store.Decompose.
func (k Key) ConcatString(str string) Key {
	if k.store == nil {
		return Key{}
	}
	return k.store.ConcatenateString(k, str)
}

// findFirst returns the token offset of the first match, or -1
func (k Key) findFirst(sub Key) int {
	n := len(sub.idx)
	if n == 0 || n > len(k.idx) {
		return -1
	}
	for i := 0; i+n <= len(k.idx); i++ {
		if slices.Equal(k.idx[i:i+n], sub.idx) {
			return i
		}
	}
	return -1
}

// findLast returns the token offset of the last match, or -1
func (k Key) findLast(sub Key) int {
	n := len(sub.idx)
	if n == 0 || n > len(k.idx) {
		return -1
	}
	for i := len(k.idx) - n; i >= 0; i-- {
		if slices.Equal(k.idx[i:i+n], sub.idx) {
			return i
		}
	}
	return -1
}

// charOffset converts a token offset into a character offset
func (k Key) charOffset(tokenOffset int) int {
	if tokenOffset < 0 {
		return -1
	}
	offset := 0
	for _, i := range k.idx[:tokenOffset] {
		offset += len(k.store.part(i))
	}
	return offset
}
