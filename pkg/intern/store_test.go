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
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"A",
		"A.B.C.D",
		"Assets/Art/hero_idle@2x.png",
		"..",
		"/leading/slash",
		"trailing/",
		"a__b..c//d@@e",
		"Assets/Art/hero.png.meta",
	}

	store := NewStore()
	for _, s := range tests {
		t.Run(fmt.Sprintf("%q", s), func(t *testing.T) {
			k := store.Decompose(s)
			assert.Equal(t, s, store.Compose(k), "compose should invert decompose")
			assert.Equal(t, s, k.String(), "String should compose")
		})
	}
}

func TestDecomposeInterning(t *testing.T) {
	store := NewStore()

	a := store.Decompose("A.B.C.D")
	b := store.Decompose("A.B.C.D")
	lower := store.Decompose("a.b.c.d")

	assert.Equal(t, a.Hash(), b.Hash(), "independent decompositions should hash equally")
	assert.True(t, a.Equal(b), "independent decompositions should be equal")
	assert.Equal(t, a.ID(), b.ID(), "ids should match")
	assert.False(t, a.Equal(lower), "interning is case-sensitive")
	assert.NotEqual(t, a.ID(), lower.ID(), "ids should differ by case")

	// A, ., B, C, D, a, b, c, d
	assert.Equal(t, 9, store.Len(), "each distinct fragment is stored once")
	assert.Equal(t, 7, a.Len(), "delimiters are tokens")
}

func TestStartsEndsWith(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name       string
		key        string
		other      string
		startsWith bool
		endsWith   bool
	}{
		{name: "suffix", key: "A.B.C.D", other: "C.D", endsWith: true},
		{name: "prefix", key: "A.B.C.D", other: "A.B", startsWith: true},
		{name: "different_delimiters", key: "A/B/C/D", other: "A.B.C.D"},
		{name: "self", key: "A.B", other: "A.B", startsWith: true, endsWith: true},
		{name: "longer", key: "A", other: "A.B"},
		{name: "empty_other", key: "A.B", other: "", startsWith: true, endsWith: true},
		{name: "partial_token", key: "Assets/hero.png", other: "ng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := store.Decompose(tt.key)
			o := store.Decompose(tt.other)
			assert.Equal(t, tt.startsWith, k.StartsWith(o), "StartsWith")
			assert.Equal(t, tt.endsWith, k.EndsWith(o), "EndsWith")
		})
	}
}

func TestFindIndex(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name      string
		key       string
		sub       string
		wantFirst int
		wantLast  int
		contains  bool
	}{
		{name: "single_match", key: "Assets/Art/hero.png", sub: "Art", wantFirst: 7, wantLast: 7, contains: true},
		{name: "repeated", key: "a/b/a/b", sub: "a/b", wantFirst: 0, wantLast: 4, contains: true},
		{name: "double_delimiter", key: "up/../down", sub: "..", wantFirst: 3, wantLast: 3, contains: true},
		{name: "spanning_partial_token", key: "hero.png", sub: "o.p", wantFirst: -1, wantLast: -1},
		{name: "absent", key: "A.B", sub: "C", wantFirst: -1, wantLast: -1},
		{name: "empty_sub", key: "A.B", sub: "", wantFirst: -1, wantLast: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := store.Decompose(tt.key)
			sub := store.Decompose(tt.sub)
			assert.Equal(t, tt.wantFirst, k.FindFirstIndex(sub), "FindFirstIndex")
			assert.Equal(t, tt.wantLast, k.FindLastIndex(sub), "FindLastIndex")
			assert.Equal(t, tt.contains, k.Contains(sub), "Contains")
		})
	}
}

func TestTrimEnd(t *testing.T) {
	store := NewStore()

	t.Run("trims_suffix", func(t *testing.T) {
		got := store.Decompose("A.B.C.D").TrimEnd(store.Decompose("C.D"))
		want := store.Decompose("A.B.")
		assert.True(t, got.Equal(want), "trimmed key should equal A.B.")
		assert.Equal(t, want.Hash(), got.Hash(), "hashes should match")
		assert.Equal(t, "A.B.", got.String())
	})

	t.Run("non_suffix_unchanged", func(t *testing.T) {
		k := store.Decompose("A.B.C.D")
		got := k.TrimEnd(store.Decompose("B.C"))
		assert.Equal(t, k, got, "non-suffix trim should return the key unchanged")
	})

	t.Run("empty_suffix_unchanged", func(t *testing.T) {
		k := store.Decompose("A.B")
		assert.Equal(t, k, k.TrimEnd(store.Decompose("")))
	})

	t.Run("sidecar_suffix", func(t *testing.T) {
		k := store.Decompose("Assets/hero.png.meta")
		got := k.TrimEnd(store.Decompose(".meta"))
		assert.Equal(t, "Assets/hero.png", got.String())
	})
}

func TestConcatenate(t *testing.T) {
	store := NewStore()

	a := store.Decompose("Assets/Art")
	b := store.Decompose("/hero.png")

	got := store.Concatenate(a, b)
	assert.Equal(t, "Assets/Art/hero.png", got.String())
	assert.True(t, got.Equal(store.Decompose("Assets/Art/hero.png")), "concatenation should equal direct decomposition")

	withString := a.ConcatString("/hero.png")
	assert.True(t, withString.Equal(got), "string concatenation should decompose first")
	assert.Equal(t, "Assets/Art", a.String(), "operands are not modified")
}

func TestZeroKeyConcat(t *testing.T) {
	store := NewStore()
	b := store.Decompose("/hero.png")

	var zero Key
	got := zero.Concat(b)
	assert.True(t, got.Equal(b))
	assert.Equal(t, "/hero.png", got.String())

	assert.True(t, zero.Concat(Key{}).IsEmpty())
	assert.True(t, zero.ConcatString("hero.png").IsEmpty())
}

func TestDecomposeConcurrent(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	keys := make([]Key, 64)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i] = store.Decompose(fmt.Sprintf("Assets/dir%d/file_%d.png", i%8, i%4))
			_ = keys[i].String()
		}(i)
	}
	wg.Wait()

	for i, k := range keys {
		require.Equal(t, fmt.Sprintf("Assets/dir%d/file_%d.png", i%8, i%4), k.String())
	}
}
