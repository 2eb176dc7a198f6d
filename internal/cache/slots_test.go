// Copyright 2026 The SNFS Authors.
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

package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snfs-project/snfs/internal/cache"
)

func fakeClock() cache.Clock {
	var t int64
	return func() int64 {
		t++
		return t
	}
}

func TestLookUpMiss(t *testing.T) {
	s := cache.New[int, string](2, fakeClock())
	_, ok := s.LookUp(1)
	assert.False(t, ok)
}

func TestInsertThenLookUp(t *testing.T) {
	s := cache.New[int, string](2, fakeClock())
	s.Insert(1, "a", false)

	v, ok := s.LookUp(1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	s := cache.New[int, string](2, fakeClock())
	s.Insert(1, "a", false)
	s.Insert(2, "b", false)
	// Touch 1 so it becomes more recently used than 2.
	_, _ = s.LookUp(1)

	s.Insert(3, "c", false)

	_, ok := s.LookUp(2)
	assert.False(t, ok, "2 should have been evicted as the LRU slot")
	_, ok = s.LookUp(1)
	assert.True(t, ok)
	_, ok = s.LookUp(3)
	assert.True(t, ok)
}

func TestVictimReportsDirtyBeforeEviction(t *testing.T) {
	s := cache.New[int, string](1, fakeClock())
	s.Insert(1, "a", true)

	key, value, dirty, used := s.Victim()
	assert.True(t, used)
	assert.Equal(t, 1, key)
	assert.Equal(t, "a", value)
	assert.True(t, dirty)
}

func TestVictimOnEmptySlotNeedsNoWriteback(t *testing.T) {
	s := cache.New[int, string](2, fakeClock())
	s.Insert(1, "a", true)

	_, _, _, used := s.Victim()
	assert.False(t, used, "a free slot still exists; nothing to evict")
}

func TestMutateMarksDirty(t *testing.T) {
	s := cache.New[int, string](2, fakeClock())
	s.Insert(1, "a", false)

	ok := s.Mutate(1, func(v *string) { *v = "b" })
	require.True(t, ok)

	v, _ := s.LookUp(1)
	assert.Equal(t, "b", v)

	var sawDirty bool
	s.ForEach(func(key int, value string, dirty bool) {
		if key == 1 {
			sawDirty = dirty
		}
	})
	assert.True(t, sawDirty)
}

func TestEraseMatching(t *testing.T) {
	s := cache.New[int, string](4, fakeClock())
	s.Insert(1, "a", false)
	s.Insert(2, "b", false)
	s.Insert(3, "c", false)

	n := s.EraseMatching(func(key int, value string) bool { return value != "b" })
	assert.Equal(t, 2, n)

	_, ok := s.LookUp(2)
	assert.True(t, ok)
	_, ok = s.LookUp(1)
	assert.False(t, ok)
}
