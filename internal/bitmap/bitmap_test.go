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

package bitmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snfs-project/snfs/internal/bitmap"
)

func TestSetClearTest(t *testing.T) {
	b := bitmap.New(64)

	assert.False(t, b.Test(5))
	b.Set(5)
	assert.True(t, b.Test(5))
	b.Clear(5)
	assert.False(t, b.Test(5))
}

func TestFindFreeLowestIndexWins(t *testing.T) {
	b := bitmap.New(16)
	b.Set(0)
	b.Set(1)
	b.Set(3)

	i, ok := b.FindFree(16)
	require.True(t, ok)
	assert.EqualValues(t, 2, i)
}

func TestFindFreeExhausted(t *testing.T) {
	b := bitmap.New(8)
	for i := uint32(0); i < 8; i++ {
		b.Set(i)
	}

	_, ok := b.FindFree(8)
	assert.False(t, ok)
}

func TestCountSet(t *testing.T) {
	b := bitmap.New(16)
	b.Set(0)
	b.Set(4)
	b.Set(9)

	assert.Equal(t, 3, b.CountSet(16))
	assert.Equal(t, 2, b.CountSet(5))
}
