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

package blockdev_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snfs-project/snfs/internal/blockdev"
	"github.com/snfs-project/snfs/internal/fsconst"
)

func TestReadWriteRoundTrip(t *testing.T) {
	d := blockdev.New(16, 0)

	in := make([]byte, fsconst.BlockSize)
	in[0] = 0xAB
	in[fsconst.BlockSize-1] = 0xCD
	require.NoError(t, d.Write(3, in))

	out := make([]byte, fsconst.BlockSize)
	require.NoError(t, d.Read(3, out))
	assert.Equal(t, in, out)
}

func TestOutOfRange(t *testing.T) {
	d := blockdev.New(4, 0)
	buf := make([]byte, fsconst.BlockSize)

	assert.ErrorIs(t, d.Read(4, buf), blockdev.ErrOutOfRange)
	assert.ErrorIs(t, d.Write(100, buf), blockdev.ErrOutOfRange)
}

func TestNumBlocks(t *testing.T) {
	d := blockdev.New(42, 0)
	assert.EqualValues(t, 42, d.NumBlocks())
}

func TestDelayAppliesOnlyOnceWarm(t *testing.T) {
	d := blockdev.New(2, 20*time.Millisecond)
	buf := make([]byte, fsconst.BlockSize)

	start := time.Now()
	require.NoError(t, d.Write(0, buf))
	require.NoError(t, d.Read(0, buf))
	assert.Less(t, time.Since(start), 20*time.Millisecond, "cold device should not pay the delay")

	d.MarkWarm()
	start = time.Now()
	require.NoError(t, d.Read(0, buf))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond, "warm device should pay the delay")
}
