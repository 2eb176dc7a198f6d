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

package inode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snfs-project/snfs/internal/blockdev"
	"github.com/snfs-project/snfs/internal/inode"
)

func TestInodeMarshalRoundTrip(t *testing.T) {
	n := inode.Inode{Type: inode.TypeFile, Size: 123}
	n.Blocks[0] = 10
	n.Blocks[1] = 11

	var got inode.Inode
	require.NoError(t, got.UnmarshalBinary(n.MarshalBinary()))
	assert.Equal(t, n, got)
}

func TestDirEntryMarshalRoundTrip(t *testing.T) {
	e := inode.DirEntry{Name: "file1.txt", InodeID: 5}

	var got inode.DirEntry
	require.NoError(t, got.UnmarshalBinary(e.MarshalBinary()))
	assert.Equal(t, e, got)
}

func TestTableLoadStoreRoundTrip(t *testing.T) {
	dev := blockdev.New(20, 0)
	tab := inode.NewTable(dev.NumBlocks())
	tab.BlockBitmap.Set(0)
	tab.InodeBitmap.Set(1)
	tab.Set(1, inode.Inode{Type: inode.TypeDir})

	require.NoError(t, tab.Store(dev))

	tab2 := inode.NewTable(dev.NumBlocks())
	require.NoError(t, tab2.Load(dev))

	assert.True(t, tab2.BlockBitmap.Test(0))
	assert.True(t, tab2.Allocated(1))
	got, ok := tab2.Get(1)
	require.True(t, ok)
	assert.Equal(t, inode.TypeDir, got.Type)
}
