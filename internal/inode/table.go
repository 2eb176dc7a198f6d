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

package inode

import (
	"fmt"

	"github.com/snfs-project/snfs/internal/bitmap"
	"github.com/snfs-project/snfs/internal/blockdev"
	"github.com/snfs-project/snfs/internal/fsconst"
)

// Table is the authoritative in-memory snapshot of every inode, plus the
// two free-space bitmaps. It is not safe for concurrent use; callers
// (the fsengine package) hold a single lock around every access.
type Table struct {
	Inodes      []Inode
	BlockBitmap *bitmap.Bitmap
	InodeBitmap *bitmap.Bitmap
}

// NewTable allocates an empty table sized for fsconst.ITabSize inodes and
// numBlocks blocks.
func NewTable(numBlocks uint32) *Table {
	return &Table{
		Inodes:      make([]Inode, fsconst.ITabSize),
		BlockBitmap: bitmap.New(int(numBlocks)),
		InodeBitmap: bitmap.New(fsconst.ITabSize),
	}
}

// Load reads the free-block bitmap (block 0), free-inode bitmap (block 1),
// and the inode table (blocks 2..9) off the device into t.
func (t *Table) Load(dev *blockdev.Device) error {
	blkBuf := make([]byte, fsconst.BlockSize)
	if err := dev.Read(fsconst.BlockBitmapBlock, blkBuf); err != nil {
		return fmt.Errorf("inode: load block bitmap: %w", err)
	}
	copy(t.BlockBitmap.Bytes(), blkBuf)

	inoBuf := make([]byte, fsconst.BlockSize)
	if err := dev.Read(fsconst.InodeBitmapBlock, inoBuf); err != nil {
		return fmt.Errorf("inode: load inode bitmap: %w", err)
	}
	copy(t.InodeBitmap.Bytes(), inoBuf)

	buf := make([]byte, fsconst.BlockSize)
	idx := 0
	for b := 0; b < fsconst.ITabNumBlks; b++ {
		if err := dev.Read(uint32(fsconst.ITabStartBlock+b), buf); err != nil {
			return fmt.Errorf("inode: load inode table block %d: %w", b, err)
		}
		for j := 0; j < NumBlocksPerBlock && idx < len(t.Inodes); j++ {
			off := j * recordSize
			if err := t.Inodes[idx].UnmarshalBinary(buf[off : off+recordSize]); err != nil {
				return fmt.Errorf("inode: decode inode %d: %w", idx, err)
			}
			idx++
		}
	}
	return nil
}

// Store writes both bitmaps and the full inode table back to the device.
func (t *Table) Store(dev *blockdev.Device) error {
	if err := dev.Write(fsconst.BlockBitmapBlock, t.BlockBitmap.Bytes()); err != nil {
		return fmt.Errorf("inode: store block bitmap: %w", err)
	}
	if err := dev.Write(fsconst.InodeBitmapBlock, t.InodeBitmap.Bytes()); err != nil {
		return fmt.Errorf("inode: store inode bitmap: %w", err)
	}

	idx := 0
	for b := 0; b < fsconst.ITabNumBlks; b++ {
		buf := make([]byte, fsconst.BlockSize)
		for j := 0; j < NumBlocksPerBlock && idx < len(t.Inodes); j++ {
			off := j * recordSize
			copy(buf[off:off+recordSize], t.Inodes[idx].MarshalBinary())
			idx++
		}
		if err := dev.Write(uint32(fsconst.ITabStartBlock+b), buf); err != nil {
			return fmt.Errorf("inode: store inode table block %d: %w", b, err)
		}
	}
	return nil
}

// Get returns a copy of the inode with the given id. ok is false if id is
// out of range.
func (t *Table) Get(id uint32) (Inode, bool) {
	if id == 0 || int(id) >= len(t.Inodes) {
		return Inode{}, false
	}
	return t.Inodes[id], true
}

// Set overwrites the inode with the given id.
func (t *Table) Set(id uint32, n Inode) {
	if id == 0 || int(id) >= len(t.Inodes) {
		return
	}
	t.Inodes[id] = n
}

// Allocated reports whether inode id is marked in-use in the inode bitmap.
func (t *Table) Allocated(id uint32) bool {
	if id == 0 || int(id) >= len(t.Inodes) {
		return false
	}
	return t.InodeBitmap.Test(id)
}
