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

package fsengine

import (
	"github.com/snfs-project/snfs/internal/fsconst"
	"github.com/snfs-project/snfs/internal/inode"
	"github.com/snfs-project/snfs/internal/logger"
)

// Format lays out a brand new filesystem: zeroes every block, reserves
// blocks 0..FirstDataBlock-1 for the bitmaps and inode table, reserves
// inode 0 (never allocatable) and initializes inode 1 as the empty root
// directory, then flushes the result to the device and marks it warm so
// later I/O is charged the configured access delay.
func (fs *FS) Format() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	zero := [fsconst.BlockSize]byte{}
	n := fs.dev.NumBlocks()
	for b := uint32(0); b < n; b++ {
		fs.mu.Unlock()
		err := fs.dev.Write(b, zero[:])
		fs.mu.Lock()
		if err != nil {
			return err
		}
	}

	for b := uint32(0); b < fsconst.FirstDataBlock; b++ {
		fs.tab.BlockBitmap.Set(b)
	}
	fs.tab.InodeBitmap.Set(0)
	fs.tab.InodeBitmap.Set(fsconst.RootInodeID)
	fs.tab.Set(fsconst.RootInodeID, inode.Inode{Type: inode.TypeDir})

	if err := fs.storeFSDataLocked(); err != nil {
		return err
	}
	fs.dev.MarkWarm()
	logger.Infof("formatted filesystem: %d blocks", n)
	return nil
}
