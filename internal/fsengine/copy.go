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

// Copy duplicates the regular file srcID as a new entry dstName inside
// directory dstParentID, copying its data block for block. It is a
// server-side operation: the client never sees the bytes in transit.
func (fs *FS) Copy(srcID, dstParentID uint32, dstName string) (uint32, error) {
	if len(dstName) == 0 || len(dstName) > fsconst.FSMaxFNameSz-1 {
		return 0, ErrNameTooLong
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	src, ok := fs.getInodeLocked(srcID)
	if !ok {
		return 0, ErrNotAllocated
	}
	if src.Type != inode.TypeFile {
		return 0, ErrNotFile
	}

	parent, ok := fs.getInodeLocked(dstParentID)
	if !ok {
		return 0, ErrNotAllocated
	}
	if parent.Type != inode.TypeDir {
		return 0, ErrNotDir
	}
	if _, found, err := fs.dirSearch(dstParentID, dstName); err != nil {
		return 0, err
	} else if found {
		return 0, ErrExists
	}

	dstID, ok := fs.tab.InodeBitmap.FindFree(fsconst.ITabSize)
	if !ok {
		return 0, ErrNoFreeInode
	}

	if err := fs.appendEntryLocked(dstParentID, &parent, dstName, dstID); err != nil {
		return 0, err
	}
	fs.mutateInodeLocked(dstParentID, func(n *inode.Inode) { *n = parent })

	fs.tab.InodeBitmap.Set(dstID)
	fs.tab.Set(dstID, inode.Inode{Type: inode.TypeFile})

	var dst inode.Inode
	dst.Type = inode.TypeFile
	pos := uint32(0)
	for pos < src.Size {
		blockIdx := pos / fsconst.BlockSize
		if blockIdx >= fsconst.InodeNumBlks {
			return 0, ErrIndirectNotSupported
		}
		data, err := fs.getBlockLocked(src.Blocks[blockIdx])
		if err != nil {
			return 0, err
		}

		dstBlk, ok := fs.tab.BlockBitmap.FindFree(fs.dev.NumBlocks())
		if !ok {
			return 0, ErrNoFreeBlock
		}
		fs.tab.BlockBitmap.Set(dstBlk)
		dst.Blocks[blockIdx] = dstBlk
		if err := fs.putBlockLocked(dstBlk, data); err != nil {
			return 0, err
		}

		take := fsconst.BlockSize
		if uint32(take) > src.Size-pos {
			take = int(src.Size - pos)
		}
		pos += uint32(take)
	}
	dst.Size = src.Size

	// The destination inode was written directly into the table above;
	// reconcile it through the cache so any concurrent read sees the
	// fully-copied result and the cache's dirty slot (if still resident
	// when storeFSDataLocked runs) flushes the final size and blocks.
	fs.mutateInodeLocked(dstID, func(n *inode.Inode) { *n = dst })

	if err := fs.storeFSDataLocked(); err != nil {
		return 0, err
	}
	logger.Debugf("copied inode %d to dir %d as %q (new inode %d, %d bytes)",
		srcID, dstParentID, dstName, dstID, dst.Size)
	return dstID, nil
}
