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

// appendEntryLocked appends (name, childID) to directory parentID's entry
// list, allocating a new direct data block when the current last block is
// full, and bumping the parent's size. It does not flush metadata; the
// caller does that once after also initializing the new inode.
func (fs *FS) appendEntryLocked(parentID uint32, parent *inode.Inode, name string, childID uint32) error {
	entrySz := uint32(fsconst.FSMaxFNameSz + 4)
	idx := parent.Size / entrySz
	blockIdx := idx / fsconst.DirPageEntries
	within := idx % fsconst.DirPageEntries

	if blockIdx >= fsconst.InodeNumBlks {
		return ErrTooManyBlocks
	}

	if within == 0 {
		blk, ok := fs.tab.BlockBitmap.FindFree(fs.dev.NumBlocks())
		if !ok {
			return ErrNoFreeBlock
		}
		fs.tab.BlockBitmap.Set(blk)
		parent.Blocks[blockIdx] = blk
		if err := fs.putBlockLocked(blk, [fsconst.BlockSize]byte{}); err != nil {
			return err
		}
	}

	blockNum := parent.Blocks[blockIdx]
	raw, err := fs.getBlockLocked(blockNum)
	if err != nil {
		return err
	}
	entry := inode.DirEntry{Name: name, InodeID: childID}
	copy(raw[within*entrySz:within*entrySz+entrySz], entry.MarshalBinary())
	if err := fs.putBlockLocked(blockNum, raw); err != nil {
		return err
	}

	parent.Size += entrySz
	fs.invalidateDirPage(parentID, blockIdx)
	return nil
}

// create is the shared body of Create and Mkdir: validate the name,
// reject duplicates, allocate a new inode, append a directory entry for
// it, and flush metadata.
func (fs *FS) create(parentID uint32, name string, typ inode.Type) (uint32, error) {
	if len(name) == 0 || len(name) > fsconst.FSMaxFNameSz-1 {
		return 0, ErrNameTooLong
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, ok := fs.getInodeLocked(parentID)
	if !ok {
		return 0, ErrNotAllocated
	}
	if parent.Type != inode.TypeDir {
		return 0, ErrNotDir
	}

	_, found, err := fs.dirSearch(parentID, name)
	if err != nil {
		return 0, err
	}
	if found {
		return 0, ErrExists
	}

	childID, ok := fs.tab.InodeBitmap.FindFree(fsconst.ITabSize)
	if !ok {
		return 0, ErrNoFreeInode
	}

	if err := fs.appendEntryLocked(parentID, &parent, name, childID); err != nil {
		return 0, err
	}
	fs.mutateInodeLocked(parentID, func(n *inode.Inode) { *n = parent })

	fs.tab.InodeBitmap.Set(childID)
	fs.tab.Set(childID, inode.Inode{Type: typ})

	if err := fs.storeFSDataLocked(); err != nil {
		return 0, err
	}
	logger.Debugf("created inode %d (%s) in dir %d as %q", childID, typ, parentID, name)
	return childID, nil
}

// Create makes a new, empty regular file named name inside directory
// parentID.
func (fs *FS) Create(parentID uint32, name string) (uint32, error) {
	return fs.create(parentID, name, inode.TypeFile)
}

// Mkdir makes a new, empty directory named name inside directory
// parentID.
func (fs *FS) Mkdir(parentID uint32, name string) (uint32, error) {
	return fs.create(parentID, name, inode.TypeDir)
}
