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
	"context"

	"github.com/snfs-project/snfs/internal/fsconst"
	"github.com/snfs-project/snfs/internal/inode"
	"github.com/snfs-project/snfs/internal/metrics"
)

// Attrs is the subset of an inode's metadata exposed across the wire.
type Attrs struct {
	ID   uint32
	Type inode.Type
	Size uint32
	// NumEntries is the entry count for a directory (its size over the
	// fixed entry width); -1 for a regular file.
	NumEntries int32
}

// getDirPageLocked returns the decoded directory entries for direct block
// index blk of directory dirID, consulting the directory-page cache
// first. A miss decodes the page on top of the generic block cache: the
// two caches are layered, not exclusive, with the directory cache built
// lazily from whatever the block cache or device hands back.
func (fs *FS) getDirPageLocked(dirID, blk, blockNum uint32) (dirPage, error) {
	key := dirPageKey{DirID: dirID, Block: blk}
	if p, ok := fs.dirCache.LookUp(key); ok {
		metrics.RecordCacheAccess(context.Background(), "dir", true)
		return p, nil
	}
	metrics.RecordCacheAccess(context.Background(), "dir", false)

	raw, err := fs.getBlockLocked(blockNum)
	if err != nil {
		return dirPage{}, err
	}
	var page dirPage
	entrySz := fsconst.FSMaxFNameSz + 4
	for i := range page {
		off := i * entrySz
		if err := page[i].UnmarshalBinary(raw[off : off+entrySz]); err != nil {
			return dirPage{}, err
		}
	}
	if _, _, dirty, used := fs.dirCache.Victim(); used {
		metrics.RecordCacheEviction(context.Background(), "dir", dirty)
	}
	fs.dirCache.Insert(key, page, false)
	return page, nil
}

// dirSearch scans directory parentID's entries for name, returning the
// child inode id. found is false (with a nil error) if parentID is a
// valid directory that simply doesn't contain name.
func (fs *FS) dirSearch(parentID uint32, name string) (id uint32, found bool, err error) {
	n, ok := fs.getInodeLocked(parentID)
	if !ok {
		return 0, false, ErrNotAllocated
	}
	if n.Type != inode.TypeDir {
		return 0, false, ErrNotDir
	}

	entrySz := uint32(fsconst.FSMaxFNameSz + 4)
	numEntries := n.Size / entrySz
	for idx := uint32(0); idx < numEntries; idx++ {
		blockIdx := idx / fsconst.DirPageEntries
		within := idx % fsconst.DirPageEntries
		if blockIdx >= fsconst.InodeNumBlks {
			return 0, false, ErrIndirectNotSupported
		}
		blockNum := n.Blocks[blockIdx]
		page, err := fs.getDirPageLocked(parentID, blockIdx, blockNum)
		if err != nil {
			return 0, false, err
		}
		if page[within].Name == name {
			return page[within].InodeID, true, nil
		}
	}
	return 0, false, nil
}

// Lookup resolves name within directory parentID. The root is special:
// looking up "/" always returns the root inode without dereferencing the
// client-supplied parent.
func (fs *FS) Lookup(parentID uint32, name string) (uint32, error) {
	if name == "/" {
		return fsconst.RootInodeID, nil
	}
	if len(name) == 0 || len(name) > fsconst.FSMaxFNameSz-1 {
		return 0, ErrNameTooLong
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	id, found, err := fs.dirSearch(parentID, name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNotFound
	}
	return id, nil
}

// GetAttrs returns the type and size of inode id.
func (fs *FS) GetAttrs(id uint32) (Attrs, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n, ok := fs.getInodeLocked(id)
	if !ok {
		return Attrs{}, ErrNotAllocated
	}
	numEntries := int32(-1)
	if n.Type == inode.TypeDir {
		numEntries = int32(n.Size / uint32(fsconst.FSMaxFNameSz+4))
	}
	return Attrs{ID: id, Type: n.Type, Size: n.Size, NumEntries: numEntries}, nil
}
