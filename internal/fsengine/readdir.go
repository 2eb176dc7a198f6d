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
)

// DirEntry is one (name, inode id) pair returned by Readdir.
type DirEntry struct {
	Name    string
	InodeID uint32
}

// Readdir lists every entry in directory id, in on-disk order.
func (fs *FS) Readdir(id uint32) ([]DirEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, ok := fs.getInodeLocked(id)
	if !ok {
		return nil, ErrNotAllocated
	}
	if n.Type != inode.TypeDir {
		return nil, ErrNotDir
	}

	entrySz := uint32(fsconst.FSMaxFNameSz + 4)
	numEntries := n.Size / entrySz
	out := make([]DirEntry, 0, numEntries)
	for idx := uint32(0); idx < numEntries; idx++ {
		blockIdx := idx / fsconst.DirPageEntries
		within := idx % fsconst.DirPageEntries
		if blockIdx >= fsconst.InodeNumBlks {
			return nil, ErrIndirectNotSupported
		}
		page, err := fs.getDirPageLocked(id, blockIdx, n.Blocks[blockIdx])
		if err != nil {
			return nil, err
		}
		out = append(out, DirEntry{Name: page[within].Name, InodeID: page[within].InodeID})
	}
	return out, nil
}
