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

// Read returns up to count bytes of inode id's data starting at offset.
// Reading past end-of-file returns a short (possibly empty) result, not
// an error.
func (fs *FS) Read(id uint32, offset, count uint32) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, ok := fs.getInodeLocked(id)
	if !ok {
		return nil, ErrNotAllocated
	}
	if offset >= n.Size {
		return nil, nil
	}
	want := count
	if offset+want > n.Size {
		want = n.Size - offset
	}

	out := make([]byte, want)
	pos := uint32(0)
	for pos < want {
		blockIdx := (offset + pos) / fsconst.BlockSize
		if blockIdx >= fsconst.InodeNumBlks {
			return nil, ErrIndirectNotSupported
		}
		within := (offset + pos) % fsconst.BlockSize
		data, err := fs.getBlockLocked(n.Blocks[blockIdx])
		if err != nil {
			return nil, err
		}
		take := fsconst.BlockSize - within
		if take > want-pos {
			take = want - pos
		}
		copy(out[pos:pos+take], data[within:within+take])
		pos += take
	}
	return out, nil
}

// Write stores count bytes of data at offset in inode id, allocating new
// direct data blocks as needed and growing the file if the write extends
// past the current size. It returns the file's resulting size. Writing
// past the direct-block table's reach is rejected with ErrTooManyBlocks
// rather than silently truncated.
func (fs *FS) Write(id uint32, offset uint32, data []byte) (uint32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, ok := fs.getInodeLocked(id)
	if !ok {
		return 0, ErrNotAllocated
	}
	if n.Type != inode.TypeFile {
		return 0, ErrNotFile
	}
	if offset > n.Size {
		offset = n.Size
	}

	end := offset + uint32(len(data))
	if len(data) > 0 {
		lastIdx := (end - 1) / fsconst.BlockSize
		if lastIdx >= fsconst.InodeNumBlks {
			return 0, ErrTooManyBlocks
		}
		for blockIdx := uint32(0); blockIdx <= lastIdx; blockIdx++ {
			if n.Blocks[blockIdx] != 0 {
				continue
			}
			blk, ok := fs.tab.BlockBitmap.FindFree(fs.dev.NumBlocks())
			if !ok {
				return 0, ErrNoFreeBlock
			}
			fs.tab.BlockBitmap.Set(blk)
			n.Blocks[blockIdx] = blk
			if err := fs.putBlockLocked(blk, [fsconst.BlockSize]byte{}); err != nil {
				return 0, err
			}
		}
	}

	pos := uint32(0)
	for pos < uint32(len(data)) {
		blockIdx := (offset + pos) / fsconst.BlockSize
		within := (offset + pos) % fsconst.BlockSize
		blk := n.Blocks[blockIdx]

		buf, err := fs.getBlockLocked(blk)
		if err != nil {
			return 0, err
		}
		take := fsconst.BlockSize - within
		if take > uint32(len(data))-pos {
			take = uint32(len(data)) - pos
		}
		copy(buf[within:within+take], data[pos:pos+take])
		if err := fs.putBlockLocked(blk, buf); err != nil {
			return 0, err
		}
		pos += take
	}

	newSize := n.Size
	if end > newSize {
		newSize = end
	}
	fs.mutateInodeLocked(id, func(v *inode.Inode) {
		v.Blocks = n.Blocks
		v.Size = newSize
	})
	return newSize, nil
}
