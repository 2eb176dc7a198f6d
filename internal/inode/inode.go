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

// Package inode defines the fixed-layout inode and directory-entry
// records and the in-memory inode table that is the authoritative
// snapshot of all inodes. Nothing here locks: the engine protects the
// table with its single coarse mutex, held by the caller in
// internal/fsengine.
package inode

import (
	"encoding/binary"
	"errors"

	"github.com/snfs-project/snfs/internal/fsconst"
)

// Type is the kind of object an inode describes.
type Type uint32

const (
	TypeFile Type = 0
	TypeDir  Type = 1
	// TypeUnknown is never stored on disk; it is what a directory listing
	// reports for an entry whose inode id turns out not to be allocated.
	TypeUnknown Type = 2
)

func (t Type) String() string {
	switch t {
	case TypeFile:
		return "FILE"
	case TypeDir:
		return "DIR"
	default:
		return "UNKNOWN"
	}
}

// Inode is the fixed-layout metadata record for a file or directory.
// Reserved[0] is the extension-block number for single-indirect
// addressing; no operation in this engine allocates or follows it.
type Inode struct {
	Type     Type
	Size     uint32
	Blocks   [fsconst.InodeNumBlks]uint32
	Reserved [fsconst.InodeNumReserved]uint32
}

// recordSize is the exact on-disk size of one Inode record.
const recordSize = 4 + 4 + fsconst.InodeNumBlks*4 + fsconst.InodeNumReserved*4

// ErrShortBuffer is returned by UnmarshalBinary when given fewer than
// recordSize bytes.
var ErrShortBuffer = errors.New("inode: short buffer")

// MarshalBinary encodes the inode into its fixed-width on-disk form.
func (n *Inode) MarshalBinary() []byte {
	buf := make([]byte, recordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n.Type))
	binary.LittleEndian.PutUint32(buf[4:8], n.Size)
	off := 8
	for _, b := range n.Blocks {
		binary.LittleEndian.PutUint32(buf[off:off+4], b)
		off += 4
	}
	for _, r := range n.Reserved {
		binary.LittleEndian.PutUint32(buf[off:off+4], r)
		off += 4
	}
	return buf
}

// UnmarshalBinary decodes an inode from its fixed-width on-disk form.
func (n *Inode) UnmarshalBinary(buf []byte) error {
	if len(buf) < recordSize {
		return ErrShortBuffer
	}
	n.Type = Type(binary.LittleEndian.Uint32(buf[0:4]))
	n.Size = binary.LittleEndian.Uint32(buf[4:8])
	off := 8
	for i := range n.Blocks {
		n.Blocks[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	for i := range n.Reserved {
		n.Reserved[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	return nil
}

// NumBlocksPerBlock is how many Inode records fit in one device block.
const NumBlocksPerBlock = fsconst.BlockSize / recordSize

// DirEntry is a (name, inode id) pair packed into a directory's data
// blocks.
type DirEntry struct {
	Name    string
	InodeID uint32
}

const entrySize = fsconst.FSMaxFNameSz + 4

// MarshalBinary encodes a directory entry into its fixed-width form. Name
// longer than FSMaxFNameSz-1 is truncated; callers validate length before
// this point.
func (e DirEntry) MarshalBinary() []byte {
	buf := make([]byte, entrySize)
	n := copy(buf[:fsconst.FSMaxFNameSz-1], e.Name)
	buf[n] = 0 // NUL terminator, rest of the name field already zero.
	binary.LittleEndian.PutUint32(buf[fsconst.FSMaxFNameSz:], e.InodeID)
	return buf
}

// UnmarshalBinary decodes a directory entry from its fixed-width form.
func (e *DirEntry) UnmarshalBinary(buf []byte) error {
	if len(buf) < entrySize {
		return ErrShortBuffer
	}
	nameField := buf[:fsconst.FSMaxFNameSz]
	nul := len(nameField)
	for i, c := range nameField {
		if c == 0 {
			nul = i
			break
		}
	}
	e.Name = string(nameField[:nul])
	e.InodeID = binary.LittleEndian.Uint32(buf[fsconst.FSMaxFNameSz:])
	return nil
}
