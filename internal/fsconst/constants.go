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

// Package fsconst holds the on-device layout constants shared by every
// layer of the engine, so the bitmap, inode, cache, and fsengine packages
// never disagree about block size or table geometry.
package fsconst

// BlockSize is the fixed size, in bytes, of every block on the simulated
// device.
const BlockSize = 512

// BlockBitmapBlock and InodeBitmapBlock are the reserved block numbers for
// the two free-space bitmaps.
const (
	BlockBitmapBlock = 0
	InodeBitmapBlock = 1
)

// ITabNumBlks is the number of blocks reserved for the inode table.
const ITabNumBlks = 8

// ITabStartBlock is the first block of the inode table.
const ITabStartBlock = 2

// FirstDataBlock is the first block number available for file/directory
// data, i.e. the block right after the inode table.
const FirstDataBlock = ITabStartBlock + ITabNumBlks

// InodeNumBlks is the number of direct data-block pointers an inode holds.
const InodeNumBlks = 10

// InodeNumReserved is the number of reserved trailer words in an inode;
// Reserved[0] is earmarked for a single-indirect extension block number
// that no operation in this engine allocates or follows.
const InodeNumReserved = 4

// FSMaxFNameSz is the maximum size, in bytes including the NUL terminator,
// of a directory entry name (13 characters + NUL).
const FSMaxFNameSz = 14

// RootInodeID is the inode id of the filesystem root, always a directory.
const RootInodeID = 1

// inodeRecordSize is the on-device size of one inode record: a type
// tag, a size, InodeNumBlks block numbers, and InodeNumReserved reserved
// words, all as 4-byte fields.
const inodeRecordSize = 4 + 4 + InodeNumBlks*4 + InodeNumReserved*4

// ITabSize is the number of inodes that fit in ITabNumBlks blocks.
const ITabSize = (ITabNumBlks * BlockSize) / inodeRecordSize

// dentrySize is the on-device size of one directory entry: a fixed-width
// name plus an inode id.
const dentrySize = FSMaxFNameSz + 4

// DirPageEntries is the number of directory entries packed into one
// directory data block.
const DirPageEntries = BlockSize / dentrySize

// Default cache capacities.
const (
	DefaultBlockCacheSize = 10
	DefaultInodeCacheSize = 4
	DefaultDirCacheSize   = 4
)

// Wire-protocol bounds.
const (
	// MaxPathNameSize bounds a pathname carried in a LOOKUP/COPY request.
	MaxPathNameSize = 256
	// MaxReadData and MaxWriteData cap the payload of a single READ or
	// WRITE request; internal/client/fileapi chunks larger I/O into
	// several requests of at most this size.
	MaxReadData  = 4096
	MaxWriteData = 4096
	// MaxReaddirEntries bounds a single READDIR response.
	MaxReaddirEntries = 64
	// MaxOpenFiles bounds the client file-API's per-process open-file
	// table.
	MaxOpenFiles = 10
)
