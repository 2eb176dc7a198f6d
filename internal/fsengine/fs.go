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

// Package fsengine is the single-process filesystem core: block device,
// bitmaps, inode table, and the three write-back caches wired together
// under one coarse lock. Every exported method is a synchronous,
// blocking operation; internal/server calls these directly from its
// receive-and-dispatch loop.
package fsengine

import (
	"context"
	"fmt"
	"time"

	"github.com/jacobsa/syncutil"

	"github.com/snfs-project/snfs/internal/blockdev"
	"github.com/snfs-project/snfs/internal/cache"
	"github.com/snfs-project/snfs/internal/fsconst"
	"github.com/snfs-project/snfs/internal/inode"
	"github.com/snfs-project/snfs/internal/logger"
	"github.com/snfs-project/snfs/internal/metrics"
)

// dirPageKey identifies one cached directory data block: the owning
// directory's inode id and the direct-block index within it.
type dirPageKey struct {
	DirID uint32
	Block uint32
}

type block = [fsconst.BlockSize]byte
type dirPage = [fsconst.DirPageEntries]inode.DirEntry

// Options configures cache sizes and the coherence/debug toggles.
type Options struct {
	BlockCacheSize          int
	InodeCacheSize          int
	DirCacheSize            int
	InvalidateDirOnMutation bool
	// ExitOnInvariantViolation turns on invariant checking for the engine
	// mutex: checkInvariants runs on every lock and unlock and panics on
	// a violation. Expensive; meant for tests and debugging sessions.
	ExitOnInvariantViolation bool
}

// DefaultOptions returns the spec's default cache sizes with the dir-cache
// coherence fix enabled.
func DefaultOptions() Options {
	return Options{
		BlockCacheSize:          fsconst.DefaultBlockCacheSize,
		InodeCacheSize:          fsconst.DefaultInodeCacheSize,
		DirCacheSize:            fsconst.DefaultDirCacheSize,
		InvalidateDirOnMutation: true,
	}
}

// FS is the filesystem engine: one block device, one inode table, and
// three LRU caches, all protected by a single mutex.
type FS struct {
	mu  syncutil.InvariantMutex
	dev *blockdev.Device
	tab *inode.Table

	blockCache *cache.Slots[uint32, block]
	inodeCache *cache.Slots[uint32, inode.Inode]
	dirCache   *cache.Slots[dirPageKey, dirPage]

	invalidateDirOnMutation bool
}

// New allocates an engine over a fresh blockdev.Device of numBlocks blocks
// and loads whatever metadata is currently on it (all zero, for a brand
// new device; call Format before serving requests). diskDelay models
// the per-access device latency once the device leaves its cold start.
func New(numBlocks uint32, diskDelay time.Duration, opts Options) (*FS, error) {
	dev := blockdev.New(numBlocks, diskDelay)
	tab := inode.NewTable(numBlocks)
	if err := tab.Load(dev); err != nil {
		return nil, err
	}

	clock := func() int64 { return time.Now().UnixNano() }
	fs := &FS{
		dev:                     dev,
		tab:                     tab,
		blockCache:              cache.New[uint32, block](opts.BlockCacheSize, clock),
		inodeCache:              cache.New[uint32, inode.Inode](opts.InodeCacheSize, clock),
		dirCache:                cache.New[dirPageKey, dirPage](opts.DirCacheSize, clock),
		invalidateDirOnMutation: opts.InvalidateDirOnMutation,
	}

	// Set up invariant checking.
	fs.mu = syncutil.NewInvariantMutex(fs.checkInvariants)
	if opts.ExitOnInvariantViolation {
		syncutil.EnableInvariantChecking()
	}

	return fs, nil
}

// checkInvariants panics if the engine's metadata invariants do not hold.
// It runs automatically on every lock and unlock of fs.mu once invariant
// checking is enabled, so every drop of the mutex around device I/O is a
// checkpoint. A dirty inode-cache slot is more authoritative than the
// table, so cached copies are overlaid before checking.
func (fs *FS) checkInvariants() {
	cached := make(map[uint32]inode.Inode)
	fs.inodeCache.ForEach(func(id uint32, n inode.Inode, dirty bool) {
		if dirty {
			cached[id] = n
		}
	})

	// INVARIANT: the root, once allocated, is always a DIR.
	if fs.tab.Allocated(fsconst.RootInodeID) {
		root, ok := cached[fsconst.RootInodeID]
		if !ok {
			root, _ = fs.tab.Get(fsconst.RootInodeID)
		}
		if root.Type != inode.TypeDir {
			panic(fmt.Sprintf("root inode has type %v", root.Type))
		}
	}

	for id := uint32(1); id < fsconst.ITabSize; id++ {
		if !fs.tab.Allocated(id) {
			continue
		}
		n, ok := cached[id]
		if !ok {
			n, _ = fs.tab.Get(id)
		}

		// INVARIANT: a DIR's size is a whole number of entries.
		if n.Type == inode.TypeDir && n.Size%uint32(fsconst.FSMaxFNameSz+4) != 0 {
			panic(fmt.Sprintf("dir inode %d size %d is not a whole number of entries", id, n.Size))
		}

		// INVARIANT: every data block within an inode's size is non-zero
		// and marked allocated in the block bitmap.
		used := (n.Size + fsconst.BlockSize - 1) / fsconst.BlockSize
		for i := uint32(0); i < used && i < fsconst.InodeNumBlks; i++ {
			if n.Blocks[i] == 0 || !fs.tab.BlockBitmap.Test(n.Blocks[i]) {
				panic(fmt.Sprintf("inode %d block[%d]=%d within size %d is not allocated", id, i, n.Blocks[i], n.Size))
			}
		}
	}
}

// NumBlocks returns the size of the underlying device.
func (fs *FS) NumBlocks() uint32 {
	return fs.dev.NumBlocks()
}

// getBlockLocked returns the contents of block, consulting the block
// cache first. Must be called with fs.mu held; it drops and reacquires
// the lock around device I/O (an evicted dirty write-back, and the read
// itself on a miss), since the device may sleep.
func (fs *FS) getBlockLocked(block uint32) ([fsconst.BlockSize]byte, error) {
	if v, ok := fs.blockCache.LookUp(block); ok {
		logger.Tracef("block cache hit block=%d", block)
		metrics.RecordCacheAccess(context.Background(), "block", true)
		return v, nil
	}
	metrics.RecordCacheAccess(context.Background(), "block", false)

	vKey, vVal, vDirty, vUsed := fs.blockCache.Victim()
	if vUsed {
		metrics.RecordCacheEviction(context.Background(), "block", vDirty)
	}
	fs.mu.Unlock()
	if vUsed && vDirty {
		if err := fs.dev.Write(vKey, vVal[:]); err != nil {
			fs.mu.Lock()
			return [fsconst.BlockSize]byte{}, err
		}
	}
	var buf [fsconst.BlockSize]byte
	err := fs.dev.Read(block, buf[:])
	fs.mu.Lock()
	if err != nil {
		return buf, err
	}
	fs.blockCache.Insert(block, buf, false)
	return buf, nil
}

// putBlockLocked writes data into the block cache as dirty, consulting
// the cache so an already-resident block is updated in place rather than
// evicted and reinserted. Must be called with fs.mu held; may drop and
// reacquire it to write back an evicted dirty victim.
func (fs *FS) putBlockLocked(blk uint32, data [fsconst.BlockSize]byte) error {
	if fs.blockCache.Mutate(blk, func(v *[fsconst.BlockSize]byte) { *v = data }) {
		metrics.RecordCacheAccess(context.Background(), "block", true)
		return nil
	}
	metrics.RecordCacheAccess(context.Background(), "block", false)

	vKey, vVal, vDirty, vUsed := fs.blockCache.Victim()
	if vUsed {
		metrics.RecordCacheEviction(context.Background(), "block", vDirty)
	}
	if vUsed && vDirty {
		fs.mu.Unlock()
		err := fs.dev.Write(vKey, vVal[:])
		fs.mu.Lock()
		if err != nil {
			return err
		}
	}
	fs.blockCache.Insert(blk, data, true)
	return nil
}

// getInodeLocked returns a copy of inode id, consulting the inode cache
// first. The full table is always memory-resident, so a miss never
// touches the device: the evicted victim, if dirty, is copied straight
// back into the authoritative table.
func (fs *FS) getInodeLocked(id uint32) (inode.Inode, bool) {
	if !fs.tab.Allocated(id) {
		return inode.Inode{}, false
	}
	if v, ok := fs.inodeCache.LookUp(id); ok {
		metrics.RecordCacheAccess(context.Background(), "inode", true)
		return v, true
	}
	metrics.RecordCacheAccess(context.Background(), "inode", false)
	vKey, vVal, vDirty, vUsed := fs.inodeCache.Victim()
	if vUsed {
		metrics.RecordCacheEviction(context.Background(), "inode", vDirty)
	}
	if vUsed && vDirty {
		fs.tab.Set(vKey, vVal)
	}
	n, ok := fs.tab.Get(id)
	if !ok {
		return inode.Inode{}, false
	}
	fs.inodeCache.Insert(id, n, false)
	return n, true
}

// mutateInodeLocked applies fn to the cached copy of inode id (loading it
// from the table first if it isn't already cached) and marks the slot
// dirty. The table itself is not touched until the slot is evicted or
// flushed by storeFSDataLocked.
func (fs *FS) mutateInodeLocked(id uint32, fn func(*inode.Inode)) bool {
	if fs.inodeCache.Mutate(id, fn) {
		return true
	}
	if _, ok := fs.getInodeLocked(id); !ok {
		return false
	}
	return fs.inodeCache.Mutate(id, fn)
}

// flushInodeCacheLocked copies every dirty cached inode back into the
// authoritative table so a subsequent storeFSDataLocked persists the
// current state even for slots that haven't been evicted yet.
func (fs *FS) flushInodeCacheLocked() {
	fs.inodeCache.ForEach(func(key uint32, value inode.Inode, dirty bool) {
		if dirty {
			fs.tab.Set(key, value)
		}
	})
}

// storeFSDataLocked flushes the inode cache into the table, then writes
// both bitmaps and the full table to the device. Must be called with
// fs.mu held; drops and reacquires it around the device writes.
func (fs *FS) storeFSDataLocked() error {
	fs.flushInodeCacheLocked()
	fs.mu.Unlock()
	err := fs.tab.Store(fs.dev)
	fs.mu.Lock()
	return err
}

// invalidateDirPage erases any cached page for (dirID, block) so the
// next directory read decodes the freshly written block instead of a
// stale page left over from before a create/mkdir.
func (fs *FS) invalidateDirPage(dirID, blk uint32) {
	if !fs.invalidateDirOnMutation {
		return
	}
	fs.dirCache.Erase(dirPageKey{DirID: dirID, Block: blk})
}
