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
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/snfs-project/snfs/internal/fsconst"
	"github.com/snfs-project/snfs/internal/inode"
	"github.com/stretchr/testify/require"
)

func newFormatted(t *testing.T, numBlocks uint32) *FS {
	t.Helper()
	fs, err := New(numBlocks, 0, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, fs.Format())
	return fs
}

func TestFormatInitializesRoot(t *testing.T) {
	fs := newFormatted(t, 64)
	attrs, err := fs.GetAttrs(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Equal(t, inode.TypeDir, attrs.Type)
	require.Equal(t, uint32(0), attrs.Size)
	require.Equal(t, int32(0), attrs.NumEntries)
}

func TestGetAttrsReportsEntryCountForDirAndMinusOneForFile(t *testing.T) {
	fs := newFormatted(t, 64)
	fileID, err := fs.Create(fsconst.RootInodeID, "f")
	require.NoError(t, err)

	attrs, err := fs.GetAttrs(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Equal(t, int32(1), attrs.NumEntries)

	attrs, err = fs.GetAttrs(fileID)
	require.NoError(t, err)
	require.Equal(t, int32(-1), attrs.NumEntries)
}

func TestLookupRootSlash(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.Lookup(999, "/")
	require.NoError(t, err)
	require.Equal(t, uint32(fsconst.RootInodeID), id)
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	fs := newFormatted(t, 64)
	_, err := fs.Lookup(fsconst.RootInodeID, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateWriteReadRoundTrip(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.Create(fsconst.RootInodeID, "hello.txt")
	require.NoError(t, err)

	payload := []byte("hello, snfs")
	size, err := fs.Write(id, 0, payload)
	require.NoError(t, err)
	require.Equal(t, uint32(len(payload)), size)

	got, err := fs.Read(id, 0, uint32(len(payload)))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestWriteAppendGrowsAcrossBlocks(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.Create(fsconst.RootInodeID, "big.bin")
	require.NoError(t, err)

	first := bytes.Repeat([]byte{0xAA}, fsconst.BlockSize)
	_, err = fs.Write(id, 0, first)
	require.NoError(t, err)

	second := bytes.Repeat([]byte{0xBB}, 16)
	size, err := fs.Write(id, fsconst.BlockSize, second)
	require.NoError(t, err)
	require.Equal(t, uint32(fsconst.BlockSize+16), size)

	got, err := fs.Read(id, fsconst.BlockSize, 16)
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestCreateDuplicateNameFails(t *testing.T) {
	fs := newFormatted(t, 64)
	_, err := fs.Create(fsconst.RootInodeID, "dup")
	require.NoError(t, err)
	_, err = fs.Create(fsconst.RootInodeID, "dup")
	require.ErrorIs(t, err, ErrExists)
}

func TestMkdirAndReaddir(t *testing.T) {
	fs := newFormatted(t, 64)
	dirID, err := fs.Mkdir(fsconst.RootInodeID, "sub")
	require.NoError(t, err)

	_, err = fs.Create(dirID, "a.txt")
	require.NoError(t, err)
	_, err = fs.Create(dirID, "b.txt")
	require.NoError(t, err)

	entries, err := fs.Readdir(dirID)
	require.NoError(t, err)
	names := []string{entries[0].Name, entries[1].Name}
	require.ElementsMatch(t, []string{"a.txt", "b.txt"}, names)

	rootEntries, err := fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Len(t, rootEntries, 1)
	require.Equal(t, "sub", rootEntries[0].Name)
}

func TestReaddirOnFileFails(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.Create(fsconst.RootInodeID, "f")
	require.NoError(t, err)
	_, err = fs.Readdir(id)
	require.ErrorIs(t, err, ErrNotDir)
}

func TestCopyDuplicatesContent(t *testing.T) {
	fs := newFormatted(t, 64)
	srcID, err := fs.Create(fsconst.RootInodeID, "src.txt")
	require.NoError(t, err)
	payload := bytes.Repeat([]byte("x"), 700) // spans two blocks
	_, err = fs.Write(srcID, 0, payload)
	require.NoError(t, err)

	dstID, err := fs.Copy(srcID, fsconst.RootInodeID, "dst.txt")
	require.NoError(t, err)
	require.NotEqual(t, srcID, dstID)

	got, err := fs.Read(dstID, 0, uint32(len(payload)))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestConcurrentWritesToDistinctFilesDoNotCorrupt(t *testing.T) {
	fs := newFormatted(t, 128)
	const n = 8
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		id, err := fs.Create(fsconst.RootInodeID, fmt.Sprintf("f%d", i))
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := bytes.Repeat([]byte{byte('a' + i)}, 128)
			_, err := fs.Write(ids[i], 0, payload)
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		got, err := fs.Read(ids[i], 0, 128)
		require.NoError(t, err)
		require.Equal(t, bytes.Repeat([]byte{byte('a' + i)}, 128), got)
	}
}

func TestReadAtOffsetEqualsSizeReturnsEmptyNoError(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.Create(fsconst.RootInodeID, "f.txt")
	require.NoError(t, err)

	size, err := fs.Write(id, 0, []byte("hello"))
	require.NoError(t, err)

	got, err := fs.Read(id, size, 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestWriteBeyondDirectBlockTableFailsWithTooManyBlocks(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.Create(fsconst.RootInodeID, "big.bin")
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0x1}, fsconst.InodeNumBlks*fsconst.BlockSize+1)
	_, err = fs.Write(id, 0, data)
	require.ErrorIs(t, err, ErrTooManyBlocks)
}

func TestCreateAndMkdirRejectFourteenCharacterName(t *testing.T) {
	fs := newFormatted(t, 64)
	name := strings.Repeat("a", fsconst.FSMaxFNameSz) // 14 chars, one too many with the NUL

	_, err := fs.Create(fsconst.RootInodeID, name)
	require.ErrorIs(t, err, ErrNameTooLong)

	_, err = fs.Mkdir(fsconst.RootInodeID, name)
	require.ErrorIs(t, err, ErrNameTooLong)

	// One character shorter fits.
	_, err = fs.Create(fsconst.RootInodeID, name[:fsconst.FSMaxFNameSz-1])
	require.NoError(t, err)
}

func TestWriteFailsWithNoFreeBlock(t *testing.T) {
	fs := newFormatted(t, fsconst.FirstDataBlock+1)
	id, err := fs.Create(fsconst.RootInodeID, "a")
	require.NoError(t, err)

	// The create above consumed the device's only free data block for the
	// root directory's first page; the new, still-empty file has none of
	// its own left to allocate.
	_, err = fs.Write(id, 0, []byte("hi"))
	require.ErrorIs(t, err, ErrNoFreeBlock)
}

func TestCreateExhaustsInodeTableReturnsNoFreeInode(t *testing.T) {
	fs := newFormatted(t, 64)

	created := 0
	var lastErr error
	for i := 0; i < fsconst.ITabSize+2; i++ {
		_, lastErr = fs.Create(fsconst.RootInodeID, fmt.Sprintf("f%d", i))
		if lastErr != nil {
			break
		}
		created++
	}
	require.ErrorIs(t, lastErr, ErrNoFreeInode)
	// Inode 0 is never used and inode 1 is the root, so exactly
	// ITabSize-2 more can be created before the bitmap is exhausted.
	require.Equal(t, fsconst.ITabSize-2, created)
}

func TestReaddirSeesSiblingCreatedAfterPageCached(t *testing.T) {
	fs := newFormatted(t, 64) // InvalidateDirOnMutation defaults to true
	_, err := fs.Create(fsconst.RootInodeID, "a")
	require.NoError(t, err)

	// Cache the root's directory page, then mutate the directory behind it.
	entries, err := fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = fs.Create(fsconst.RootInodeID, "b")
	require.NoError(t, err)

	entries, err = fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Name)
	require.Equal(t, "b", entries[1].Name)
}

func TestReaddirServesStalePageWithInvalidationDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.InvalidateDirOnMutation = false
	fs, err := New(64, 0, opts)
	require.NoError(t, err)
	require.NoError(t, fs.Format())

	_, err = fs.Create(fsconst.RootInodeID, "a")
	require.NoError(t, err)

	entries, err := fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = fs.Create(fsconst.RootInodeID, "b")
	require.NoError(t, err)

	// The directory's size says two entries, but the cached page predates
	// the second create, so its slot for "b" is still zeroed and stays
	// that way until the page is evicted.
	entries, err = fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Name)
	require.Equal(t, "", entries[1].Name)
	require.Equal(t, uint32(0), entries[1].InodeID)
}

func TestReaddirReturnsEntriesInCreationOrder(t *testing.T) {
	fs := newFormatted(t, 64)
	names := []string{"first", "second", "third", "fourth", "fifth"}
	for i, name := range names {
		var err error
		if i%2 == 0 {
			_, err = fs.Create(fsconst.RootInodeID, name)
		} else {
			_, err = fs.Mkdir(fsconst.RootInodeID, name)
		}
		require.NoError(t, err)
	}

	entries, err := fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Len(t, entries, len(names))
	for i, name := range names {
		require.Equal(t, name, entries[i].Name)
	}
}

func TestCreateExistingNameLeavesStateUnchanged(t *testing.T) {
	fs := newFormatted(t, 64)
	_, err := fs.Create(fsconst.RootInodeID, "dup")
	require.NoError(t, err)

	before, err := fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	var dumpBefore bytes.Buffer
	require.NoError(t, fs.Dump(&dumpBefore))

	_, err = fs.Create(fsconst.RootInodeID, "dup")
	require.ErrorIs(t, err, ErrExists)

	after, err := fs.Readdir(fsconst.RootInodeID)
	require.NoError(t, err)
	require.Equal(t, before, after)

	var dumpAfter bytes.Buffer
	require.NoError(t, fs.Dump(&dumpAfter))
	require.Equal(t, dumpBefore.String(), dumpAfter.String(),
		"a failed create must not change either bitmap")
}

func TestConcurrentWritesSameFileDistinctRanges(t *testing.T) {
	fs := newFormatted(t, 64)
	id, err := fs.Create(fsconst.RootInodeID, "shared.txt")
	require.NoError(t, err)

	// Pre-size the file so each writer lands in place: an offset past the
	// current size would be clamped into an append instead of hitting its
	// own 64-byte slot.
	_, err = fs.Write(id, 0, make([]byte, 256))
	require.NoError(t, err)

	const n = 4
	const msgLen = 20
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for tid := 0; tid < n; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			msg := bytes.Repeat([]byte{byte('A' + tid)}, msgLen)
			_, werr := fs.Write(id, uint32(tid*64), msg)
			errs <- werr
		}(tid)
	}
	wg.Wait()
	close(errs)
	for werr := range errs {
		require.NoError(t, werr)
	}

	for tid := 0; tid < n; tid++ {
		got, rerr := fs.Read(id, uint32(tid*64), msgLen)
		require.NoError(t, rerr)
		require.Equal(t, bytes.Repeat([]byte{byte('A' + tid)}, msgLen), got,
			"thread %d's range was clobbered", tid)
	}
}

func TestDumpReportsAllocationCounts(t *testing.T) {
	fs := newFormatted(t, 32)
	_, err := fs.Create(fsconst.RootInodeID, "a")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fs.Dump(&buf))
	require.Contains(t, buf.String(), "block bitmap")
	require.Contains(t, buf.String(), "inode bitmap")
}
