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

// Package fileapi is the client-side I/O-style library surface:
// Open/Read/Write/Close/Mkdir/ListDir over a client.Stub, with a bounded
// per-process open-file table. The core protocol stops at the stub; this
// thin file-descriptor API is what interactive tooling like snfsctl sits
// on.
package fileapi

import (
	"bytes"
	"errors"
	"strings"
	"sync"

	"github.com/snfs-project/snfs/common"
	"github.com/snfs-project/snfs/internal/client"
	"github.com/snfs-project/snfs/internal/fsconst"
)

// OpenFlag selects Open's creation behavior.
type OpenFlag uint8

// OCreate creates the target file in its enclosing directory if lookup
// fails. Without it, Open of a missing path fails with ErrNotFound.
const OCreate OpenFlag = 1 << 0

var (
	ErrTooManyOpenFiles = errors.New("fileapi: too many open files")
	ErrBadFileHandle    = errors.New("fileapi: bad file descriptor")
	ErrNotFound         = errors.New("fileapi: no such file")
	ErrInvalidPath      = errors.New("fileapi: path must start with / and name a file")
)

type openFile struct {
	used        bool
	handle      uint32
	size        uint32
	readOffset  uint32
	writeOffset uint32
}

// FileAPI is one process's view of the remote filesystem: a stub plus a
// bounded table of open files, each with independent read and write
// offsets.
type FileAPI struct {
	stub *client.Stub

	mu    sync.Mutex
	slots [fsconst.MaxOpenFiles]openFile
	free  common.Queue[int]
}

// Init wraps an already-dialed stub with a fresh, empty open-file table.
func Init(stub *client.Stub) *FileAPI {
	free := common.NewLinkedListQueue[int]()
	for i := 0; i < fsconst.MaxOpenFiles; i++ {
		free.Push(i)
	}
	return &FileAPI{stub: stub, free: free}
}

// splitParentPath splits path at its final "/" into a parent directory
// path and a file name, the minimum pathname handling needed to locate
// an enclosing directory for OCreate.
func splitParentPath(path string) (parent, name string, err error) {
	if len(path) == 0 || path[0] != '/' {
		return "", "", ErrInvalidPath
	}
	idx := strings.LastIndexByte(path, '/')
	name = path[idx+1:]
	if name == "" {
		return "", "", ErrInvalidPath
	}
	if idx == 0 {
		parent = "/"
	} else {
		parent = path[:idx]
	}
	return parent, name, nil
}

// Open resolves path to a handle, creating it in its enclosing directory
// first if flags includes OCreate and the path doesn't yet exist.
func (f *FileAPI) Open(path string, flags OpenFlag) (fd int, err error) {
	handle, size, err := f.stub.Lookup(path)
	if err != nil {
		if flags&OCreate == 0 {
			return -1, ErrNotFound
		}
		parent, name, serr := splitParentPath(path)
		if serr != nil {
			return -1, serr
		}
		parentHandle, _, lerr := f.stub.Lookup(parent)
		if lerr != nil {
			return -1, ErrNotFound
		}
		handle, err = f.stub.Create(parentHandle, name, false)
		if err != nil {
			return -1, err
		}
		size = 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.free.IsEmpty() {
		return -1, ErrTooManyOpenFiles
	}
	slot := f.free.Pop()
	f.slots[slot] = openFile{used: true, handle: handle, size: size}
	return slot, nil
}

func (f *FileAPI) slotFor(fd int) (*openFile, error) {
	if fd < 0 || fd >= len(f.slots) || !f.slots[fd].used {
		return nil, ErrBadFileHandle
	}
	return &f.slots[fd], nil
}

// Read fills buf with up to len(buf) bytes from fd's current read offset,
// chunking the underlying requests to fsconst.MaxReadData and advancing
// the descriptor's independent read offset by however much came back.
func (f *FileAPI) Read(fd int, buf []byte) (int, error) {
	f.mu.Lock()
	of, err := f.slotFor(fd)
	if err != nil {
		f.mu.Unlock()
		return 0, err
	}
	handle, offset := of.handle, of.readOffset
	f.mu.Unlock()

	var out bytes.Buffer
	remaining := uint32(len(buf))
	for remaining > 0 {
		chunk := remaining
		if chunk > fsconst.MaxReadData {
			chunk = fsconst.MaxReadData
		}
		data, rerr := f.stub.Read(handle, offset, chunk)
		if rerr != nil {
			return 0, rerr
		}
		if _, werr := common.CopyWhole(&out, bytes.NewReader(data), int64(len(data))); werr != nil {
			return 0, werr
		}
		offset += uint32(len(data))
		remaining -= chunk
		if uint32(len(data)) < chunk {
			break // short read: end of file
		}
	}

	n := copy(buf, out.Bytes())
	f.mu.Lock()
	of.readOffset += uint32(n)
	f.mu.Unlock()
	return n, nil
}

// Write sends data to fd's current write offset, chunking the underlying
// requests to fsconst.MaxWriteData. The descriptor's cached size is
// reconciled against the engine-reported fsize returned by the last
// chunk, not advanced by client-side arithmetic alone, so an engine that
// clamped the offset still leaves the descriptor consistent.
func (f *FileAPI) Write(fd int, data []byte) (int, error) {
	f.mu.Lock()
	of, err := f.slotFor(fd)
	if err != nil {
		f.mu.Unlock()
		return 0, err
	}
	handle, offset := of.handle, of.writeOffset
	f.mu.Unlock()

	written := 0
	var lastSize uint32
	for written < len(data) {
		end := written + fsconst.MaxWriteData
		if end > len(data) {
			end = len(data)
		}
		chunk := data[written:end]
		size, werr := f.stub.Write(handle, offset, chunk, false)
		if werr != nil {
			return written, werr
		}
		lastSize = size
		offset += uint32(len(chunk))
		written += len(chunk)
	}

	f.mu.Lock()
	of.writeOffset = offset
	of.size = lastSize
	f.mu.Unlock()
	return written, nil
}

// Close releases fd's slot back to the free pool.
func (f *FileAPI) Close(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.slotFor(fd); err != nil {
		return err
	}
	f.slots[fd] = openFile{}
	f.free.Push(fd)
	return nil
}

// Mkdir creates a new directory at path, resolving its enclosing
// directory first.
func (f *FileAPI) Mkdir(path string) error {
	parent, name, err := splitParentPath(path)
	if err != nil {
		return err
	}
	parentHandle, _, err := f.stub.Lookup(parent)
	if err != nil {
		return ErrNotFound
	}
	_, err = f.stub.Mkdir(parentHandle, name, false)
	return err
}

// ListDir returns the entry names of the directory at path.
func (f *FileAPI) ListDir(path string) ([]string, error) {
	handle, _, err := f.stub.Lookup(path)
	if err != nil {
		return nil, ErrNotFound
	}
	entries, err := f.stub.Readdir(handle, fsconst.MaxReaddirEntries)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}
