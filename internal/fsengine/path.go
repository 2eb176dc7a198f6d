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
	"strings"

	"github.com/snfs-project/snfs/internal/fsconst"
)

// ResolvePath walks path component by component from the root, the
// multi-component counterpart to the single-component Lookup. path must
// start with "/"; the bare "/" resolves to the root inode without
// touching any directory. A missing component anywhere along the way
// reports ErrNotFound; a non-directory encountered before the last
// component reports ErrNotDir.
func (fs *FS) ResolvePath(path string) (uint32, error) {
	if path == "" || path[0] != '/' {
		return 0, ErrInvalidArgument
	}
	if path == "/" {
		return fsconst.RootInodeID, nil
	}

	id := uint32(fsconst.RootInodeID)
	for _, comp := range strings.Split(path, "/") {
		if comp == "" {
			continue
		}
		next, err := fs.Lookup(id, comp)
		if err != nil {
			return 0, err
		}
		id = next
	}
	return id, nil
}

// SplitParentPath splits path at its final "/" into the parent directory
// path and the final component's name, for operations (Copy's target,
// mkdir-style creation from a full path) that take one combined pathname
// rather than a pre-resolved (parent, name) pair. path must start with
// "/" and must contain a name after the last "/".
func SplitParentPath(path string) (parent, name string, err error) {
	if path == "" || path[0] != '/' {
		return "", "", ErrInvalidArgument
	}
	idx := strings.LastIndexByte(path, '/')
	name = path[idx+1:]
	if name == "" {
		return "", "", ErrInvalidArgument
	}
	if idx == 0 {
		parent = "/"
	} else {
		parent = path[:idx]
	}
	return parent, name, nil
}
