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

import "errors"

// Errors returned by engine operations, grouped by failure class. The
// dispatcher maps any non-nil error to an error response status; these
// distinct sentinels exist so callers (and tests) can assert on *why* an
// operation failed without string-matching.
var (
	// Malformed-argument
	ErrInvalidArgument = errors.New("fsengine: invalid argument")
	ErrNameTooLong     = errors.New("fsengine: name too long")

	// Not-found / type-mismatch
	ErrNotFound     = errors.New("fsengine: not found")
	ErrNotDir       = errors.New("fsengine: not a directory")
	ErrNotFile      = errors.New("fsengine: not a file")
	ErrNotAllocated = errors.New("fsengine: inode not allocated")

	// Already-exists
	ErrExists = errors.New("fsengine: name already exists")

	// Exhaustion
	ErrNoFreeInode   = errors.New("fsengine: no free inode")
	ErrNoFreeBlock   = errors.New("fsengine: no free block")
	ErrTooManyBlocks = errors.New("fsengine: direct block table full")

	// Indirect-not-supported
	ErrIndirectNotSupported = errors.New("fsengine: indirect blocks not supported")
)
