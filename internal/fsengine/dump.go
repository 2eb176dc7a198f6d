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
	"fmt"
	"io"

	"github.com/snfs-project/snfs/internal/fsconst"
)

// Dump writes a human-readable summary of the free-block and free-inode
// bitmaps to w: one line per bitmap, "1" for allocated and "0" for free,
// preceded by the allocation counts. It is reachable over the wire as
// OpDebugDump and from snfsd on SIGUSR1, never from normal client
// traffic.
func (fs *FS) Dump(w io.Writer) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := fs.dev.NumBlocks()
	fmt.Fprintf(w, "block bitmap (%d blocks, %d allocated):\n", n, fs.tab.BlockBitmap.CountSet(n))
	for b := uint32(0); b < n; b++ {
		if fs.tab.BlockBitmap.Test(b) {
			fmt.Fprint(w, "1")
		} else {
			fmt.Fprint(w, "0")
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "inode bitmap (%d inodes, %d allocated):\n", fsconst.ITabSize, fs.tab.InodeBitmap.CountSet(fsconst.ITabSize))
	for i := uint32(0); i < fsconst.ITabSize; i++ {
		if fs.tab.InodeBitmap.Test(i) {
			fmt.Fprint(w, "1")
		} else {
			fmt.Fprint(w, "0")
		}
	}
	fmt.Fprintln(w)
	return nil
}
