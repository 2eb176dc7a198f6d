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

// Package bitmap implements the byte-addressed allocation bitmap used for
// both the free-block and free-inode tables: a set bit means "allocated".
package bitmap

// Bitmap is a fixed-size bit array backed by a byte slice. The zero value
// is not usable; use New.
type Bitmap struct {
	bits []byte
}

// New returns a Bitmap with room for at least nbits bits, all clear.
func New(nbits int) *Bitmap {
	return &Bitmap{bits: make([]byte, (nbits+7)/8)}
}

// FromBytes wraps an existing byte slice (e.g. one just read off the block
// device) as a Bitmap without copying.
func FromBytes(b []byte) *Bitmap {
	return &Bitmap{bits: b}
}

// Bytes returns the backing array, for writing back to the block device.
func (b *Bitmap) Bytes() []byte {
	return b.bits
}

// Test reports whether bit i is set.
func (b *Bitmap) Test(i uint32) bool {
	idx := i / 8
	if int(idx) >= len(b.bits) {
		return false
	}
	return b.bits[idx]&(1<<(i%8)) != 0
}

// Set marks bit i allocated.
func (b *Bitmap) Set(i uint32) {
	idx := i / 8
	if int(idx) >= len(b.bits) {
		return
	}
	b.bits[idx] |= 1 << (i % 8)
}

// Clear marks bit i free. The core never calls this (blocks and inodes are
// never freed) but it is kept for completeness and for tests that want to
// construct fixtures directly.
func (b *Bitmap) Clear(i uint32) {
	idx := i / 8
	if int(idx) >= len(b.bits) {
		return
	}
	b.bits[idx] &^= 1 << (i % 8)
}

// FindFree scans for the smallest index below limit whose bit is clear.
// Ties are impossible since the scan is in increasing order; the first hit
// is returned. ok is false if every bit below limit is set.
func (b *Bitmap) FindFree(limit uint32) (i uint32, ok bool) {
	for i = 0; i < limit; i++ {
		if !b.Test(i) {
			return i, true
		}
	}
	return 0, false
}

// CountSet returns the number of set bits below limit, used by the
// debug-dump / statistics path.
func (b *Bitmap) CountSet(limit uint32) int {
	n := 0
	for i := uint32(0); i < limit; i++ {
		if b.Test(i) {
			n++
		}
	}
	return n
}
