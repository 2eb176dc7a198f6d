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

// Package blockdev simulates a fixed-size block device: an in-memory array
// of equal-size blocks with an optional per-access delay used to model the
// latency of a real disk. Nothing here is durable across process restart.
package blockdev

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/snfs-project/snfs/internal/fsconst"
)

// ErrOutOfRange is returned by Read/Write when the block number is not in
// [0, NumBlocks()).
var ErrOutOfRange = errors.New("blockdev: block number out of range")

// Device is a fixed array of fsconst.BlockSize-byte blocks.
type Device struct {
	blocks [][fsconst.BlockSize]byte
	delay  time.Duration
	warm   atomic.Bool
}

// New allocates a zeroed device of numBlocks blocks. delay is the simulated
// per-access latency applied to every Read/Write once the device has left
// its initial "cold" state (see MarkWarm) so that Format itself isn't
// penalized.
func New(numBlocks uint32, delay time.Duration) *Device {
	return &Device{
		blocks: make([][fsconst.BlockSize]byte, numBlocks),
		delay:  delay,
	}
}

// MarkWarm ends the cold/unpenalized startup window; subsequent Read/Write
// calls sleep for the configured delay. Format calls this once it has
// finished laying out a fresh filesystem.
func (d *Device) MarkWarm() {
	d.warm.Store(true)
}

// NumBlocks returns the number of blocks in the device.
func (d *Device) NumBlocks() uint32 {
	return uint32(len(d.blocks))
}

func (d *Device) sleep() {
	if d.warm.Load() && d.delay > 0 {
		time.Sleep(d.delay)
	}
}

// Read copies the contents of block into out, which must be at least
// fsconst.BlockSize bytes.
func (d *Device) Read(block uint32, out []byte) error {
	if block >= uint32(len(d.blocks)) {
		return ErrOutOfRange
	}
	d.sleep()
	copy(out, d.blocks[block][:])
	return nil
}

// Write overwrites block with the first fsconst.BlockSize bytes of in. If
// in is shorter than a block, the remainder of the block is zeroed.
func (d *Device) Write(block uint32, in []byte) error {
	if block >= uint32(len(d.blocks)) {
		return ErrOutOfRange
	}
	d.sleep()
	var buf [fsconst.BlockSize]byte
	copy(buf[:], in)
	d.blocks[block] = buf
	return nil
}
