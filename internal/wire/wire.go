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

// Package wire defines the request/response records exchanged between
// internal/client and internal/server: a sum type over concrete, typed
// bodies rather than a tagged union laid over opaque bytes. Op says
// which concrete type Body holds, and dispatch on Op is exhaustive in
// internal/server.
package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/snfs-project/snfs/common"
)

// Op identifies which operation a Request/Response pair carries.
type Op uint8

const (
	OpPing Op = iota
	OpLookup
	OpRead
	OpWrite
	OpCreate
	OpMkdir
	OpReaddir
	OpCopy
	OpDebugDump
)

// String names the operation, matching the constants' spelling used for
// metrics and log lines throughout internal/server and internal/client.
func (o Op) String() string {
	switch o {
	case OpPing:
		return common.OpPing
	case OpLookup:
		return common.OpLookup
	case OpRead:
		return common.OpRead
	case OpWrite:
		return common.OpWrite
	case OpCreate:
		return common.OpCreate
	case OpMkdir:
		return common.OpMkdir
	case OpReaddir:
		return common.OpReaddir
	case OpCopy:
		return common.OpCopy
	case OpDebugDump:
		return common.OpDebugDump
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Status is the out-of-band result code every Response carries.
type Status uint8

const (
	StatusOK Status = iota
	StatusErr
)

// PingReq/PingResp round-trip a bounded diagnostic message.
type PingReq struct {
	Msg string
}
type PingResp struct {
	Msg string
}

// LookupReq resolves a full pathname to a handle; LookupResp carries the
// resolved handle and the target's current size.
type LookupReq struct {
	PName string
}
type LookupResp struct {
	File  uint32
	FSize uint32
}

// ReadReq/ReadResp carry a bounded byte range read from an open handle.
// NRead is unsigned; end of file is signaled by NRead == 0, not a
// negative count.
type ReadReq struct {
	FHandle uint32
	Offset  uint32
	Count   uint32
}
type ReadResp struct {
	NRead uint32
	Data  []byte
}

// WriteReq/WriteResp carry a bounded byte range written to an open
// handle. ToAllServers plumbs the replica fan-out flag, an extension
// point with no fan-out behind it yet; internal/client rejects it rather
// than silently ignoring it.
type WriteReq struct {
	FHandle      uint32
	Offset       uint32
	Data         []byte
	ToAllServers bool
}
type WriteResp struct {
	FSize uint32
}

// CreateReq/CreateResp create a new file inside an already-resolved
// parent directory.
type CreateReq struct {
	Dir          uint32
	Name         string
	ToAllServers bool
}
type CreateResp struct {
	File uint32
}

// MkdirReq/MkdirResp create a new subdirectory inside an already-resolved
// parent directory.
type MkdirReq struct {
	Dir          uint32
	Name         string
	ToAllServers bool
}
type MkdirResp struct {
	NewDirID uint32
}

// ReaddirReq/ReaddirResp list up to CMax entries of a directory.
type ReaddirReq struct {
	Dir  uint32
	CMax uint32
}
type ReaddirEntry struct {
	Name string
	Type uint32
}
type ReaddirResp struct {
	Count uint32
	List  []ReaddirEntry
}

// CopyReq/CopyResp duplicate a source file's content to a new target
// pathname entirely server-side.
type CopyReq struct {
	SrcPathname  string
	TgtPathname  string
	ToAllServers bool
}
type CopyResp struct{}

// DebugDumpReq/DebugDumpResp round-trip the human-readable bitmap dump,
// reachable only from cmd/snfsctl's debug-dump subcommand, never from
// ordinary client traffic.
type DebugDumpReq struct{}
type DebugDumpResp struct {
	Text string
}

func init() {
	gob.Register(PingReq{})
	gob.Register(PingResp{})
	gob.Register(LookupReq{})
	gob.Register(LookupResp{})
	gob.Register(ReadReq{})
	gob.Register(ReadResp{})
	gob.Register(WriteReq{})
	gob.Register(WriteResp{})
	gob.Register(CreateReq{})
	gob.Register(CreateResp{})
	gob.Register(MkdirReq{})
	gob.Register(MkdirResp{})
	gob.Register(ReaddirReq{})
	gob.Register(ReaddirResp{})
	gob.Register(CopyReq{})
	gob.Register(CopyResp{})
	gob.Register(DebugDumpReq{})
	gob.Register(DebugDumpResp{})
}

// Request is the fixed-shape envelope sent from client to server: a
// monotonic serial number assigned by the client stub, the operation
// code, and the typed body arm matching Op.
type Request struct {
	SN   uint32
	Op   Op
	Body any
}

// Response mirrors Request: the echoed serial number, an out-of-band
// status, and the typed body arm (zero-valued on StatusErr).
type Response struct {
	SN     uint32
	Status Status
	Body   any
}

// ErrFrameTooLarge guards against a corrupt or hostile length prefix
// before it is used to size a read buffer.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")

// MaxFrameSize bounds one encoded Request or Response, comfortably above
// MaxReadData/MaxWriteData plus encoding overhead (see internal/fsconst).
const MaxFrameSize = 1 << 20

// EncodeRequest gob-encodes req and frames it with a 4-byte big-endian
// length prefix, keeping one send equal to one record over the datagram
// transport.
func EncodeRequest(req Request) ([]byte, error) { return encodeFramed(req) }

// EncodeResponse gob-encodes resp with the same framing as EncodeRequest.
func EncodeResponse(resp Response) ([]byte, error) { return encodeFramed(resp) }

// DecodeRequest parses a framed Request produced by EncodeRequest.
func DecodeRequest(b []byte) (Request, error) {
	var req Request
	err := decodeFramed(b, &req)
	return req, err
}

// DecodeResponse parses a framed Response produced by EncodeResponse.
func DecodeResponse(b []byte) (Response, error) {
	var resp Response
	err := decodeFramed(b, &resp)
	return resp, err
}

func encodeFramed(v any) ([]byte, error) {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(v); err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	if body.Len() > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	out := make([]byte, 4+body.Len())
	binary.BigEndian.PutUint32(out[:4], uint32(body.Len()))
	copy(out[4:], body.Bytes())
	return out, nil
}

func decodeFramed(b []byte, v any) error {
	if len(b) < 4 {
		return io.ErrUnexpectedEOF
	}
	n := binary.BigEndian.Uint32(b[:4])
	if n > MaxFrameSize {
		return ErrFrameTooLarge
	}
	if uint32(len(b)-4) < n {
		return io.ErrUnexpectedEOF
	}
	return gob.NewDecoder(bytes.NewReader(b[4 : 4+n])).Decode(v)
}
