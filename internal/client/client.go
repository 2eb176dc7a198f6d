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

// Package client is the thin client stub: it serializes each engine
// operation into a wire.Request, blocks for the matching wire.Response,
// and surfaces a status. The socket, the server address, and the
// serial-number counter all live on a Stub instance, never in
// process-wide globals, so tests and callers can run several independent
// clients side by side.
package client

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/snfs-project/snfs/internal/logger"
	"github.com/snfs-project/snfs/internal/transport"
	"github.com/snfs-project/snfs/internal/wire"
)

// ErrStatus is returned for any error-status response, transport
// failure, or serial-number mismatch: one sentinel the caller can wrap
// or compare against with errors.Is.
var ErrStatus = errors.New("client: STAT_ERROR")

// ErrReplicationUnsupported mirrors internal/server's rejection of the
// ToAllServers fan-out flag: the stub refuses to send a request it knows
// the server will reject, rather than round-tripping a request doomed to
// fail.
var ErrReplicationUnsupported = errors.New("client: replica fan-out (to_all_servers) is not supported")

// Stub is one client's connection to a single server. Concurrent callers
// each get a distinct SN from sn, but they share one receive socket and
// can race for each other's responses; callers that need concurrency use
// one Stub, with its own socket path, per goroutine.
type Stub struct {
	tr *transport.Transport
	sn atomic.Uint32
}

// Dial creates a Stub bound to its own client-side socket at clientPath,
// talking to a server listening at serverPath.
func Dial(clientPath, serverPath string) (*Stub, error) {
	tr, err := transport.Dial(clientPath, serverPath)
	if err != nil {
		return nil, err
	}
	return &Stub{tr: tr}, nil
}

// Close releases the stub's socket.
func (s *Stub) Close() error {
	return s.tr.Close()
}

// RemoteCall assigns the next serial number to req, sends it, and blocks
// for the matching response. A response whose SN doesn't match is
// discarded and reported as ErrStatus; at most one stale datagram is
// drained before giving up, so a backed-up peer can't wedge the stub
// indefinitely.
func (s *Stub) RemoteCall(op wire.Op, body any) (wire.Response, error) {
	sn := s.sn.Add(1)
	req := wire.Request{SN: sn, Op: op, Body: body}

	enc, err := wire.EncodeRequest(req)
	if err != nil {
		return wire.Response{}, fmt.Errorf("%w: encode: %v", ErrStatus, err)
	}
	if err := s.tr.Send(enc); err != nil {
		return wire.Response{}, fmt.Errorf("%w: send: %v", ErrStatus, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		raw, _, err := s.tr.Recv()
		if err != nil {
			return wire.Response{}, fmt.Errorf("%w: recv: %v", ErrStatus, err)
		}
		if len(raw) == 0 {
			return wire.Response{}, fmt.Errorf("%w: zero-length response", ErrStatus)
		}
		resp, err := wire.DecodeResponse(raw)
		if err != nil {
			return wire.Response{}, fmt.Errorf("%w: decode: %v", ErrStatus, err)
		}
		if resp.SN != sn {
			logger.Warnf("client: sn mismatch (want %d got %d), draining one datagram", sn, resp.SN)
			continue
		}
		if resp.Status != wire.StatusOK {
			return resp, ErrStatus
		}
		return resp, nil
	}
	return wire.Response{}, fmt.Errorf("%w: serial number mismatch persisted", ErrStatus)
}

// Ping round-trips msg through the server.
func (s *Stub) Ping(msg string) (string, error) {
	resp, err := s.RemoteCall(wire.OpPing, wire.PingReq{Msg: msg})
	if err != nil {
		return "", err
	}
	return resp.Body.(wire.PingResp).Msg, nil
}

// Lookup resolves a full pathname to a handle and its current size.
func (s *Stub) Lookup(path string) (handle uint32, size uint32, err error) {
	resp, err := s.RemoteCall(wire.OpLookup, wire.LookupReq{PName: path})
	if err != nil {
		return 0, 0, err
	}
	b := resp.Body.(wire.LookupResp)
	return b.File, b.FSize, nil
}

// Read returns up to count bytes of handle's data starting at offset.
func (s *Stub) Read(handle, offset, count uint32) ([]byte, error) {
	resp, err := s.RemoteCall(wire.OpRead, wire.ReadReq{FHandle: handle, Offset: offset, Count: count})
	if err != nil {
		return nil, err
	}
	b := resp.Body.(wire.ReadResp)
	return b.Data[:b.NRead], nil
}

// Write stores data at offset in handle and returns the file's resulting
// size. toAllServers is rejected rather than silently accepted.
func (s *Stub) Write(handle, offset uint32, data []byte, toAllServers bool) (uint32, error) {
	if toAllServers {
		return 0, ErrReplicationUnsupported
	}
	resp, err := s.RemoteCall(wire.OpWrite, wire.WriteReq{FHandle: handle, Offset: offset, Data: data})
	if err != nil {
		return 0, err
	}
	return resp.Body.(wire.WriteResp).FSize, nil
}

// Create makes a new file named name inside directory dir.
func (s *Stub) Create(dir uint32, name string, toAllServers bool) (uint32, error) {
	if toAllServers {
		return 0, ErrReplicationUnsupported
	}
	resp, err := s.RemoteCall(wire.OpCreate, wire.CreateReq{Dir: dir, Name: name})
	if err != nil {
		return 0, err
	}
	return resp.Body.(wire.CreateResp).File, nil
}

// Mkdir makes a new directory named name inside directory dir.
func (s *Stub) Mkdir(dir uint32, name string, toAllServers bool) (uint32, error) {
	if toAllServers {
		return 0, ErrReplicationUnsupported
	}
	resp, err := s.RemoteCall(wire.OpMkdir, wire.MkdirReq{Dir: dir, Name: name})
	if err != nil {
		return 0, err
	}
	return resp.Body.(wire.MkdirResp).NewDirID, nil
}

// Readdir lists up to cmax entries of directory dir.
func (s *Stub) Readdir(dir, cmax uint32) ([]wire.ReaddirEntry, error) {
	resp, err := s.RemoteCall(wire.OpReaddir, wire.ReaddirReq{Dir: dir, CMax: cmax})
	if err != nil {
		return nil, err
	}
	b := resp.Body.(wire.ReaddirResp)
	return b.List[:b.Count], nil
}

// Copy duplicates srcPath's content to tgtPath, entirely server-side.
func (s *Stub) Copy(srcPath, tgtPath string, toAllServers bool) error {
	if toAllServers {
		return ErrReplicationUnsupported
	}
	_, err := s.RemoteCall(wire.OpCopy, wire.CopyReq{SrcPathname: srcPath, TgtPathname: tgtPath})
	return err
}

// DebugDump fetches the server's bitmap dump, used by cmd/snfsctl's
// debug-dump subcommand.
func (s *Stub) DebugDump() (string, error) {
	resp, err := s.RemoteCall(wire.OpDebugDump, wire.DebugDumpReq{})
	if err != nil {
		return "", err
	}
	return resp.Body.(wire.DebugDumpResp).Text, nil
}
