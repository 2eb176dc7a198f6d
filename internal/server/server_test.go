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

package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/snfs-project/snfs/internal/fsengine"
	"github.com/snfs-project/snfs/internal/transport"
	"github.com/snfs-project/snfs/internal/wire"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *transport.Transport, string) {
	t.Helper()
	fs, err := fsengine.New(64, 0, fsengine.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, fs.Format())

	dir := t.TempDir()
	serverPath := filepath.Join(dir, "server.sock")
	tr, err := transport.Listen(serverPath)
	require.NoError(t, err)

	return New(fs, tr), tr, serverPath
}

func callOnce(t *testing.T, serverPath, clientPath string, req wire.Request) wire.Response {
	t.Helper()
	cli, err := transport.Dial(clientPath, serverPath)
	require.NoError(t, err)
	defer cli.Close()

	enc, err := wire.EncodeRequest(req)
	require.NoError(t, err)
	require.NoError(t, cli.Send(enc))
	require.NoError(t, cli.SetDeadline(time.Now().Add(2*time.Second)))

	raw, _, err := cli.Recv()
	require.NoError(t, err)
	resp, err := wire.DecodeResponse(raw)
	require.NoError(t, err)
	return resp
}

func TestServeDispatchesPing(t *testing.T) {
	srv, tr, serverPath := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)
	defer tr.Close()

	dir := t.TempDir()
	resp := callOnce(t, serverPath, filepath.Join(dir, "client.sock"),
		wire.Request{SN: 1, Op: wire.OpPing, Body: wire.PingReq{Msg: "ping-test"}})

	require.Equal(t, wire.StatusOK, resp.Status)
	require.Equal(t, uint32(1), resp.SN)
	require.Equal(t, "ping-test", resp.Body.(wire.PingResp).Msg)
}

func TestServeCreateWriteReadLookup(t *testing.T) {
	srv, tr, serverPath := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)
	defer tr.Close()

	dir := t.TempDir()
	clientPath := filepath.Join(dir, "client.sock")

	resp := callOnce(t, serverPath, clientPath,
		wire.Request{SN: 1, Op: wire.OpCreate, Body: wire.CreateReq{Dir: 1, Name: "file1.txt"}})
	require.Equal(t, wire.StatusOK, resp.Status)
	fh := resp.Body.(wire.CreateResp).File

	payload := []byte("Testing SNFS write/read\x00")
	resp = callOnce(t, serverPath, clientPath,
		wire.Request{SN: 2, Op: wire.OpWrite, Body: wire.WriteReq{FHandle: fh, Offset: 0, Data: payload}})
	require.Equal(t, wire.StatusOK, resp.Status)
	require.Equal(t, uint32(len(payload)), resp.Body.(wire.WriteResp).FSize)

	resp = callOnce(t, serverPath, clientPath,
		wire.Request{SN: 3, Op: wire.OpRead, Body: wire.ReadReq{FHandle: fh, Offset: 0, Count: 256}})
	require.Equal(t, wire.StatusOK, resp.Status)
	rr := resp.Body.(wire.ReadResp)
	require.Equal(t, uint32(len(payload)), rr.NRead)
	require.Equal(t, payload, rr.Data)

	resp = callOnce(t, serverPath, clientPath,
		wire.Request{SN: 4, Op: wire.OpLookup, Body: wire.LookupReq{PName: "/file1.txt"}})
	require.Equal(t, wire.StatusOK, resp.Status)
	require.Equal(t, fh, resp.Body.(wire.LookupResp).File)
}

func TestServeLookupMissingReturnsErr(t *testing.T) {
	srv, tr, serverPath := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)
	defer tr.Close()

	dir := t.TempDir()
	resp := callOnce(t, serverPath, filepath.Join(dir, "client.sock"),
		wire.Request{SN: 1, Op: wire.OpLookup, Body: wire.LookupReq{PName: "/does_not_exist"}})
	require.Equal(t, wire.StatusErr, resp.Status)
	require.Equal(t, uint32(1), resp.SN)
}

func TestServeRejectsReplicaFanOut(t *testing.T) {
	srv, tr, serverPath := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)
	defer tr.Close()

	dir := t.TempDir()
	resp := callOnce(t, serverPath, filepath.Join(dir, "client.sock"),
		wire.Request{SN: 1, Op: wire.OpCreate, Body: wire.CreateReq{Dir: 1, Name: "f", ToAllServers: true}})
	require.Equal(t, wire.StatusErr, resp.Status)
}
