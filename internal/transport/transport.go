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

// Package transport wraps the connectionless local datagram socket the
// protocol runs over: client and server each bind a path in the
// filesystem namespace and exchange framed records over it.
// internal/server and internal/client both sit on top of it.
package transport

import (
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Transport is a bound Unix datagram socket endpoint.
type Transport struct {
	conn *net.UnixConn
	peer *net.UnixAddr // default destination for Send; nil for a server Transport
}

// Listen binds a SOCK_DGRAM socket at path, unlinking any stale socket
// file left behind by a prior, uncleanly-terminated process first. The
// bound socket is chmod'd 0600 since it identifies a server endpoint,
// not a shared rendezvous point.
func Listen(path string) (*Transport, error) {
	if err := unix.Unlink(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("transport: unlink stale socket %s: %w", path, err)
	}
	addr := &net.UnixAddr{Name: path, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", path, err)
	}
	if err := unix.Chmod(path, 0o600); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: chmod %s: %w", path, err)
	}
	return &Transport{conn: conn}, nil
}

// Dial binds an ephemeral local socket at clientPath (the client's own
// receive address) for talking to a server at serverPath. clientPath is
// unlinked and recreated the same way Listen's server path is.
func Dial(clientPath, serverPath string) (*Transport, error) {
	tr, err := Listen(clientPath)
	if err != nil {
		return nil, err
	}
	tr.peer = &net.UnixAddr{Name: serverPath, Net: "unixgram"}
	return tr, nil
}

// SendTo sends b as a single datagram to addr, overriding the transport's
// configured peer (if any) for this one send.
func (t *Transport) SendTo(addr *net.UnixAddr, b []byte) error {
	_, err := t.conn.WriteToUnix(b, addr)
	return err
}

// Send sends b to the transport's configured peer (set by Dial).
func (t *Transport) Send(b []byte) error {
	return t.SendTo(t.peer, b)
}

// Recv blocks until one datagram arrives, returning its payload and the
// sender's address. There is no timeout: the client stub blocks
// indefinitely on a response; callers that want a bound use SetDeadline.
func (t *Transport) Recv() ([]byte, *net.UnixAddr, error) {
	buf := make([]byte, 64*1024)
	n, from, err := t.conn.ReadFromUnix(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], from, nil
}

// SetDeadline optionally bounds the next Recv call; used by tests that
// want to assert on a hung server without blocking the suite forever.
// Production client code leaves this unset.
func (t *Transport) SetDeadline(d time.Time) error {
	return t.conn.SetDeadline(d)
}

// LocalAddr returns the socket's own bound path.
func (t *Transport) LocalAddr() *net.UnixAddr {
	a, _ := t.conn.LocalAddr().(*net.UnixAddr)
	return a
}

// Close closes the socket and removes its filesystem entry.
func (t *Transport) Close() error {
	path := ""
	if a, ok := t.conn.LocalAddr().(*net.UnixAddr); ok {
		path = a.Name
	}
	err := t.conn.Close()
	if path != "" {
		_ = os.Remove(path)
	}
	return err
}
