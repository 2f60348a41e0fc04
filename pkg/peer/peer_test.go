// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package peer_test

import (
	"net"
	"testing"

	"github.com/raklaptudirm/mtor/pkg/peer"
)

func TestUnmarshal(t *testing.T) {
	buf := []byte{
		127, 0, 0, 1, 0x1a, 0xe1, // 127.0.0.1:6881
		10, 0, 0, 2, 0x1a, 0xe2, // 10.0.0.2:6882
	}

	peers, err := peer.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(peers) != 2 {
		t.Fatalf("len(peers) = %d, want 2", len(peers))
	}
	if got := peers[0].String(); got != "127.0.0.1:6881" {
		t.Errorf("peers[0] = %q, want %q", got, "127.0.0.1:6881")
	}
	if got := peers[1].String(); got != "10.0.0.2:6882" {
		t.Errorf("peers[1] = %q, want %q", got, "10.0.0.2:6882")
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	if _, err := peer.Unmarshal([]byte{1, 2, 3}); err == nil {
		t.Error("Unmarshal: expected error for length not a multiple of 6")
	}
}

// Both sides write their handshake before reading the other's, so the
// test uses a buffered TCP loopback connection rather than net.Pipe,
// whose unbuffered writes would block each other.
func TestHandshakeRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	hash := [20]byte{1, 2, 3}
	clientID := [20]byte{4, 5, 6}
	serverID := [20]byte{7, 8, 9}

	done := make(chan error, 1)
	go func() {
		server, err := ln.Accept()
		if err != nil {
			done <- err
			return
		}
		defer server.Close()
		_, err = peer.Handshake(server, hash, serverID)
		done <- err
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	hs, err := peer.Handshake(client, hash, clientID)
	if err != nil {
		t.Fatalf("client Handshake: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server Handshake: %v", err)
	}

	if hs.Identifier != serverID {
		t.Errorf("Identifier = %x, want %x", hs.Identifier, serverID)
	}
}
