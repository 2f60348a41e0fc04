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

package piece_test

import (
	"crypto/sha1"
	"encoding/binary"
	"net"
	"testing"

	"github.com/raklaptudirm/mtor/pkg/message"
	"github.com/raklaptudirm/mtor/pkg/metainfo"
	"github.com/raklaptudirm/mtor/pkg/peer"
	"github.com/raklaptudirm/mtor/pkg/piece"
)

// fakePeer serves one piece's worth of requests over conn, replying with
// a Piece message for every Request it reads, then returns.
func fakePeer(t *testing.T, conn net.Conn, data []byte, blockLen int) {
	t.Helper()

	for {
		msg, err := message.Read(conn)
		if err != nil {
			return
		}
		if msg == nil {
			continue
		}
		if msg.Identifier != message.Request {
			continue
		}

		index := binary.BigEndian.Uint32(msg.Payload[0:4])
		begin := binary.BigEndian.Uint32(msg.Payload[4:8])
		length := binary.BigEndian.Uint32(msg.Payload[8:12])

		payload := make([]byte, 8+length)
		binary.BigEndian.PutUint32(payload[0:4], index)
		binary.BigEndian.PutUint32(payload[4:8], begin)
		copy(payload[8:], data[begin:begin+length])

		reply := &message.Message{Identifier: message.Piece, Payload: payload}
		conn.Write(reply.Serialize())

		if int(begin+length) >= len(data) {
			return
		}
	}
}

func TestDownloadSinglePiece(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	hash := sha1.Sum(data)

	tor := &metainfo.Torrent{
		Length:      int64(len(data)),
		PieceLength: int64(len(data)),
		PieceHashes: [][20]byte{hash},
	}

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go fakePeer(t, server, data, 8)

	session := &peer.Session{Conn: client, PeerChoking: false}

	got, err := piece.Download(session, tor, 0)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Download returned %x, want %x", got, data)
	}
}

func TestDownloadHashMismatch(t *testing.T) {
	data := make([]byte, 8)
	tor := &metainfo.Torrent{
		Length:      int64(len(data)),
		PieceLength: int64(len(data)),
		PieceHashes: [][20]byte{{1, 2, 3}}, // deliberately wrong
	}

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go fakePeer(t, server, data, 8)

	session := &peer.Session{Conn: client, PeerChoking: false}

	if _, err := piece.Download(session, tor, 0); err == nil {
		t.Error("Download: expected hash mismatch error, got nil")
	}
}
