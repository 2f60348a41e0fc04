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

package message_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/raklaptudirm/mtor/pkg/message"
)

// NewRequest must always serialize with a length prefix of exactly
// RequestPayloadLen (13), followed by that many bytes. Some
// implementations hardcode 97 as this length, which is wrong.
func TestRequestSerializesToPayloadLen(t *testing.T) {
	req := message.NewRequest(4, 16384, 16384)
	serialized := req.Serialize()

	if got := binary.BigEndian.Uint32(serialized[:4]); got != message.RequestPayloadLen {
		t.Errorf("length prefix = %d, want %d", got, message.RequestPayloadLen)
	}
	if len(serialized) != 4+message.RequestPayloadLen {
		t.Errorf("len(Serialize()) = %d, want %d", len(serialized), 4+message.RequestPayloadLen)
	}
}

func TestSerializeReadRoundTrip(t *testing.T) {
	req := message.NewRequest(1, 2, 3)
	serialized := req.Serialize()

	got, err := message.Read(bytes.NewReader(serialized))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Identifier != message.Request {
		t.Errorf("Identifier = %v, want Request", got.Identifier)
	}
	if !bytes.Equal(got.Payload, req.Payload) {
		t.Errorf("Payload = %x, want %x", got.Payload, req.Payload)
	}
}

func TestReadKeepAlive(t *testing.T) {
	msg, err := message.Read(bytes.NewReader([]byte{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if msg != nil {
		t.Errorf("Read(keep-alive) = %v, want nil", msg)
	}
}

func TestParsePiece(t *testing.T) {
	payload := make([]byte, 8+3)
	payload[3] = 2 // index = 2
	payload[7] = 4 // begin = 4
	copy(payload[8:], []byte("xyz"))

	msg := &message.Message{Identifier: message.Piece, Payload: payload}

	buf := make([]byte, 16)
	n, err := message.ParsePiece(2, buf, msg)
	if err != nil {
		t.Fatalf("ParsePiece: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	if string(buf[4:7]) != "xyz" {
		t.Errorf("buf[4:7] = %q, want %q", buf[4:7], "xyz")
	}
}

func TestParsePieceWrongIndex(t *testing.T) {
	payload := make([]byte, 8)
	payload[3] = 9 // index = 9

	msg := &message.Message{Identifier: message.Piece, Payload: payload}
	if _, err := message.ParsePiece(2, make([]byte, 16), msg); err == nil {
		t.Error("ParsePiece: expected error for mismatched index, got nil")
	}
}
