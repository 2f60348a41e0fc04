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
	"testing"

	"github.com/raklaptudirm/mtor/pkg/message"
)

func TestHandshakeSerializeLen(t *testing.T) {
	hash := [20]byte{1}
	id := [20]byte{2}
	hs := message.NewHandshake(hash, id)

	serialized := hs.Serialize()
	if len(serialized) != message.HandshakeLen {
		t.Errorf("len(Serialize()) = %d, want %d", len(serialized), message.HandshakeLen)
	}
}

func TestHandshakeRoundTrip(t *testing.T) {
	hash := [20]byte{1, 2, 3}
	id := [20]byte{4, 5, 6}
	hs := message.NewHandshake(hash, id)

	got, err := message.ReadHandshake(bytes.NewReader(hs.Serialize()))
	if err != nil {
		t.Fatalf("ReadHandshake: %v", err)
	}

	if got.Protocol != message.ProtocolName {
		t.Errorf("Protocol = %q, want %q", got.Protocol, message.ProtocolName)
	}
	if got.InfoHash != hash {
		t.Errorf("InfoHash = %x, want %x", got.InfoHash, hash)
	}
	if got.Identifier != id {
		t.Errorf("Identifier = %x, want %x", got.Identifier, id)
	}

	if err := got.Verify(hash); err != nil {
		t.Errorf("Verify(matching hash): %v", err)
	}
	if err := got.Verify([20]byte{9}); err == nil {
		t.Error("Verify(mismatched hash): expected error, got nil")
	}
}
