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

// Package peer implements the client side of a single BitTorrent peer
// wire session: dialing, the handshake, and the choke/interested state
// transitions that must complete before the piece engine may request
// blocks. Exactly one peer connection is active at a time; this package
// has no notion of a swarm.
package peer

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// addrLen is the byte length of one compact peer entry: 4 IPv4 bytes
// followed by a 2-byte big-endian port.
const addrLen = 6

// Peer is one tracker-announced peer address.
type Peer struct {
	IP   net.IP
	Port uint16
}

// String formats the peer as ip:port, suitable for net.Dial.
func (p Peer) String() string {
	return fmt.Sprintf("%s:%d", p.IP, p.Port)
}

// Unmarshal parses a tracker's compact peer list: 6 bytes per entry, no
// delimiters, in order.
func Unmarshal(buffer []byte) ([]Peer, error) {
	if len(buffer)%addrLen != 0 {
		return nil, errors.Errorf("malformed compact peer list of length %d", len(buffer))
	}

	n := len(buffer) / addrLen
	peers := make([]Peer, n)
	for i := range peers {
		offset := i * addrLen
		peers[i].IP = net.IP(buffer[offset : offset+4])
		peers[i].Port = binary.BigEndian.Uint16(buffer[offset+4 : offset+6])
	}
	return peers, nil
}
