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

package cli

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/raklaptudirm/mtor/internal/bterrors"
	"github.com/raklaptudirm/mtor/pkg/peer"
	"github.com/raklaptudirm/mtor/pkg/tracker"
)

// dialTimeout bounds the TCP connect for the handshake command.
const dialTimeout = 5 * time.Second

// Handshake dials addr, performs the peer handshake for the torrent at
// path, and prints the remote peer's id.
func Handshake(w io.Writer, path, addr string) error {
	t, err := openTorrent(path)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return bterrors.New(bterrors.IoError, addr, err)
	}
	defer conn.Close()

	var peerID [20]byte
	copy(peerID[:], tracker.PeerID)

	hs, err := peer.Handshake(conn, t.InfoHash, peerID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Peer ID: %x\n", hs.Identifier)
	return nil
}
