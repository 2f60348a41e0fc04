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
	"os"

	"github.com/raklaptudirm/mtor/internal/bterrors"
	"github.com/raklaptudirm/mtor/pkg/metainfo"
	"github.com/raklaptudirm/mtor/pkg/peer"
	"github.com/raklaptudirm/mtor/pkg/piece"
	"github.com/raklaptudirm/mtor/pkg/tracker"
)

// DownloadPiece fetches a single piece of the torrent at path and writes
// exactly its bytes to out.
func DownloadPiece(w io.Writer, path, out string, index int) error {
	t, err := openTorrent(path)
	if err != nil {
		return err
	}
	if index < 0 || index >= t.PieceCount() {
		return bterrors.New(bterrors.MissingField, "piece index", nil)
	}

	session, err := dialFirstPeer(t)
	if err != nil {
		return err
	}
	defer session.Close()

	buf, err := piece.Download(session, t, index)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, buf, 0o644); err != nil {
		return bterrors.New(bterrors.IoError, out, err)
	}

	fmt.Fprintf(w, "Piece %d downloaded to %s\n", index, out)
	return nil
}

// dialFirstPeer announces to the tracker and opens a session with the
// first peer it returns. This minimal client never tries a second peer
// on failure; that would require the piece-assignment bookkeeping this
// core intentionally leaves out.
func dialFirstPeer(t *metainfo.Torrent) (*peer.Session, error) {
	peers, err := tracker.Announce(t)
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return nil, bterrors.New(bterrors.TrackerError, "no peers returned", nil)
	}

	var peerID [20]byte
	copy(peerID[:], tracker.PeerID)

	return peer.NewSession(peers[0], t.InfoHash, peerID)
}
