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
)

// Info prints the torrent's tracker URL, length, info hash, piece
// length, and every piece hash, in that order, to w.
func Info(w io.Writer, path string) error {
	t, err := openTorrent(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Tracker URL: %s\n", t.Announce)
	fmt.Fprintf(w, "Length: %d\n", t.Length)
	fmt.Fprintf(w, "Info Hash: %x\n", t.InfoHash)
	fmt.Fprintf(w, "Piece Length: %d\n", t.PieceLength)
	fmt.Fprintln(w, "Piece Hashes:")
	for _, hash := range t.PieceHashes {
		fmt.Fprintf(w, "%x\n", hash)
	}

	return nil
}

// openTorrent reads and parses the metainfo file at path.
func openTorrent(path string) (*metainfo.Torrent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, bterrors.New(bterrors.IoError, path, err)
	}
	defer f.Close()

	return metainfo.Parse(f)
}
