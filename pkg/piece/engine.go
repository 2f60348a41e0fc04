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

// Package piece implements the block-request loop that fills in one
// piece at a time from a single peer session, verifies it against
// info.pieces, and writes it to the output file at its absolute offset.
//
// There is exactly one peer session active per download; this package
// never schedules work across peers. A future multi-peer client would
// need a piece-assignment registry (index -> Pending/InFlight/Done)
// shared across connections, which this minimal engine has no use for.
package piece

import (
	"crypto/sha1"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raklaptudirm/mtor/internal/bterrors"
	"github.com/raklaptudirm/mtor/pkg/message"
	"github.com/raklaptudirm/mtor/pkg/metainfo"
	"github.com/raklaptudirm/mtor/pkg/peer"
)

// downloadTimeout bounds the wait for a single piece to finish; it is
// reset for every piece.
const downloadTimeout = 30 * time.Second

// Download fetches and verifies piece index i of t over session s,
// returning the piece's verified bytes.
//
// The block schedule is computed up front and every request is issued
// back to back (simple pipelining, §4.5); replies may arrive out of
// order and duplicates overwrite idempotently, since each reply carries
// its own begin offset. Every reply's bytes count toward the piece size,
// so a duplicate ends the loop before a block still missing arrives, and
// the piece then fails its hash check.
func Download(s *peer.Session, t *metainfo.Torrent, index int) ([]byte, error) {
	size := t.PieceSize(index)
	buf := make([]byte, size)

	log.Debug().Int("piece", index).Int64("size", size).Msg("mtor: downloading piece")

	s.Conn.SetDeadline(time.Now().Add(downloadTimeout))
	defer s.Conn.SetDeadline(time.Time{})

	blocks := t.BlockCount(index)
	requested := 0
	downloaded := 0

	for downloaded < int(size) {
		for !s.PeerChoking && requested < blocks {
			begin := int64(requested) * metainfo.BlockLength
			length := t.BlockSize(index, requested)

			if err := s.Request(index, int(begin), int(length)); err != nil {
				return nil, withPieceContext(index, err)
			}
			requested++
		}

		msg, err := s.ReadMessage()
		if err != nil {
			return nil, withPieceContext(index, err)
		}

		n, err := applyMessage(index, buf, msg)
		if err != nil {
			return nil, withPieceContext(index, err)
		}
		downloaded += n
	}

	hash := sha1.Sum(buf)
	if hash != t.PieceHashes[index] {
		log.Warn().Int("piece", index).Msg("mtor: piece hash mismatch")
		return nil, bterrors.New(bterrors.PieceHashMismatch, pieceContext(index), nil)
	}

	log.Debug().Int("piece", index).Msg("mtor: piece verified")

	return buf, nil
}

// applyMessage folds one peer message into buf, returning the length of
// the block it carried, whether or not that block had already been
// received. Messages other than Piece contribute 0 and
// are not an error: Have, Bitfield (shouldn't recur here but is
// harmless), and unknown ids are simply informational at this stage.
func applyMessage(index int, buf []byte, msg *message.Message) (int, error) {
	if msg.Identifier != message.Piece {
		return 0, nil
	}

	n, err := message.ParsePiece(index, buf, msg)
	if err != nil {
		return 0, bterrors.New(bterrors.PeerProtocolError, pieceContext(index), err)
	}
	return n, nil
}

// WriteAt writes a verified piece buffer to w at piece index's absolute
// offset within the whole file.
func WriteAt(w io.WriterAt, t *metainfo.Torrent, index int, buf []byte) error {
	if _, err := w.WriteAt(buf, t.Offset(index)); err != nil {
		return bterrors.New(bterrors.IoError, pieceContext(index), err)
	}
	return nil
}

func pieceContext(index int) string {
	return "piece " + strconv.Itoa(index)
}

func withPieceContext(index int, err error) error {
	if btErr, ok := err.(*bterrors.Error); ok && btErr.Context == "" {
		return bterrors.New(btErr.Kind, pieceContext(index), btErr.Err)
	}
	return err
}
