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

// Package metainfo parses a .torrent metainfo file into a Torrent, the
// client's immutable view of a single-file download: the tracker URL, the
// info hash, the per-piece SHA-1 hashes, and piece/block sizing.
package metainfo

import (
	"crypto/sha1"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/raklaptudirm/mtor/internal/bterrors"
	"github.com/raklaptudirm/mtor/pkg/bencode"
)

// BlockLength is the fixed size of a peer-wire request block, B in the
// piece engine's block schedule. Only the final block of a piece may be
// shorter.
const BlockLength = 16384

// rawTorrent is the bencode shape of a .torrent file. Info is kept as a
// RawMessage so the exact bytes it spanned in the source survive into the
// info hash computation untouched; nothing here ever re-marshals info.
type rawTorrent struct {
	Announce string             `bencode:"announce"`
	Info     bencode.RawMessage `bencode:"info"`
}

// rawInfo is the bencode shape of the info sub-dictionary, decoded a
// second time from rawTorrent.Info purely to read its fields; it never
// feeds back into the hash.
type rawInfo struct {
	Name        string `bencode:"name"`
	Length      int64  `bencode:"length"`
	PieceLength int64  `bencode:"piece length"`
	Pieces      string `bencode:"pieces"`
}

// Torrent is the immutable, parsed view of a single-file torrent used by
// every other component.
type Torrent struct {
	Announce    string
	Name        string
	Length      int64
	PieceLength int64
	InfoHash    [20]byte
	PieceHashes [][20]byte
}

// Parse reads a .torrent metainfo file from r and validates it into a
// Torrent. Any required field that is absent or of the wrong bencode kind
// is reported as bterrors.MissingField; a grammar violation in the
// bencode itself is reported as bterrors.MalformedBencode.
func Parse(r io.Reader) (*Torrent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, bterrors.New(bterrors.IoError, "reading metainfo", err)
	}

	var raw rawTorrent
	if err := bencode.Unmarshal(data, &raw); err != nil {
		return nil, bterrors.New(decodeErrorKind(err), "metainfo", err)
	}

	if raw.Announce == "" {
		return nil, bterrors.New(bterrors.MissingField, "announce", nil)
	}
	if len(raw.Info) == 0 {
		return nil, bterrors.New(bterrors.MissingField, "info", nil)
	}

	var info rawInfo
	if err := bencode.Unmarshal(raw.Info, &info); err != nil {
		return nil, bterrors.New(decodeErrorKind(err), "info", err)
	}

	if info.Name == "" {
		return nil, bterrors.New(bterrors.MissingField, "info.name", nil)
	}
	if info.Length <= 0 {
		return nil, bterrors.New(bterrors.MissingField, "info.length", nil)
	}
	if info.PieceLength <= 0 {
		return nil, bterrors.New(bterrors.MissingField, "info.piece length", nil)
	}

	hashes, err := splitPieceHashes(info.Pieces)
	if err != nil {
		return nil, bterrors.New(bterrors.MalformedBencode, "info.pieces", err)
	}

	return &Torrent{
		Announce:    raw.Announce,
		Name:        info.Name,
		Length:      info.Length,
		PieceLength: info.PieceLength,
		InfoHash:    sha1.Sum(raw.Info),
		PieceHashes: hashes,
	}, nil
}

// decodeErrorKind classifies an Unmarshal error: a field holding the
// wrong bencode kind is MissingField, anything else MalformedBencode.
func decodeErrorKind(err error) bterrors.Kind {
	if _, ok := err.(*bencode.UnmarshalTypeError); ok {
		return bterrors.MissingField
	}
	return bterrors.MalformedBencode
}

// splitPieceHashes splits the info.pieces byte string into its 20-byte
// SHA-1 runs, one per piece, in order.
func splitPieceHashes(pieces string) ([][20]byte, error) {
	if len(pieces)%20 != 0 {
		return nil, errors.Errorf("pieces string has length %d, not a multiple of 20", len(pieces))
	}

	n := len(pieces) / 20
	hashes := make([][20]byte, n)
	for i := range hashes {
		copy(hashes[i][:], pieces[i*20:(i+1)*20])
	}
	return hashes, nil
}

// PieceCount returns P, the number of pieces the torrent is split into.
func (t *Torrent) PieceCount() int {
	return len(t.PieceHashes)
}

// PieceSize returns the size in bytes of piece i. Every piece but the
// last is exactly t.PieceLength; the last is t.Length - (P-1)*PieceLength,
// which is only ever zero when the torrent itself is empty. Naively
// computing the last piece as length % piece_length is wrong whenever the
// total length is an exact multiple of the piece length: that yields 0
// instead of a full final piece.
func (t *Torrent) PieceSize(i int) int64 {
	if i < t.PieceCount()-1 {
		return t.PieceLength
	}
	return t.Length - int64(t.PieceCount()-1)*t.PieceLength
}

// BlockCount returns K, the number of blocks piece i is split into under
// the fixed block length BlockLength.
func (t *Torrent) BlockCount(i int) int {
	size := t.PieceSize(i)
	return int((size + BlockLength - 1) / BlockLength)
}

// BlockSize returns the length of block k of piece i. Every block but the
// last in a piece is exactly BlockLength; the last is whatever remains.
func (t *Torrent) BlockSize(i, k int) int64 {
	size := t.PieceSize(i)
	begin := int64(k) * BlockLength
	if remaining := size - begin; remaining < BlockLength {
		return remaining
	}
	return BlockLength
}

// Offset returns the absolute byte offset of piece i within the whole
// file, for writing a verified piece buffer with a single seek.
func (t *Torrent) Offset(i int) int64 {
	return int64(i) * t.PieceLength
}

func (t *Torrent) String() string {
	return fmt.Sprintf("%s (%d bytes, %d pieces of %d)", t.Name, t.Length, t.PieceCount(), t.PieceLength)
}
