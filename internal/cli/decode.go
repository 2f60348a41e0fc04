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

// Package cli implements the subcommands of the mtor client: decode,
// info, peers, handshake, download_piece, and download. Each is a thin
// function over the packages that do the real work, so the kong command
// structs in cmd/mtor have nothing to do but parse flags and call in.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/raklaptudirm/mtor/internal/bterrors"
	"github.com/raklaptudirm/mtor/pkg/bencode"
	"github.com/raklaptudirm/mtor/pkg/bencode/jsonproj"
)

// Decode prints the JSON projection of the bencoded value in raw, one
// line, to w. Unlike the tolerant decode paths used for embedded
// structures (e.g. the info sub-dict), the top-level value here must
// account for every byte of raw; trailing bytes after it are rejected.
func Decode(w io.Writer, raw string) error {
	value, remaining, err := bencode.Decode([]byte(raw))
	if err != nil {
		return bterrors.New(bterrors.MalformedBencode, "decode", err)
	}
	if len(remaining) != 0 {
		return bterrors.New(bterrors.MalformedBencode, "decode", errors.Errorf("unexpected trailing bytes after top-level value"))
	}

	projected, err := jsonproj.Project(value)
	if err != nil {
		return err
	}

	out, err := json.Marshal(projected)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, string(out))
	return nil
}
