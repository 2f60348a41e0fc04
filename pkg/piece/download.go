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

package piece

import (
	"io"

	"github.com/rs/zerolog/log"

	"github.com/raklaptudirm/mtor/pkg/metainfo"
	"github.com/raklaptudirm/mtor/pkg/peer"
)

// DownloadAll fetches every piece of t over session s, in order, writing
// each to w as soon as it verifies. The session is reused across pieces
// without re-handshaking, matching this client's single-peer model: a
// failure on any piece aborts the whole download, leaving whatever was
// already written on disk in place.
func DownloadAll(s *peer.Session, t *metainfo.Torrent, w io.WriterAt) error {
	total := t.PieceCount()
	for i := 0; i < total; i++ {
		buf, err := Download(s, t, i)
		if err != nil {
			return err
		}

		if err := WriteAt(w, t, i, buf); err != nil {
			return err
		}

		log.Info().Int("piece", i+1).Int("total", total).Msg("mtor: piece written")
	}

	return nil
}
