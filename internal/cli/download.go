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
	"github.com/raklaptudirm/mtor/pkg/piece"
)

// Download fetches the complete torrent at path over a single peer
// session and writes it to out.
func Download(w io.Writer, path, out string) error {
	t, err := openTorrent(path)
	if err != nil {
		return err
	}

	session, err := dialFirstPeer(t)
	if err != nil {
		return err
	}
	defer session.Close()

	f, err := os.Create(out)
	if err != nil {
		return bterrors.New(bterrors.IoError, out, err)
	}
	defer f.Close()

	if err := piece.DownloadAll(session, t, f); err != nil {
		return err
	}

	fmt.Fprintf(w, "Downloaded %s to %s\n", path, out)
	return nil
}
