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

	"github.com/raklaptudirm/mtor/pkg/tracker"
)

// Peers prints one ip:port per line for every peer the tracker reports
// for the torrent at path.
func Peers(w io.Writer, path string) error {
	t, err := openTorrent(path)
	if err != nil {
		return err
	}

	peers, err := tracker.Announce(t)
	if err != nil {
		return err
	}

	for _, p := range peers {
		fmt.Fprintln(w, p.String())
	}

	return nil
}
