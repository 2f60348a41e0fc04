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

package tracker_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raklaptudirm/mtor/pkg/metainfo"
	"github.com/raklaptudirm/mtor/pkg/tracker"
)

func testTorrent(announce string) *metainfo.Torrent {
	return &metainfo.Torrent{
		Announce:    announce,
		Name:        "test.iso",
		Length:      12345,
		PieceLength: 16384,
		InfoHash:    [20]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19},
	}
}

// The info_hash query parameter must be exactly 60 characters, every one
// of its 20 source bytes encoded as %XX with uppercase hex, including
// bytes that would otherwise be "safe" ASCII and need no escaping.
func TestAnnounceURLPercentEncoding(t *testing.T) {
	reqURL, err := tracker.AnnounceURL(testTorrent("http://tracker.example/announce"))
	require.NoError(t, err)

	u, err := url.Parse(reqURL)
	require.NoError(t, err)

	raw := u.RawQuery
	idx := strings.Index(raw, "info_hash=")
	require.GreaterOrEqualf(t, idx, 0, "missing info_hash in query %q", raw)

	value := raw[idx+len("info_hash="):]
	if end := strings.IndexByte(value, '&'); end >= 0 {
		value = value[:end]
	}

	require.Lenf(t, value, 60, "query: %q", raw)
	for i := 0; i < 20; i++ {
		triplet := value[i*3 : i*3+3]
		require.Equalf(t, byte('%'), triplet[0], "byte %d not percent-escaped: %q", i, triplet)
	}

	require.Equal(t, 1, strings.Count(raw, "peer_id="))
}

func TestAnnounceParsesCompactPeers(t *testing.T) {
	peers := string([]byte{127, 0, 0, 1, 0x1a, 0xe1})
	body := "d5:peers" + "6:" + peers + "e"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := tracker.Announce(testTorrent(srv.URL))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "127.0.0.1:6881", got[0].String())
}

func TestAnnounceFailureReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("d14:failure reason10:not found!e"))
	}))
	defer srv.Close()

	_, err := tracker.Announce(testTorrent(srv.URL))
	require.Error(t, err)
}

func TestAnnounceRejectsNonHTTPScheme(t *testing.T) {
	_, err := tracker.AnnounceURL(testTorrent("udp://tracker.example/announce"))
	require.Error(t, err)
}
