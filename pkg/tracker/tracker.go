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

// Package tracker builds the announce request for a torrent and parses
// the tracker's compact peer list out of its bencoded response.
package tracker

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/raklaptudirm/mtor/internal/bterrors"
	"github.com/raklaptudirm/mtor/pkg/bencode"
	"github.com/raklaptudirm/mtor/pkg/metainfo"
	"github.com/raklaptudirm/mtor/pkg/peer"
)

// Port is the port announced to the tracker. The client never actually
// listens on it; this is a pure protocol formality.
const Port = 6881

// PeerID is the 20-byte peer identifier announced to the tracker. Fixed
// rather than random so that announce URLs are reproducible.
const PeerID = "00112233445566778899"

// requestTimeout bounds the tracker HTTP GET.
const requestTimeout = 15 * time.Second

// response is the bencode shape of a tracker announce reply.
type response struct {
	Failure string  `bencode:"failure reason"`
	Peers   *string `bencode:"peers"` // nil when the field is absent
}

// AnnounceURL builds the tracker announce URL for t. The info_hash and
// peer_id parameters are percent-encoded byte-wise and concatenated
// directly into the query string: url.Values.Encode would run every byte
// of InfoHash through its own percent-encoding pass a second time,
// doubling the escaping of the '%' characters this produces.
func AnnounceURL(t *metainfo.Torrent) (string, error) {
	base, err := url.Parse(t.Announce)
	if err != nil {
		return "", bterrors.New(bterrors.TrackerError, "announce url", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", bterrors.New(bterrors.TrackerError, "announce url", errUnsupportedScheme(base.Scheme))
	}

	query := url.Values{
		"port":       []string{strconv.Itoa(Port)},
		"uploaded":   []string{"0"},
		"downloaded": []string{"0"},
		"left":       []string{strconv.FormatInt(t.Length, 10)},
		"compact":    []string{"1"},
	}

	var buf strings.Builder
	buf.WriteString(base.String())
	if base.RawQuery == "" {
		buf.WriteByte('?')
	} else {
		buf.WriteByte('&')
	}
	buf.WriteString("info_hash=")
	buf.WriteString(percentEncodeBytes(t.InfoHash[:]))
	buf.WriteString("&peer_id=")
	buf.WriteString(percentEncodeBytes([]byte(PeerID)))
	buf.WriteByte('&')
	buf.WriteString(query.Encode())

	return buf.String(), nil
}

// percentEncodeBytes encodes every byte of b as %XX with uppercase hex
// digits, regardless of whether that byte is itself a printable ASCII
// character. This is the encoding BitTorrent trackers expect for binary
// query parameters, and differs from url.QueryEscape, which only escapes
// bytes that aren't already safe to send literally.
func percentEncodeBytes(b []byte) string {
	const hex = "0123456789ABCDEF"

	var buf strings.Builder
	buf.Grow(3 * len(b))
	for _, c := range b {
		buf.WriteByte('%')
		buf.WriteByte(hex[c>>4])
		buf.WriteByte(hex[c&0xf])
	}
	return buf.String()
}

type errUnsupportedScheme string

func (e errUnsupportedScheme) Error() string {
	return "unsupported announce url scheme: " + string(e)
}

// Announce issues the tracker GET request for t and returns the peers it
// reports. A non-200 response, an unparseable body, a failure reason, or
// a missing/malformed peers field are all reported as TrackerError.
func Announce(t *metainfo.Torrent) ([]peer.Peer, error) {
	reqURL, err := AnnounceURL(t)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("url", reqURL).Msg("mtor: announcing to tracker")

	client := &http.Client{Timeout: requestTimeout}
	res, err := client.Get(reqURL)
	if err != nil {
		log.Warn().Err(err).Str("url", reqURL).Msg("mtor: announce request failed")
		return nil, bterrors.New(bterrors.TrackerError, "announce request", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.Warn().Int("status", res.StatusCode).Msg("mtor: announce response not OK")
		return nil, bterrors.New(bterrors.TrackerError, "announce response", errHTTPStatus(res.StatusCode))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, bterrors.New(bterrors.TrackerError, "announce body", err)
	}

	var parsed response
	if err := bencode.Unmarshal(body, &parsed); err != nil {
		return nil, bterrors.New(bterrors.TrackerError, "announce body", err)
	}

	if parsed.Failure != "" {
		log.Warn().Str("reason", parsed.Failure).Msg("mtor: tracker reported failure")
		return nil, bterrors.New(bterrors.TrackerError, "announce failure", errTrackerFailure(parsed.Failure))
	}

	if parsed.Peers == nil {
		return nil, bterrors.New(bterrors.TrackerError, "peers field", errMissingPeers)
	}

	peers, err := peer.Unmarshal([]byte(*parsed.Peers))
	if err != nil {
		return nil, bterrors.New(bterrors.TrackerError, "peers field", err)
	}

	log.Debug().Int("peers", len(peers)).Msg("mtor: tracker returned peer list")

	return peers, nil
}

type errHTTPStatus int

func (e errHTTPStatus) Error() string {
	return "tracker returned HTTP " + strconv.Itoa(int(e))
}

type errTrackerFailure string

func (e errTrackerFailure) Error() string { return string(e) }

// errMissingPeers reports a response with no peers field at all.
const errMissingPeers = errTrackerFailure("response has no peers field")
