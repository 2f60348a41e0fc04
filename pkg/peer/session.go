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

package peer

import (
	"net"
	"time"

	"github.com/raklaptudirm/mtor/internal/bterrors"
	"github.com/raklaptudirm/mtor/pkg/bitfield"
	"github.com/raklaptudirm/mtor/pkg/message"
)

// dialTimeout bounds the initial TCP connect.
const dialTimeout = 5 * time.Second

// handshakeTimeout bounds the handshake and the readiness exchange that
// follows it (first informational message, interested, unchoke).
const handshakeTimeout = 5 * time.Second

// Session is a single, synchronous connection to one peer. It owns its
// TCP socket end to end: created per download, closed when the download
// (or the command that only needs the handshake) is done. There is no
// pooling and no concurrency between sessions.
type Session struct {
	Conn     net.Conn
	Peer     Peer
	PeerID   [20]byte
	InfoHash [20]byte

	// Bitfield is the peer's announced piece availability, captured from
	// whichever message first arrives after the handshake. It is
	// informational only; this client does not act on piece rarity.
	Bitfield bitfield.Bitfield

	// PeerChoking is true until the peer sends Unchoke. The piece engine
	// must not issue requests while this is true.
	PeerChoking bool
	// AmInterested is true once Interested has been sent.
	AmInterested bool
}

// Handshake performs the 68-byte handshake exchange on conn and verifies
// that the peer's reply carries the expected info hash. It is exported
// standalone so the handshake CLI command can use it without running the
// rest of session setup.
func Handshake(conn net.Conn, hash, peerID [20]byte) (*message.Handshake, error) {
	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetDeadline(time.Time{})

	req := message.NewHandshake(hash, peerID)
	if _, err := conn.Write(req.Serialize()); err != nil {
		return nil, bterrors.New(bterrors.HandshakeError, "writing handshake", err)
	}

	res, err := message.ReadHandshake(conn)
	if err != nil {
		return nil, err
	}

	if err := res.Verify(hash); err != nil {
		return nil, err
	}

	return res, nil
}

// NewSession dials p, completes the handshake, and drives the session
// through the state machine required before any block may be requested:
// it waits for the first non-keep-alive message (informational; recorded
// as Bitfield if that's what it is), sends Interested, and waits for
// Unchoke. A Choke received during this exchange is fatal, matching the
// Choke-mid-transfer policy applied once downloading begins.
func NewSession(p Peer, hash, peerID [20]byte) (*Session, error) {
	conn, err := net.DialTimeout("tcp", p.String(), dialTimeout)
	if err != nil {
		return nil, bterrors.New(bterrors.IoError, "dialing "+p.String(), err)
	}

	hs, err := Handshake(conn, hash, peerID)
	if err != nil {
		conn.Close()
		return nil, err
	}

	s := &Session{
		Conn:        conn,
		Peer:        p,
		PeerID:      hs.Identifier,
		InfoHash:    hash,
		PeerChoking: true,
	}

	if err := s.becomeInterested(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// becomeInterested runs the post-handshake readiness exchange described
// on NewSession.
func (s *Session) becomeInterested() error {
	s.Conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer s.Conn.SetDeadline(time.Time{})

	if err := s.consumeFirstMessage(); err != nil {
		return err
	}

	if err := s.sendInterested(); err != nil {
		return err
	}

	return s.awaitUnchoke()
}

// consumeFirstMessage reads messages, skipping keep-alives, until the
// first substantive message arrives. It does not require that message to
// be a bitfield; any informational message is accepted, but a bitfield
// payload is recorded when it is one.
func (s *Session) consumeFirstMessage() error {
	for {
		msg, err := message.Read(s.Conn)
		if err != nil {
			return err
		}
		if msg == nil {
			continue // keep-alive
		}
		if msg.Identifier == message.Bitfield {
			s.Bitfield = bitfield.New(msg.Payload)
		}
		return nil
	}
}

// sendInterested sends an Interested message and records the transition.
func (s *Session) sendInterested() error {
	msg := &message.Message{Identifier: message.Interested}
	if _, err := s.Conn.Write(msg.Serialize()); err != nil {
		return bterrors.New(bterrors.PeerProtocolError, "sending interested", err)
	}
	s.AmInterested = true
	return nil
}

// awaitUnchoke reads messages until Unchoke arrives. A Choke received
// here is fatal, matching the mid-download policy.
func (s *Session) awaitUnchoke() error {
	for {
		msg, err := message.Read(s.Conn)
		if err != nil {
			return err
		}
		if msg == nil {
			continue // keep-alive
		}

		switch msg.Identifier {
		case message.UnChoke:
			s.PeerChoking = false
			return nil
		case message.Choke:
			return bterrors.New(bterrors.PeerChoked, s.Peer.String(), nil)
		}
		// any other message id while waiting is accepted and skipped
	}
}

// Request sends a block request to the peer. The caller must ensure
// PeerChoking is false before calling this.
func (s *Session) Request(index, begin, length int) error {
	req := message.NewRequest(index, begin, length)
	if _, err := s.Conn.Write(req.Serialize()); err != nil {
		return bterrors.New(bterrors.PeerProtocolError, "sending request", err)
	}
	return nil
}

// ReadMessage reads the next non-keep-alive message from the peer. A
// Choke arriving here aborts the session with PeerChoked, per the
// mid-download choke policy; any other message id is returned as-is for
// the piece engine to interpret.
func (s *Session) ReadMessage() (*message.Message, error) {
	for {
		msg, err := message.Read(s.Conn)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			continue // keep-alive
		}
		if msg.Identifier == message.Choke {
			s.PeerChoking = true
			return nil, bterrors.New(bterrors.PeerChoked, s.Peer.String(), nil)
		}
		return msg, nil
	}
}

// Close closes the underlying TCP connection.
func (s *Session) Close() error {
	return s.Conn.Close()
}
