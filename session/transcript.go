// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package session holds the per-handshake state that is derived once the DH
// secret is known: the running transcript used to MAC Accept/Confirm/
// Delegate, and the key schedule derived from the two nonces and the
// shared secret.
package session

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/sage-x-project/srd/protoerr"
)

// macTrailerSize is the length in bytes of every message's MAC trailer.
const macTrailerSize = 32

type transcriptEntry struct {
	wire   []byte
	hasMAC bool
}

// Transcript accumulates the exact wire bytes of every message sent or
// received on one handshake, in order, and computes the running
// HMAC-SHA-256 used to authenticate Accept, Confirm and Delegate.
type Transcript struct {
	entries []transcriptEntry
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendUnsigned records a message that carries no MAC trailer (Initiate,
// Offer) in full.
func (t *Transcript) AppendUnsigned(wire []byte) {
	t.append(wire, false)
}

func (t *Transcript) append(wire []byte, hasMAC bool) {
	t.entries = append(t.entries, transcriptEntry{
		wire:   append([]byte(nil), wire...),
		hasMAC: hasMAC,
	})
}

// concat builds the bytes that get HMAC'd: every recorded message, with the
// trailing 32-byte MAC field excised from any message whose header carried
// SRD_FLAG_MAC.
func (t *Transcript) concat() []byte {
	var buf bytes.Buffer
	for _, e := range t.entries {
		if e.hasMAC {
			buf.Write(e.wire[:len(e.wire)-macTrailerSize])
		} else {
			buf.Write(e.wire)
		}
	}
	return buf.Bytes()
}

// mac computes HMAC-SHA-256 over the current transcript under key.
func (t *Transcript) mac(key []byte) [32]byte {
	h := hmac.New(sha256.New, key)
	h.Write(t.concat())
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Sign records an outbound MAC-bearing message (wireWithZeroMAC must already
// have its 32-byte trailer present, conventionally all zero), computes its
// MAC over the resulting transcript, patches the trailer in place, and
// returns the final wire bytes ready to send.
func (t *Transcript) Sign(key []byte, wireWithZeroMAC []byte) ([]byte, error) {
	if len(wireWithZeroMAC) < macTrailerSize {
		return nil, fmt.Errorf("session: message shorter than mac trailer: %w", protoerr.ErrInvalidDataLength)
	}
	t.append(wireWithZeroMAC, true)
	mac := t.mac(key)
	final := t.entries[len(t.entries)-1].wire
	copy(final[len(final)-macTrailerSize:], mac[:])
	return append([]byte(nil), final...), nil
}

// Verify records an inbound MAC-bearing message and checks its trailing MAC
// against the transcript MAC computed with it included, in constant time.
func (t *Transcript) Verify(key []byte, wire []byte) error {
	if len(wire) < macTrailerSize {
		return fmt.Errorf("session: message shorter than mac trailer: %w", protoerr.ErrInvalidDataLength)
	}
	t.append(wire, true)
	want := wire[len(wire)-macTrailerSize:]
	got := t.mac(key)
	if subtle.ConstantTimeCompare(want, got[:]) != 1 {
		return protoerr.ErrInvalidMAC
	}
	return nil
}
