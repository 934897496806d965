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

package message

import (
	"encoding/binary"
	"fmt"

	"github.com/sage-x-project/srd/protoerr"
)

// Accept is message type 3, sent by the client in response to Offer. It
// carries the client's single chosen cipher and is the first MAC-bearing
// message in the handshake.
type Accept struct {
	Header    Header
	CipherBit uint32
	KeySize   uint16
	PublicKey []byte // big-endian, len == KeySize
	Nonce     [32]byte
	CBT       [32]byte
	MAC       [32]byte
}

// Encode serializes m to its wire form, including whatever MAC value is
// currently set. Callers encode with a zero MAC and let the session
// package's Transcript.Sign write the real MAC into the encoded trailer.
func (m Accept) Encode() []byte {
	out := m.Header.Encode()
	var head [8]byte
	binary.LittleEndian.PutUint32(head[0:4], m.CipherBit)
	binary.LittleEndian.PutUint16(head[4:6], m.KeySize)
	out = append(out, head[:]...)
	out = append(out, padLeft(m.PublicKey, int(m.KeySize))...)
	out = append(out, m.Nonce[:]...)
	out = append(out, m.CBT[:]...)
	out = append(out, m.MAC[:]...)
	return out
}

// DecodeAccept parses an Accept from data, which must start with the common
// header.
func DecodeAccept(data []byte) (Accept, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return Accept{}, err
	}
	body := data[HeaderSize:]
	if len(body) < 8 {
		return Accept{}, fmt.Errorf("message: accept body too short: %w", protoerr.ErrBlobFormat)
	}
	cipherBit := binary.LittleEndian.Uint32(body[0:4])
	keySize := binary.LittleEndian.Uint16(body[4:6])
	rest := body[8:]

	want := int(keySize) + 32 + 32 + 32
	if len(rest) != want {
		return Accept{}, fmt.Errorf("message: accept body length mismatch: %w", protoerr.ErrBlobFormat)
	}

	pub := append([]byte(nil), rest[:keySize]...)
	rest = rest[keySize:]

	var nonce, cbt, mac [32]byte
	copy(nonce[:], rest[0:32])
	copy(cbt[:], rest[32:64])
	copy(mac[:], rest[64:96])

	return Accept{
		Header:    hdr,
		CipherBit: cipherBit,
		KeySize:   keySize,
		PublicKey: pub,
		Nonce:     nonce,
		CBT:       cbt,
		MAC:       mac,
	}, nil
}
