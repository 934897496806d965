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

// Offer is message type 2, sent by the server in response to Initiate.
type Offer struct {
	Header      Header
	CiphersBits uint32
	KeySize     uint16
	Generator   [2]byte
	Prime       []byte // big-endian, len == KeySize
	PublicKey   []byte // big-endian, len == KeySize
	Nonce       [32]byte
}

// Encode serializes m to its wire form.
func (m Offer) Encode() []byte {
	out := m.Header.Encode()
	var head [8]byte
	binary.LittleEndian.PutUint32(head[0:4], m.CiphersBits)
	binary.LittleEndian.PutUint16(head[4:6], m.KeySize)
	out = append(out, head[:]...)
	out = append(out, m.Generator[:]...)
	out = append(out, padLeft(m.Prime, int(m.KeySize))...)
	out = append(out, padLeft(m.PublicKey, int(m.KeySize))...)
	out = append(out, m.Nonce[:]...)
	return out
}

// DecodeOffer parses an Offer from data, which must start with the common
// header.
func DecodeOffer(data []byte) (Offer, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return Offer{}, err
	}
	body := data[HeaderSize:]
	if len(body) < 10 {
		return Offer{}, fmt.Errorf("message: offer body too short: %w", protoerr.ErrBlobFormat)
	}
	ciphersBits := binary.LittleEndian.Uint32(body[0:4])
	keySize := binary.LittleEndian.Uint16(body[4:6])
	rest := body[8:]

	want := 2 + int(keySize)*2 + 32
	if len(rest) != want {
		return Offer{}, fmt.Errorf("message: offer body length mismatch: %w", protoerr.ErrBlobFormat)
	}

	var gen [2]byte
	copy(gen[:], rest[0:2])
	rest = rest[2:]

	prime := append([]byte(nil), rest[:keySize]...)
	rest = rest[keySize:]

	pub := append([]byte(nil), rest[:keySize]...)
	rest = rest[keySize:]

	var nonce [32]byte
	copy(nonce[:], rest[:32])

	return Offer{
		Header:      hdr,
		CiphersBits: ciphersBits,
		KeySize:     keySize,
		Generator:   gen,
		Prime:       prime,
		PublicKey:   pub,
		Nonce:       nonce,
	}, nil
}
