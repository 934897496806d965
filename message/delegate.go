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

// Delegate is message type 5, sent by the client to carry the encrypted
// blob once the handshake keys have been established.
type Delegate struct {
	Header        Header
	EncryptedBlob []byte
	MAC           [32]byte
}

// Encode serializes m to its wire form.
func (m Delegate) Encode() []byte {
	out := m.Header.Encode()
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(m.EncryptedBlob)))
	out = append(out, size[:]...)
	out = append(out, m.EncryptedBlob...)
	out = append(out, m.MAC[:]...)
	return out
}

// DecodeDelegate parses a Delegate from data, which must start with the
// common header.
func DecodeDelegate(data []byte) (Delegate, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return Delegate{}, err
	}
	body := data[HeaderSize:]
	if len(body) < 4+32 {
		return Delegate{}, fmt.Errorf("message: delegate body too short: %w", protoerr.ErrBlobFormat)
	}
	size := binary.LittleEndian.Uint32(body[0:4])
	rest := body[4:]
	if uint32(len(rest)) != size+32 {
		return Delegate{}, fmt.Errorf("message: delegate body length mismatch: %w", protoerr.ErrBlobFormat)
	}
	encBlob := append([]byte(nil), rest[:size]...)
	var mac [32]byte
	copy(mac[:], rest[size:size+32])
	return Delegate{Header: hdr, EncryptedBlob: encBlob, MAC: mac}, nil
}
