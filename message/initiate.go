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

// Initiate is message type 1, sent by the client to open a handshake.
type Initiate struct {
	Header      Header
	CiphersBits uint32
	KeySize     uint16
}

// Encode serializes m to its wire form.
func (m Initiate) Encode() []byte {
	out := m.Header.Encode()
	var body [8]byte
	binary.LittleEndian.PutUint32(body[0:4], m.CiphersBits)
	binary.LittleEndian.PutUint16(body[4:6], m.KeySize)
	// body[6:8] is reserved, left zero
	return append(out, body[:]...)
}

// DecodeInitiate parses an Initiate from data, which must start with the
// common header.
func DecodeInitiate(data []byte) (Initiate, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return Initiate{}, err
	}
	body := data[HeaderSize:]
	if len(body) < 8 {
		return Initiate{}, fmt.Errorf("message: initiate body too short: %w", protoerr.ErrBlobFormat)
	}
	return Initiate{
		Header:      hdr,
		CiphersBits: binary.LittleEndian.Uint32(body[0:4]),
		KeySize:     binary.LittleEndian.Uint16(body[4:6]),
	}, nil
}
