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
	"fmt"

	"github.com/sage-x-project/srd/protoerr"
)

// Confirm is message type 4, sent by the server in response to Accept. Its
// body is just the CBT and MAC trailers; there is nothing else to negotiate
// at this step.
type Confirm struct {
	Header Header
	CBT    [32]byte
	MAC    [32]byte
}

// Encode serializes m to its wire form.
func (m Confirm) Encode() []byte {
	out := m.Header.Encode()
	out = append(out, m.CBT[:]...)
	out = append(out, m.MAC[:]...)
	return out
}

// DecodeConfirm parses a Confirm from data, which must start with the
// common header.
func DecodeConfirm(data []byte) (Confirm, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return Confirm{}, err
	}
	body := data[HeaderSize:]
	if len(body) != 64 {
		return Confirm{}, fmt.Errorf("message: confirm body length mismatch: %w", protoerr.ErrBlobFormat)
	}
	var cbt, mac [32]byte
	copy(cbt[:], body[0:32])
	copy(mac[:], body[32:64])
	return Confirm{Header: hdr, CBT: cbt, MAC: mac}, nil
}
