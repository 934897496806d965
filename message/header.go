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

// Package message implements SRD's wire messages: the common 8-byte header
// and the five typed bodies (Initiate, Offer, Accept, Confirm, Delegate)
// exchanged during a handshake.
package message

import (
	"encoding/binary"
	"fmt"

	"github.com/sage-x-project/srd/protoerr"
)

// Signature is the fixed 4-byte magic ('S','R','D',0x00 little-endian as
// a u32) that opens every SRD message.
const Signature uint32 = 0x00445253

// Type identifies which of the five message variants a header belongs to.
type Type uint8

const (
	TypeInitiate Type = 1
	TypeOffer    Type = 2
	TypeAccept   Type = 3
	TypeConfirm  Type = 4
	TypeDelegate Type = 5
)

func (t Type) String() string {
	switch t {
	case TypeInitiate:
		return "Initiate"
	case TypeOffer:
		return "Offer"
	case TypeAccept:
		return "Accept"
	case TypeConfirm:
		return "Confirm"
	case TypeDelegate:
		return "Delegate"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Flag bits carried in the header.
const (
	FlagMAC  uint16 = 0x0001
	FlagCBT  uint16 = 0x0002
	FlagSkip uint16 = 0x0004
)

// HeaderSize is the fixed size in bytes of the common header.
const HeaderSize = 8

// Header is the 8-byte prefix common to every SRD message.
type Header struct {
	MsgType Type
	SeqNum  uint8
	Flags   uint16
}

// Encode serializes h to its 8-byte wire form.
func (h Header) Encode() []byte {
	out := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(out[0:4], Signature)
	out[4] = byte(h.MsgType)
	out[5] = h.SeqNum
	binary.LittleEndian.PutUint16(out[6:8], h.Flags)
	return out
}

// DecodeHeader parses the common header from the front of data, validating
// the signature. It does not check seq_num against engine state; callers do
// that since only the engine knows the expected value.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("message: header too short: %w", protoerr.ErrBlobFormat)
	}
	sig := binary.LittleEndian.Uint32(data[0:4])
	if sig != Signature {
		return Header{}, fmt.Errorf("message: bad signature %#x: %w", sig, protoerr.ErrInvalidSignature)
	}
	return Header{
		MsgType: Type(data[4]),
		SeqNum:  data[5],
		Flags:   binary.LittleEndian.Uint16(data[6:8]),
	}, nil
}

// HasMAC reports whether the SRD_FLAG_MAC bit is set.
func (h Header) HasMAC() bool { return h.Flags&FlagMAC != 0 }

// HasCBT reports whether the SRD_FLAG_CBT bit is set.
func (h Header) HasCBT() bool { return h.Flags&FlagCBT != 0 }

// HasSkip reports whether the SRD_FLAG_SKIP bit is set.
func (h Header) HasSkip() bool { return h.Flags&FlagSkip != 0 }
