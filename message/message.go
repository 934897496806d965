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

// Message is implemented by every SRD message variant.
type Message interface {
	Encode() []byte
}

// PeekType reads the msg_type byte out of data without fully decoding it, so
// a caller holding raw bytes can dispatch to the right Decode* function.
func PeekType(data []byte) (Type, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return 0, err
	}
	return hdr.MsgType, nil
}

// Decode dispatches on the wire msg_type byte and returns the parsed message
// as a Message. Callers that need the concrete fields should type-switch on
// the result, or call the specific Decode* function directly when the
// expected type is already known.
func Decode(data []byte) (Message, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeInitiate:
		return DecodeInitiate(data)
	case TypeOffer:
		return DecodeOffer(data)
	case TypeAccept:
		return DecodeAccept(data)
	case TypeConfirm:
		return DecodeConfirm(data)
	case TypeDelegate:
		return DecodeDelegate(data)
	default:
		return nil, fmt.Errorf("message: unknown msg_type %d: %w", uint8(typ), protoerr.ErrUnknownMsgType)
	}
}
