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

// Package blob implements SRD's self-describing blob framing: a
// {blob_type, data} pair, random-padded to 16-byte boundaries, carried
// inside a Delegate message once it has been decrypted.
package blob

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sage-x-project/srd/protoerr"
)

// Blob is the outer, self-describing wire form. blob_type names which inner
// codec (Basic, Logon, Text, ...) can interpret Data.
type Blob struct {
	Type string
	Data []byte
}

// New builds a Blob wrapping data under the given type name.
func New(blobType string, data []byte) Blob {
	return Blob{Type: blobType, Data: append([]byte(nil), data...)}
}

// Encode serializes b into its outer wire form, padding both the type name
// and the data to 16-byte boundaries with CSPRNG bytes so that padding
// carries no recoverable structure once encrypted.
func (b Blob) Encode() ([]byte, error) {
	typeSize := len(b.Type) + 1
	typePadding := 16 - (typeSize+8)%16
	dataSize := len(b.Data)
	dataPadding := 16 - dataSize%16

	if typeSize > 0xFFFF || dataSize > 0xFFFF {
		return nil, fmt.Errorf("blob: type or data too large: %w", protoerr.ErrBlobFormat)
	}

	var out bytes.Buffer
	var header [8]byte
	binary.LittleEndian.PutUint16(header[0:2], uint16(typeSize))
	binary.LittleEndian.PutUint16(header[2:4], uint16(typePadding))
	binary.LittleEndian.PutUint16(header[4:6], uint16(dataSize))
	binary.LittleEndian.PutUint16(header[6:8], uint16(dataPadding))
	out.Write(header[:])

	out.WriteString(b.Type)
	out.WriteByte(0x00)

	pad := make([]byte, typePadding)
	if _, err := rand.Read(pad); err != nil {
		return nil, fmt.Errorf("blob: padding rng: %w", protoerr.ErrRNG)
	}
	out.Write(pad)

	out.Write(b.Data)

	pad = make([]byte, dataPadding)
	if _, err := rand.Read(pad); err != nil {
		return nil, fmt.Errorf("blob: padding rng: %w", protoerr.ErrRNG)
	}
	out.Write(pad)

	return out.Bytes(), nil
}

// Decode parses the outer wire form from r. Padding bytes are consumed and
// discarded; they are never validated, since they are random by
// construction.
func Decode(r io.Reader) (Blob, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Blob{}, fmt.Errorf("blob: short header: %w", protoerr.ErrBlobFormat)
	}
	typeSize := binary.LittleEndian.Uint16(header[0:2])
	typePadding := binary.LittleEndian.Uint16(header[2:4])
	dataSize := binary.LittleEndian.Uint16(header[4:6])
	dataPadding := binary.LittleEndian.Uint16(header[6:8])

	if typeSize == 0 {
		return Blob{}, fmt.Errorf("blob: zero type size: %w", protoerr.ErrBlobFormat)
	}

	typeBytes := make([]byte, typeSize-1)
	if _, err := io.ReadFull(r, typeBytes); err != nil {
		return Blob{}, fmt.Errorf("blob: short type: %w", protoerr.ErrBlobFormat)
	}
	var nul [1]byte
	if _, err := io.ReadFull(r, nul[:]); err != nil {
		return Blob{}, fmt.Errorf("blob: missing type terminator: %w", protoerr.ErrBlobFormat)
	}
	if nul[0] != 0x00 {
		return Blob{}, fmt.Errorf("blob: type not NUL-terminated: %w", protoerr.ErrBlobFormat)
	}
	if _, err := io.CopyN(io.Discard, r, int64(typePadding)); err != nil {
		return Blob{}, fmt.Errorf("blob: short type padding: %w", protoerr.ErrBlobFormat)
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return Blob{}, fmt.Errorf("blob: short data: %w", protoerr.ErrBlobFormat)
	}
	if _, err := io.CopyN(io.Discard, r, int64(dataPadding)); err != nil {
		return Blob{}, fmt.Errorf("blob: short data padding: %w", protoerr.ErrBlobFormat)
	}

	return Blob{Type: string(typeBytes), Data: data}, nil
}

// DecodeBytes is a convenience wrapper around Decode for callers that
// already hold the full plaintext in memory.
func DecodeBytes(data []byte) (Blob, error) {
	return Decode(bytes.NewReader(data))
}
