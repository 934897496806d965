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

package blob

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sage-x-project/srd/protoerr"
)

// Basic is the "Basic" inner blob: a "user:pass" credential string.
type Basic struct {
	Username string
	Password string
}

// BlobType returns the outer blob_type this inner blob is carried under.
func (Basic) BlobType() string { return "Basic" }

// Encode renders b as the bytes that go in Blob.Data.
func (b Basic) Encode() []byte {
	return []byte(b.Username + ":" + b.Password)
}

// DecodeBasic parses data produced by Basic.Encode. It fails with
// ErrBlobFormat unless data contains exactly one ':' separator.
func DecodeBasic(data []byte) (Basic, error) {
	if bytes.Count(data, []byte(":")) != 1 {
		return Basic{}, fmt.Errorf("blob: basic blob must contain exactly one ':': %w", protoerr.ErrBlobFormat)
	}
	parts := bytes.SplitN(data, []byte(":"), 2)
	return Basic{Username: string(parts[0]), Password: string(parts[1])}, nil
}

// Logon is the "Logon" inner blob: length-prefixed, NUL-terminated
// username/password pair, treated as UTF-8 best-effort on decode.
type Logon struct {
	Username string
	Password string
}

// BlobType returns the outer blob_type this inner blob is carried under.
func (Logon) BlobType() string { return "Logon" }

// Encode renders l as the bytes that go in Blob.Data.
func (l Logon) Encode() []byte {
	var out bytes.Buffer
	var lens [4]byte
	binary.LittleEndian.PutUint16(lens[0:2], uint16(len(l.Username)))
	binary.LittleEndian.PutUint16(lens[2:4], uint16(len(l.Password)))
	out.Write(lens[:])
	out.WriteString(l.Username)
	out.WriteByte(0x00)
	out.WriteString(l.Password)
	out.WriteByte(0x00)
	return out.Bytes()
}

// DecodeLogon parses data produced by Logon.Encode.
func DecodeLogon(data []byte) (Logon, error) {
	if len(data) < 4 {
		return Logon{}, fmt.Errorf("blob: logon blob too short: %w", protoerr.ErrBlobFormat)
	}
	ulen := binary.LittleEndian.Uint16(data[0:2])
	plen := binary.LittleEndian.Uint16(data[2:4])
	rest := data[4:]
	want := int(ulen) + 1 + int(plen) + 1
	if len(rest) != want {
		return Logon{}, fmt.Errorf("blob: logon blob length mismatch: %w", protoerr.ErrBlobFormat)
	}
	user := rest[:ulen]
	if rest[ulen] != 0x00 {
		return Logon{}, fmt.Errorf("blob: logon username not NUL-terminated: %w", protoerr.ErrBlobFormat)
	}
	pass := rest[ulen+1 : ulen+1+plen]
	if rest[ulen+1+plen] != 0x00 {
		return Logon{}, fmt.Errorf("blob: logon password not NUL-terminated: %w", protoerr.ErrBlobFormat)
	}
	return Logon{Username: string(user), Password: string(pass)}, nil
}

// Text is the "Text" inner blob: free-form UTF-8 text.
type Text struct {
	Text string
}

// BlobType returns the outer blob_type this inner blob is carried under.
func (Text) BlobType() string { return "Text" }

// Encode renders t as the bytes that go in Blob.Data.
func (t Text) Encode() []byte { return []byte(t.Text) }

// DecodeText parses data produced by Text.Encode. It never fails: any byte
// sequence is valid (possibly invalid) UTF-8 text.
func DecodeText(data []byte) Text {
	return Text{Text: string(data)}
}
