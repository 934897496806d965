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

// Package authscheme carries one SRD handshake message inside an HTTP
// Authorization/WWW-Authenticate header, and bulk-encrypts application data
// under a handshake's negotiated delegation key.
package authscheme

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/sage-x-project/srd/protoerr"
)

// Name is the HTTP auth-scheme token SRD registers.
const Name = "SRD"

// Authorization formats an outbound Authorization header value carrying msg.
func Authorization(msg []byte) string {
	return Name + " " + base64.StdEncoding.EncodeToString(msg)
}

// ParseAuthorization extracts the message carried by an Authorization header
// value, failing with ErrInvalidCString if the scheme token doesn't match or
// the payload isn't valid base64.
func ParseAuthorization(header string) ([]byte, error) {
	prefix := Name + " "
	if !strings.HasPrefix(header, prefix) {
		return nil, fmt.Errorf("authscheme: missing %q scheme prefix: %w", Name, protoerr.ErrInvalidCString)
	}
	msg, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return nil, fmt.Errorf("authscheme: bad base64 payload: %w", protoerr.ErrInvalidCString)
	}
	return msg, nil
}

// WWWAuthenticate formats an outbound WWW-Authenticate header value. msg is
// optional: a challenge with no message (the initial 401) passes nil.
func WWWAuthenticate(msg []byte) string {
	if len(msg) == 0 {
		return Name
	}
	return Name + " " + base64.StdEncoding.EncodeToString(msg)
}

// ParseWWWAuthenticate extracts the optional message from a WWW-Authenticate
// header value. A bare "SRD" challenge with no payload returns a nil slice.
func ParseWWWAuthenticate(header string) ([]byte, error) {
	header = strings.TrimSpace(header)
	if header == Name {
		return nil, nil
	}
	prefix := Name + " "
	if !strings.HasPrefix(header, prefix) {
		return nil, fmt.Errorf("authscheme: missing %q scheme prefix: %w", Name, protoerr.ErrInvalidCString)
	}
	msg, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return nil, fmt.Errorf("authscheme: bad base64 payload: %w", protoerr.ErrInvalidCString)
	}
	return msg, nil
}

// SetAuthorization sets the Authorization header on an outbound request.
func SetAuthorization(h http.Header, msg []byte) {
	h.Set("Authorization", Authorization(msg))
}

// SetWWWAuthenticate sets the WWW-Authenticate header on an outbound response.
func SetWWWAuthenticate(h http.Header, msg []byte) {
	h.Set("WWW-Authenticate", WWWAuthenticate(msg))
}
