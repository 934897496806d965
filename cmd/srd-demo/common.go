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

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sage-x-project/srd/crypto"
	"github.com/sage-x-project/srd/handshake"
)

// handshakePath is the HTTP endpoint a client POSTs each handshake round
// to. sessionPath is the WebSocket endpoint for the post-handshake
// bulk-encrypted channel.
const (
	handshakePath = "/srd/handshake"
	sessionPath   = "/srd/session"
	sessionHeader = "X-Srd-Session"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func parseCiphers(csv string) ([]crypto.Cipher, error) {
	if strings.TrimSpace(csv) == "" {
		return []crypto.Cipher{crypto.AES256, crypto.ChaCha20, crypto.XChaCha20}, nil
	}
	var out []crypto.Cipher
	for _, name := range strings.Split(csv, ",") {
		switch strings.TrimSpace(name) {
		case "AES256":
			out = append(out, crypto.AES256)
		case "ChaCha20":
			out = append(out, crypto.ChaCha20)
		case "XChaCha20":
			out = append(out, crypto.XChaCha20)
		default:
			return nil, fmt.Errorf("unrecognized cipher %q", name)
		}
	}
	return out, nil
}

func buildEngine(role handshake.Role, skipDelegation bool, keySize int, ciphers []crypto.Cipher, cert []byte) *handshake.Engine {
	e := handshake.New(role, skipDelegation)
	e.SetKeySize(keySize)
	e.SetCiphers(ciphers)
	if len(cert) > 0 {
		e.SetCertData(cert)
	}
	return e
}
