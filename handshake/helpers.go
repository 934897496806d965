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

package handshake

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/sage-x-project/srd/crypto"
	"github.com/sage-x-project/srd/protoerr"
)

// sampleExponent draws a random DH private exponent sized to match the
// modulus: keySize bytes.
func sampleExponent(keySize int) (*big.Int, error) {
	buf := make([]byte, keySize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("handshake: exponent rng: %w", protoerr.ErrRNG)
	}
	return new(big.Int).SetBytes(buf), nil
}

// computeCBT implements the channel binding token formula: HMAC-SHA-256
// under the integrity key over the sender's own nonce followed by the raw
// certificate bytes.
func computeCBT(integrityKey [32]byte, nonce [32]byte, certData []byte) [32]byte {
	h := hmac.New(sha256.New, integrityKey[:])
	h.Write(nonce[:])
	h.Write(certData)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// intersectCiphers returns the ciphers present in both lists, preserving
// peer's ordering.
func intersectCiphers(peer, mine []crypto.Cipher) []crypto.Cipher {
	have := make(map[crypto.Cipher]bool, len(mine))
	for _, c := range mine {
		have[c] = true
	}
	var out []crypto.Cipher
	for _, c := range peer {
		if have[c] {
			out = append(out, c)
		}
	}
	return out
}
