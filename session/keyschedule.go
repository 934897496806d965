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

package session

import "crypto/sha256"

// Keys is the full set of material derived from the DH secret and the two
// handshake nonces.
type Keys struct {
	DelegationKey [32]byte
	IntegrityKey  [32]byte
	IV            [32]byte
}

// DeriveKeys implements the key schedule: each key is the plain SHA-256
// digest of the nonces and shared secret concatenated in a fixed, key-
// specific order. There is no HKDF step; the formulas are exact and
// non-negotiable.
func DeriveKeys(clientNonce, serverNonce [32]byte, secret []byte) Keys {
	return Keys{
		DelegationKey: sha256.Sum256(concat3(clientNonce[:], secret, serverNonce[:])),
		IntegrityKey:  sha256.Sum256(concat3(serverNonce[:], secret, clientNonce[:])),
		IV:            sha256.Sum256(concat3(clientNonce[:], serverNonce[:], nil)),
	}
}

func concat3(a, b, c []byte) []byte {
	out := make([]byte, 0, len(a)+len(b)+len(c))
	out = append(out, a...)
	out = append(out, b...)
	out = append(out, c...)
	return out
}

// Zero overwrites every key with zero bytes. Callers must call this when a
// handshake Engine is dropped; key material is not otherwise cleared by the
// garbage collector.
func (k *Keys) Zero() {
	for i := range k.DelegationKey {
		k.DelegationKey[i] = 0
	}
	for i := range k.IntegrityKey {
		k.IntegrityKey[i] = 0
	}
	for i := range k.IV {
		k.IV[i] = 0
	}
}
