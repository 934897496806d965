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

package authscheme

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/sage-x-project/srd/crypto"
	"github.com/sage-x-project/srd/internal/metrics"
	"github.com/sage-x-project/srd/protoerr"
)

// BulkCipher bulk-encrypts application data under a handshake's delegation
// key and negotiated cipher, independent of the handshake's own blob
// delivery. It is the Go analogue of the original Srd_Encrypt/Srd_Decrypt
// C-ABI entry points: a caller who already completed a handshake uses this
// to protect data sent outside of Delegate, e.g. over a follow-up HTTP
// request authenticated by the SRD scheme.
type BulkCipher struct {
	cipher crypto.Cipher
	key    [32]byte
}

// NewBulkCipher binds a BulkCipher to the delegation key and cipher
// negotiated by a completed Engine handshake.
func NewBulkCipher(cipher crypto.Cipher, delegationKey [32]byte) BulkCipher {
	return BulkCipher{cipher: cipher, key: delegationKey}
}

// fullIVLen is the width of the IV carried on the wire, matching the
// 32-byte derived IV the handshake's own key schedule produces. Each
// cipher then consumes only its own prefix of it (crypto.IVSlice).
const fullIVLen = 32

// Encrypt encrypts plaintext under a freshly generated 32-byte IV,
// returning iv||ciphertext. plaintext must be a multiple of 16 bytes and
// the bound delegation key must be non-zero.
func (b BulkCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if err := b.checkPreconditions(len(plaintext)); err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return nil, err
	}

	var iv [32]byte
	if _, err := rand.Read(iv[:]); err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return nil, fmt.Errorf("authscheme: iv rng: %w", protoerr.ErrRNG)
	}
	cipherIV, err := crypto.IVSlice(b.cipher, iv)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return nil, err
	}

	start := time.Now()
	ciphertext, err := crypto.Encrypt(b.cipher, plaintext, b.key[:], cipherIV)
	metrics.CryptoOperationDuration.WithLabelValues("encrypt", string(b.cipher)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("encrypt").Inc()
		return nil, err
	}
	metrics.CryptoOperations.WithLabelValues("encrypt", string(b.cipher)).Inc()

	out := make([]byte, 0, fullIVLen+len(ciphertext))
	out = append(out, iv[:]...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decrypt reverses Encrypt: it splits the leading 32-byte IV from data,
// slices it down to the bound cipher's own IV width, and decrypts the
// remainder.
func (b BulkCipher) Decrypt(data []byte) ([]byte, error) {
	if len(data) < fullIVLen {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return nil, fmt.Errorf("authscheme: ciphertext shorter than iv: %w", protoerr.ErrInvalidDataLength)
	}
	var iv [32]byte
	copy(iv[:], data[:fullIVLen])
	ciphertext := data[fullIVLen:]

	if err := b.checkPreconditions(len(ciphertext)); err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return nil, err
	}
	cipherIV, err := crypto.IVSlice(b.cipher, iv)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return nil, err
	}

	start := time.Now()
	plaintext, err := crypto.Decrypt(b.cipher, ciphertext, b.key[:], cipherIV)
	metrics.CryptoOperationDuration.WithLabelValues("decrypt", string(b.cipher)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("decrypt").Inc()
		return nil, err
	}
	metrics.CryptoOperations.WithLabelValues("decrypt", string(b.cipher)).Inc()
	return plaintext, nil
}

// checkPreconditions enforces the two invariants common to both directions:
// a block-aligned payload and a non-zero delegation key.
func (b BulkCipher) checkPreconditions(dataLen int) error {
	if dataLen%16 != 0 {
		return fmt.Errorf("authscheme: data not a multiple of 16 bytes: %w", protoerr.ErrInvalidDataLength)
	}
	var zero [32]byte
	if b.key == zero {
		return fmt.Errorf("authscheme: zero delegation key: %w", protoerr.ErrCrypto)
	}
	return nil
}
