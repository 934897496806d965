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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/srd/crypto"
	"github.com/sage-x-project/srd/protoerr"
)

func TestAuthorizationRoundTrip(t *testing.T) {
	msg := []byte("initiate-message-bytes")
	header := Authorization(msg)
	assert.Equal(t, "SRD ", header[:4])

	got, err := ParseAuthorization(header)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestParseAuthorizationRejectsWrongScheme(t *testing.T) {
	_, err := ParseAuthorization("Bearer deadbeef")
	assert.ErrorIs(t, err, protoerr.ErrInvalidCString)
}

func TestParseAuthorizationRejectsBadBase64(t *testing.T) {
	_, err := ParseAuthorization("SRD not-base64!!")
	assert.ErrorIs(t, err, protoerr.ErrInvalidCString)
}

func TestWWWAuthenticateBareChallenge(t *testing.T) {
	header := WWWAuthenticate(nil)
	assert.Equal(t, "SRD", header)

	msg, err := ParseWWWAuthenticate(header)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestWWWAuthenticateWithPayloadRoundTrip(t *testing.T) {
	msg := []byte("offer-message-bytes")
	header := WWWAuthenticate(msg)

	got, err := ParseWWWAuthenticate(header)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestSetHeadersOnRequestAndResponse(t *testing.T) {
	h := make(http.Header)
	SetAuthorization(h, []byte("hello"))
	SetWWWAuthenticate(h, []byte("world"))
	assert.Equal(t, Authorization([]byte("hello")), h.Get("Authorization"))
	assert.Equal(t, WWWAuthenticate([]byte("world")), h.Get("WWW-Authenticate"))
}

func TestBulkCipherAES256RoundTrip(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("0123456789abcdef0123456789abcde"))
	bc := NewBulkCipher(crypto.AES256, key)

	plaintext := make([]byte, 32) // AES256 requires block alignment
	copy(plaintext, []byte("sixteen-byte-block-aligned-data"))

	ciphertext, err := bc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.Len(t, ciphertext, 32+len(plaintext))
	assert.NotEqual(t, plaintext, ciphertext[32:])

	decrypted, err := bc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestBulkCipherXChaCha20RoundTrip(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("0123456789abcdef0123456789abcde"))
	bc := NewBulkCipher(crypto.XChaCha20, key)

	plaintext := make([]byte, 48) // block-aligned, per the §4.8 16-byte precondition
	copy(plaintext, []byte("forty-eight bytes of plaintext, block aligned!!"))
	ciphertext, err := bc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.Len(t, ciphertext, 32+len(plaintext))

	decrypted, err := bc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestBulkCipherDecryptRejectsShortInput(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("0123456789abcdef0123456789abcde"))
	bc := NewBulkCipher(crypto.AES256, key)
	_, err := bc.Decrypt([]byte("short"))
	assert.ErrorIs(t, err, protoerr.ErrInvalidDataLength)
}

func TestBulkCipherRejectsUnalignedPlaintext(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("0123456789abcdef0123456789abcde"))
	bc := NewBulkCipher(crypto.AES256, key)
	_, err := bc.Encrypt([]byte("not sixteen"))
	assert.ErrorIs(t, err, protoerr.ErrInvalidDataLength)
}

func TestBulkCipherRejectsZeroDelegationKey(t *testing.T) {
	var zero [32]byte
	bc := NewBulkCipher(crypto.AES256, zero)
	_, err := bc.Encrypt(make([]byte, 16))
	assert.ErrorIs(t, err, protoerr.ErrCrypto)
}
