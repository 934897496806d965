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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/srd/crypto"
	"github.com/sage-x-project/srd/message"
	"github.com/sage-x-project/srd/protoerr"
)

// runHandshake drives client and server in lockstep until both report done;
// callers then assert on the two engines they passed in.
func runHandshake(t *testing.T, client, server *Engine) {
	t.Helper()

	initiate, status, err := client.Authenticate(nil)
	require.NoError(t, err)
	require.Equal(t, StatusContinue, status)

	offer, status, err := server.Authenticate(initiate)
	require.NoError(t, err)
	require.Equal(t, StatusContinue, status)

	accept, status, err := client.Authenticate(offer)
	require.NoError(t, err)
	require.Equal(t, StatusContinue, status)

	confirm, serverStatus, err := server.Authenticate(accept)
	require.NoError(t, err)

	if serverStatus == StatusDone {
		assert.True(t, server.Done())
		_, clientStatus, err := client.Authenticate(confirm)
		require.NoError(t, err)
		assert.Equal(t, StatusDone, clientStatus)
		assert.True(t, client.Done())
		return
	}

	delegate, clientStatus, err := client.Authenticate(confirm)
	require.NoError(t, err)
	require.Equal(t, StatusDone, clientStatus)
	assert.True(t, client.Done())

	_, serverStatus, err = server.Authenticate(delegate)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, serverStatus)
	assert.True(t, server.Done())
}

func TestHandshakeEndToEndWithDelegation(t *testing.T) {
	client := New(RoleClient, false)
	server := New(RoleServer, false)
	client.SetBlob("Basic", []byte("alice:hunter2"))

	runHandshake(t, client, server)

	assert.Equal(t, client.GetDelegationKey(), server.GetDelegationKey())
	assert.Equal(t, client.GetIntegrityKey(), server.GetIntegrityKey())
	assert.Equal(t, client.GetCipher(), server.GetCipher())

	blobType, data, ok := server.GetBlob()
	require.True(t, ok)
	assert.Equal(t, "Basic", blobType)
	assert.Equal(t, []byte("alice:hunter2"), data)
}

func TestHandshakeSkipDelegationFinishesAfterConfirm(t *testing.T) {
	client := New(RoleClient, true)
	server := New(RoleServer, true)

	runHandshake(t, client, server)

	assert.Equal(t, client.GetDelegationKey(), server.GetDelegationKey())
	_, _, ok := server.GetBlob()
	assert.False(t, ok)
}

func TestHandshakeWithChannelBinding(t *testing.T) {
	client := New(RoleClient, false)
	server := New(RoleServer, false)
	cert := []byte("fingerprint-of-tls-certificate")
	client.SetCertData(cert)
	server.SetCertData(cert)
	client.SetBlob("Text", []byte("hello"))

	runHandshake(t, client, server)

	blobType, data, ok := server.GetBlob()
	require.True(t, ok)
	assert.Equal(t, "Text", blobType)
	assert.Equal(t, []byte("hello"), data)
}

func TestHandshakeChannelBindingMismatchFails(t *testing.T) {
	client := New(RoleClient, false)
	server := New(RoleServer, false)
	client.SetCertData([]byte("client-sees-this-cert"))
	server.SetCertData([]byte("server-sees-a-different-cert"))
	client.SetBlob("Text", []byte("hello"))

	initiate, _, err := client.Authenticate(nil)
	require.NoError(t, err)
	offer, _, err := server.Authenticate(initiate)
	require.NoError(t, err)
	accept, _, err := client.Authenticate(offer)
	require.NoError(t, err)

	_, _, err = server.Authenticate(accept)
	assert.ErrorIs(t, err, protoerr.ErrInvalidCBT)
}

func TestHandshakeDisjointCiphersFails(t *testing.T) {
	client := New(RoleClient, false)
	client.SetCiphers([]crypto.Cipher{crypto.AES256})
	server := New(RoleServer, false)
	server.SetCiphers([]crypto.Cipher{crypto.ChaCha20})

	initiate, _, err := client.Authenticate(nil)
	require.NoError(t, err)
	offer, _, err := server.Authenticate(initiate)
	require.NoError(t, err)

	_, _, err = client.Authenticate(offer)
	assert.ErrorIs(t, err, protoerr.ErrCipher)
}

func TestHandshakeTamperedAcceptMACFails(t *testing.T) {
	client := New(RoleClient, false)
	server := New(RoleServer, false)
	client.SetBlob("Text", []byte("hi"))

	initiate, _, err := client.Authenticate(nil)
	require.NoError(t, err)
	offer, _, err := server.Authenticate(initiate)
	require.NoError(t, err)
	accept, _, err := client.Authenticate(offer)
	require.NoError(t, err)

	tampered := append([]byte(nil), accept...)
	tampered[len(tampered)-1] ^= 0xFF

	_, _, err = server.Authenticate(tampered)
	assert.ErrorIs(t, err, protoerr.ErrInvalidMAC)
}

func TestHandshakeRejectsBadSequence(t *testing.T) {
	client := New(RoleClient, false)
	server := New(RoleServer, false)

	initiate, _, err := client.Authenticate(nil)
	require.NoError(t, err)

	hdr, err := message.DecodeHeader(initiate)
	require.NoError(t, err)
	hdr.SeqNum = 9
	bumped := append(hdr.Encode(), initiate[message.HeaderSize:]...)

	_, _, err = server.Authenticate(bumped)
	assert.ErrorIs(t, err, protoerr.ErrBadSequence)
}

func TestHandshakeMissingBlobFailsAtDelegate(t *testing.T) {
	client := New(RoleClient, false)
	server := New(RoleServer, false)

	initiate, _, err := client.Authenticate(nil)
	require.NoError(t, err)
	offer, _, err := server.Authenticate(initiate)
	require.NoError(t, err)
	accept, _, err := client.Authenticate(offer)
	require.NoError(t, err)
	confirm, _, err := server.Authenticate(accept)
	require.NoError(t, err)

	_, _, err = client.Authenticate(confirm)
	assert.ErrorIs(t, err, protoerr.ErrMissingBlob)
}
