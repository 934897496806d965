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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/srd/protoerr"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{MsgType: TypeAccept, SeqNum: 2, Flags: FlagMAC | FlagCBT}
	wire := h.Encode()
	assert.Len(t, wire, HeaderSize)

	got, err := DecodeHeader(wire)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.True(t, got.HasMAC())
	assert.True(t, got.HasCBT())
	assert.False(t, got.HasSkip())
}

func TestDecodeHeaderRejectsBadSignature(t *testing.T) {
	wire := Header{MsgType: TypeInitiate}.Encode()
	wire[0] ^= 0xFF
	_, err := DecodeHeader(wire)
	assert.ErrorIs(t, err, protoerr.ErrInvalidSignature)
}

func TestInitiateRoundTrip(t *testing.T) {
	m := Initiate{
		Header:      Header{MsgType: TypeInitiate, SeqNum: 0, Flags: FlagCBT},
		CiphersBits: 0x00000301,
		KeySize:     256,
	}
	got, err := DecodeInitiate(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestOfferRoundTrip(t *testing.T) {
	m := Offer{
		Header:      Header{MsgType: TypeOffer, SeqNum: 0},
		CiphersBits: 0x00000101,
		KeySize:     32,
		Generator:   [2]byte{0x00, 0x02},
		Prime:       make([]byte, 32),
		PublicKey:   make([]byte, 32),
	}
	for i := range m.Prime {
		m.Prime[i] = byte(i + 1)
		m.PublicKey[i] = byte(255 - i)
	}
	for i := range m.Nonce {
		m.Nonce[i] = byte(i)
	}
	got, err := DecodeOffer(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestOfferRejectsShortBody(t *testing.T) {
	m := Offer{Header: Header{MsgType: TypeOffer}, KeySize: 32, Prime: make([]byte, 32), PublicKey: make([]byte, 32)}
	wire := m.Encode()
	_, err := DecodeOffer(wire[:len(wire)-1])
	assert.ErrorIs(t, err, protoerr.ErrBlobFormat)
}

func TestAcceptRoundTrip(t *testing.T) {
	m := Accept{
		Header:    Header{MsgType: TypeAccept, SeqNum: 1, Flags: FlagMAC | FlagCBT},
		CipherBit: 0x00000200,
		KeySize:   16,
		PublicKey: make([]byte, 16),
	}
	for i := range m.PublicKey {
		m.PublicKey[i] = byte(i)
	}
	for i := range m.Nonce {
		m.Nonce[i] = byte(i + 1)
	}
	for i := range m.CBT {
		m.CBT[i] = byte(i + 2)
	}
	got, err := DecodeAccept(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestConfirmRoundTrip(t *testing.T) {
	m := Confirm{Header: Header{MsgType: TypeConfirm, SeqNum: 1, Flags: FlagMAC}}
	for i := range m.CBT {
		m.CBT[i] = byte(i)
	}
	for i := range m.MAC {
		m.MAC[i] = byte(255 - i)
	}
	got, err := DecodeConfirm(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestDelegateRoundTrip(t *testing.T) {
	m := Delegate{
		Header:        Header{MsgType: TypeDelegate, SeqNum: 2, Flags: FlagMAC},
		EncryptedBlob: []byte("ciphertext-goes-here"),
	}
	for i := range m.MAC {
		m.MAC[i] = byte(i)
	}
	got, err := DecodeDelegate(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestDelegateRoundTripEmptyBlob(t *testing.T) {
	m := Delegate{Header: Header{MsgType: TypeDelegate, Flags: FlagMAC}}
	got, err := DecodeDelegate(m.Encode())
	require.NoError(t, err)
	assert.Equal(t, m.EncryptedBlob, got.EncryptedBlob)
}

func TestDecodeDispatchesOnType(t *testing.T) {
	m := Initiate{Header: Header{MsgType: TypeInitiate}, CiphersBits: 1, KeySize: 256}
	got, err := Decode(m.Encode())
	require.NoError(t, err)
	assert.IsType(t, Initiate{}, got)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	h := Header{MsgType: Type(99)}
	_, err := Decode(h.Encode())
	assert.ErrorIs(t, err, protoerr.ErrUnknownMsgType)
}
