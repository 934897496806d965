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
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/sage-x-project/srd/blob"
	"github.com/sage-x-project/srd/crypto"
	"github.com/sage-x-project/srd/message"
	"github.com/sage-x-project/srd/protoerr"
	"github.com/sage-x-project/srd/session"
)

func (e *Engine) clientStep(input []byte) ([]byte, Status, error) {
	switch e.step {
	case 0:
		return e.stepClientInitiate()
	case 1:
		return e.stepClientAccept(input)
	case 2:
		return e.stepClientDelegate(input)
	default:
		return nil, StatusDone, fmt.Errorf("handshake: client has no step %d: %w", e.step, protoerr.ErrBadSequence)
	}
}

// stepClientInitiate builds and sends the opening Initiate message.
func (e *Engine) stepClientInitiate() ([]byte, Status, error) {
	if len(e.ciphers) == 0 {
		return nil, StatusContinue, fmt.Errorf("handshake: no ciphers configured: %w", protoerr.ErrCipher)
	}

	var flags uint16
	if e.useCBT {
		flags |= message.FlagCBT
	}

	msg := message.Initiate{
		Header:      message.Header{MsgType: message.TypeInitiate, SeqNum: e.step, Flags: flags},
		CiphersBits: crypto.ToFlags(e.ciphers),
		KeySize:     uint16(e.keySize),
	}
	wire := msg.Encode()
	e.transcript.AppendUnsigned(wire)
	e.step++
	return wire, StatusContinue, nil
}

// stepClientAccept parses the server's Offer and replies with Accept.
func (e *Engine) stepClientAccept(input []byte) ([]byte, Status, error) {
	offer, err := e.parseOffer(input)
	if err != nil {
		return nil, StatusContinue, err
	}
	e.transcript.AppendUnsigned(input)

	if int(offer.KeySize) != e.keySize {
		return nil, StatusContinue, fmt.Errorf("handshake: offer key_size %d != client key_size %d: %w", offer.KeySize, e.keySize, protoerr.ErrInvalidKeySize)
	}

	e.generator = new(big.Int).SetBytes(offer.Generator[:])
	e.prime = new(big.Int).SetBytes(offer.Prime)

	priv, err := sampleExponent(e.keySize)
	if err != nil {
		return nil, StatusContinue, err
	}
	e.privateKey = priv
	e.publicKey = new(big.Int).Exp(e.generator, e.privateKey, e.prime)

	if _, err := rand.Read(e.clientNonce[:]); err != nil {
		return nil, StatusContinue, fmt.Errorf("handshake: nonce rng: %w", protoerr.ErrRNG)
	}
	e.serverNonce = offer.Nonce

	peerPublic := new(big.Int).SetBytes(offer.PublicKey)
	secret := new(big.Int).Exp(peerPublic, e.privateKey, e.prime)
	e.keys = session.DeriveKeys(e.clientNonce, e.serverNonce, secret.Bytes())

	var cbt [32]byte
	if e.useCBT {
		cbt = computeCBT(e.keys.IntegrityKey, e.clientNonce, e.certData)
	}

	serverCiphers := crypto.FromFlags(offer.CiphersBits)
	negotiated, err := crypto.BestCipher(intersectCiphers(serverCiphers, e.ciphers))
	if err != nil {
		return nil, StatusContinue, err
	}
	e.negotiatedCipher = negotiated

	flags := message.FlagMAC
	if e.useCBT {
		flags |= message.FlagCBT
	}

	accept := message.Accept{
		Header:    message.Header{MsgType: message.TypeAccept, SeqNum: e.step, Flags: flags},
		CipherBit: crypto.Flag(negotiated),
		KeySize:   uint16(e.keySize),
		PublicKey: e.publicKey.Bytes(),
		Nonce:     e.clientNonce,
		CBT:       cbt,
	}
	candidate := accept.Encode()
	wire, err := e.transcript.Sign(e.keys.IntegrityKey[:], candidate)
	if err != nil {
		return nil, StatusContinue, err
	}
	e.step++
	return wire, StatusContinue, nil
}

// stepClientDelegate parses the server's Confirm and, unless the server
// signaled skip_delegation, encrypts and sends the staged blob via Delegate.
func (e *Engine) stepClientDelegate(input []byte) ([]byte, Status, error) {
	confirm, err := e.parseConfirm(input)
	if err != nil {
		return nil, StatusDone, err
	}
	if err := e.transcript.Verify(e.keys.IntegrityKey[:], input); err != nil {
		return nil, StatusDone, err
	}
	if err := e.checkCBT(confirm.CBT, e.serverNonce); err != nil {
		return nil, StatusDone, err
	}

	if confirm.Header.HasSkip() {
		e.done = true
		return nil, StatusDone, nil
	}

	if !e.haveOutBlob {
		return nil, StatusDone, fmt.Errorf("handshake: no blob staged for delegate: %w", protoerr.ErrMissingBlob)
	}

	outer := blob.New(e.outBlobType, e.outBlobData)
	plain, err := outer.Encode()
	if err != nil {
		return nil, StatusDone, err
	}

	iv, err := crypto.IVSlice(e.negotiatedCipher, e.keys.IV)
	if err != nil {
		return nil, StatusDone, err
	}
	ciphertext, err := crypto.Encrypt(e.negotiatedCipher, plain, e.keys.DelegationKey[:], iv)
	if err != nil {
		return nil, StatusDone, err
	}

	delegate := message.Delegate{
		Header:        message.Header{MsgType: message.TypeDelegate, SeqNum: e.step, Flags: message.FlagMAC},
		EncryptedBlob: ciphertext,
	}
	candidate := delegate.Encode()
	wire, err := e.transcript.Sign(e.keys.IntegrityKey[:], candidate)
	if err != nil {
		return nil, StatusDone, err
	}
	e.done = true
	return wire, StatusDone, nil
}

func (e *Engine) parseOffer(input []byte) (message.Offer, error) {
	hdr, err := message.DecodeHeader(input)
	if err != nil {
		return message.Offer{}, err
	}
	// The client has already advanced step past the send half of this round
	// (it sent Initiate at step-1), so the round's seq_num is step-1.
	want := e.step - 1
	if hdr.SeqNum != want {
		return message.Offer{}, fmt.Errorf("handshake: offer seq_num %d != expected %d: %w", hdr.SeqNum, want, protoerr.ErrBadSequence)
	}
	if hdr.MsgType != message.TypeOffer {
		return message.Offer{}, protoerr.Proto(fmt.Sprintf("expected Offer, got %s", hdr.MsgType))
	}
	return message.DecodeOffer(input)
}

func (e *Engine) parseConfirm(input []byte) (message.Confirm, error) {
	hdr, err := message.DecodeHeader(input)
	if err != nil {
		return message.Confirm{}, err
	}
	// Symmetric with parseOffer: the client sent Accept at step-1, so the
	// round's seq_num is step-1.
	want := e.step - 1
	if hdr.SeqNum != want {
		return message.Confirm{}, fmt.Errorf("handshake: confirm seq_num %d != expected %d: %w", hdr.SeqNum, want, protoerr.ErrBadSequence)
	}
	if hdr.MsgType != message.TypeConfirm {
		return message.Confirm{}, protoerr.Proto(fmt.Sprintf("expected Confirm, got %s", hdr.MsgType))
	}
	if !hdr.HasMAC() {
		return message.Confirm{}, protoerr.Proto("confirm missing required mac flag")
	}
	return message.DecodeConfirm(input)
}

func (e *Engine) checkCBT(received [32]byte, nonce [32]byte) error {
	if !e.useCBT {
		var zero [32]byte
		if received != zero {
			return protoerr.Proto("cbt present but channel binding disabled")
		}
		return nil
	}
	want := computeCBT(e.keys.IntegrityKey, nonce, e.certData)
	if want != received {
		return protoerr.ErrInvalidCBT
	}
	return nil
}
