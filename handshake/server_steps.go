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
	"github.com/sage-x-project/srd/crypto/dhparams"
	"github.com/sage-x-project/srd/message"
	"github.com/sage-x-project/srd/protoerr"
	"github.com/sage-x-project/srd/session"
)

func (e *Engine) serverStep(input []byte) ([]byte, Status, error) {
	switch e.step {
	case 0:
		return e.stepServerOffer(input)
	case 1:
		return e.stepServerConfirm(input)
	case 2:
		return e.stepServerDelegate(input)
	default:
		return nil, StatusDone, fmt.Errorf("handshake: server has no step %d: %w", e.step, protoerr.ErrBadSequence)
	}
}

// stepServerOffer parses the client's Initiate and replies with Offer.
func (e *Engine) stepServerOffer(input []byte) ([]byte, Status, error) {
	initiate, err := e.parseInitiate(input)
	if err != nil {
		return nil, StatusContinue, err
	}
	if initiate.Header.HasMAC() {
		return nil, StatusContinue, protoerr.Proto("initiate must not carry a mac")
	}
	e.transcript.AppendUnsigned(input)

	e.useCBT = initiate.Header.HasCBT()
	e.keySize = int(initiate.KeySize)

	params, err := dhparams.Lookup(e.keySize)
	if err != nil {
		return nil, StatusContinue, err
	}
	e.generator = params.Generator
	e.prime = params.Prime

	priv, err := sampleExponent(e.keySize)
	if err != nil {
		return nil, StatusContinue, err
	}
	e.privateKey = priv
	e.publicKey = new(big.Int).Exp(e.generator, e.privateKey, e.prime)

	if _, err := rand.Read(e.serverNonce[:]); err != nil {
		return nil, StatusContinue, fmt.Errorf("handshake: nonce rng: %w", protoerr.ErrRNG)
	}

	var flags uint16
	if e.useCBT {
		flags |= message.FlagCBT
	}

	offer := message.Offer{
		Header:      message.Header{MsgType: message.TypeOffer, SeqNum: e.step, Flags: flags},
		CiphersBits: crypto.ToFlags(e.ciphers),
		KeySize:     uint16(e.keySize),
		Generator:   dhparams.GeneratorBytes(),
		Prime:       e.prime.Bytes(),
		PublicKey:   e.publicKey.Bytes(),
		Nonce:       e.serverNonce,
	}
	wire := offer.Encode()
	e.transcript.AppendUnsigned(wire)
	e.step++
	return wire, StatusContinue, nil
}

// stepServerConfirm parses the client's Accept, derives keys, verifies its
// MAC and CBT, and replies with Confirm.
func (e *Engine) stepServerConfirm(input []byte) ([]byte, Status, error) {
	accept, err := e.parseAccept(input)
	if err != nil {
		return nil, StatusContinue, err
	}
	if int(accept.KeySize) != e.keySize {
		return nil, StatusContinue, fmt.Errorf("handshake: accept key_size %d != server key_size %d: %w", accept.KeySize, e.keySize, protoerr.ErrInvalidKeySize)
	}

	chosen := crypto.FromFlags(accept.CipherBit)
	if len(chosen) != 1 {
		return nil, StatusContinue, fmt.Errorf("handshake: accept must choose exactly one cipher: %w", protoerr.ErrCipher)
	}
	if len(intersectCiphers(chosen, e.ciphers)) != 1 {
		return nil, StatusContinue, fmt.Errorf("handshake: accept chose a cipher outside our offer: %w", protoerr.ErrCipher)
	}
	e.negotiatedCipher = chosen[0]

	e.clientNonce = accept.Nonce
	peerPublic := new(big.Int).SetBytes(accept.PublicKey)
	secret := new(big.Int).Exp(peerPublic, e.privateKey, e.prime)
	e.keys = session.DeriveKeys(e.clientNonce, e.serverNonce, secret.Bytes())

	// The MAC in Accept can only be verified once the integrity key above
	// is known, so verification happens here rather than in parseAccept.
	if err := e.transcript.Verify(e.keys.IntegrityKey[:], input); err != nil {
		return nil, StatusContinue, err
	}

	if err := e.checkCBT(accept.CBT, e.clientNonce); err != nil {
		return nil, StatusContinue, err
	}

	var serverCBT [32]byte
	if e.useCBT {
		serverCBT = computeCBT(e.keys.IntegrityKey, e.serverNonce, e.certData)
	}

	flags := message.FlagMAC
	if e.useCBT {
		flags |= message.FlagCBT
	}
	if e.skipDelegation {
		flags |= message.FlagSkip
	}

	confirm := message.Confirm{
		Header: message.Header{MsgType: message.TypeConfirm, SeqNum: e.step, Flags: flags},
		CBT:    serverCBT,
	}
	candidate := confirm.Encode()
	wire, err := e.transcript.Sign(e.keys.IntegrityKey[:], candidate)
	if err != nil {
		return nil, StatusContinue, err
	}
	e.step++

	if e.skipDelegation {
		e.done = true
		return wire, StatusDone, nil
	}
	return wire, StatusContinue, nil
}

// stepServerDelegate parses the client's Delegate, verifies its MAC, and
// decrypts and stores the delivered blob.
func (e *Engine) stepServerDelegate(input []byte) ([]byte, Status, error) {
	if e.skipDelegation {
		return nil, StatusDone, fmt.Errorf("handshake: delegate received after skip_delegation confirm: %w", protoerr.ErrBadSequence)
	}

	delegate, err := e.parseDelegate(input)
	if err != nil {
		return nil, StatusDone, err
	}
	if err := e.transcript.Verify(e.keys.IntegrityKey[:], input); err != nil {
		return nil, StatusDone, err
	}

	iv, err := crypto.IVSlice(e.negotiatedCipher, e.keys.IV)
	if err != nil {
		return nil, StatusDone, err
	}
	plain, err := crypto.Decrypt(e.negotiatedCipher, delegate.EncryptedBlob, e.keys.DelegationKey[:], iv)
	if err != nil {
		return nil, StatusDone, err
	}

	outer, err := blob.DecodeBytes(plain)
	if err != nil {
		return nil, StatusDone, err
	}
	e.inBlobType = outer.Type
	e.inBlobData = outer.Data
	e.haveInBlob = true

	e.done = true
	return nil, StatusDone, nil
}

func (e *Engine) parseInitiate(input []byte) (message.Initiate, error) {
	hdr, err := message.DecodeHeader(input)
	if err != nil {
		return message.Initiate{}, err
	}
	if hdr.SeqNum != e.step {
		return message.Initiate{}, fmt.Errorf("handshake: initiate seq_num %d != expected %d: %w", hdr.SeqNum, e.step, protoerr.ErrBadSequence)
	}
	if hdr.MsgType != message.TypeInitiate {
		return message.Initiate{}, protoerr.Proto(fmt.Sprintf("expected Initiate, got %s", hdr.MsgType))
	}
	return message.DecodeInitiate(input)
}

func (e *Engine) parseAccept(input []byte) (message.Accept, error) {
	hdr, err := message.DecodeHeader(input)
	if err != nil {
		return message.Accept{}, err
	}
	if hdr.SeqNum != e.step {
		return message.Accept{}, fmt.Errorf("handshake: accept seq_num %d != expected %d: %w", hdr.SeqNum, e.step, protoerr.ErrBadSequence)
	}
	if hdr.MsgType != message.TypeAccept {
		return message.Accept{}, protoerr.Proto(fmt.Sprintf("expected Accept, got %s", hdr.MsgType))
	}
	if !hdr.HasMAC() {
		return message.Accept{}, protoerr.Proto("accept missing required mac flag")
	}
	return message.DecodeAccept(input)
}

func (e *Engine) parseDelegate(input []byte) (message.Delegate, error) {
	hdr, err := message.DecodeHeader(input)
	if err != nil {
		return message.Delegate{}, err
	}
	if hdr.SeqNum != e.step {
		return message.Delegate{}, fmt.Errorf("handshake: delegate seq_num %d != expected %d: %w", hdr.SeqNum, e.step, protoerr.ErrBadSequence)
	}
	if hdr.MsgType != message.TypeDelegate {
		return message.Delegate{}, protoerr.Proto(fmt.Sprintf("expected Delegate, got %s", hdr.MsgType))
	}
	if !hdr.HasMAC() {
		return message.Delegate{}, protoerr.Proto("delegate missing required mac flag")
	}
	return message.DecodeDelegate(input)
}
