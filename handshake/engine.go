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

// Package handshake implements the SRD protocol engine: a single-threaded,
// strictly sequential state machine that drives one side (client or server)
// of a four-step DH handshake through to a shared delegation key and an
// optional encrypted credential blob.
package handshake

import (
	"errors"
	"math/big"
	"time"

	"github.com/sage-x-project/srd/crypto"
	"github.com/sage-x-project/srd/internal/logger"
	"github.com/sage-x-project/srd/internal/metrics"
	"github.com/sage-x-project/srd/protoerr"
	"github.com/sage-x-project/srd/session"
)

// Role identifies which side of the handshake an Engine plays.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// Status reports whether an Engine has more messages to exchange.
type Status int

const (
	StatusContinue Status = iota
	StatusDone
)

// DefaultKeySize is used when a caller does not pick one explicitly.
const DefaultKeySize = 256

// Engine drives one side of an SRD handshake. It holds no I/O and performs
// no locking: a caller runs many engines, one per concurrent session, and
// feeds each one its own messages in issuance order.
type Engine struct {
	role           Role
	skipDelegation bool
	useCBT         bool
	certData       []byte

	step uint8 // also the wire seq_num for every message exchanged this round

	ciphers []crypto.Cipher
	keySize int

	generator *big.Int
	prime     *big.Int

	privateKey *big.Int
	publicKey  *big.Int

	clientNonce [32]byte
	serverNonce [32]byte

	negotiatedCipher crypto.Cipher
	keys             session.Keys
	transcript       *session.Transcript

	inBlobType  string
	inBlobData  []byte
	haveInBlob  bool
	outBlobType string
	outBlobData []byte
	haveOutBlob bool

	done   bool
	failed bool
}

// New returns an Engine ready to drive role's side of a handshake.
// skipDelegation is consulted by a server-role engine only: when true, its
// Confirm carries FlagSkip and the handshake finishes after Confirm with no
// Delegate message and no credential blob. A client-role engine finishes
// after Confirm whenever the server's Confirm carries FlagSkip, whatever
// skipDelegation it was created with.
func New(role Role, skipDelegation bool) *Engine {
	return &Engine{
		role:           role,
		skipDelegation: skipDelegation,
		ciphers:        []crypto.Cipher{crypto.AES256, crypto.ChaCha20, crypto.XChaCha20},
		keySize:        DefaultKeySize,
		transcript:     session.NewTranscript(),
	}
}

// SetCiphers restricts the ciphers this engine will advertise or accept to
// the intersection of list and the ciphers this build supports.
func (e *Engine) SetCiphers(list []crypto.Cipher) {
	allowed := make(map[crypto.Cipher]bool, len(list))
	for _, c := range list {
		allowed[c] = true
	}
	var filtered []crypto.Cipher
	for _, c := range []crypto.Cipher{crypto.AES256, crypto.ChaCha20, crypto.XChaCha20} {
		if allowed[c] {
			filtered = append(filtered, c)
		}
	}
	e.ciphers = filtered
}

// SetKeySize overrides the DH key size a client-role engine proposes. Must be
// one of the sizes dhparams.Lookup supports. A server-role engine replaces it
// with the key size carried by the client's Initiate.
func (e *Engine) SetKeySize(keySize int) {
	e.keySize = keySize
}

// SetCertData installs the channel-binding certificate bytes and enables
// channel binding for this engine.
func (e *Engine) SetCertData(certData []byte) {
	e.certData = append([]byte(nil), certData...)
	e.useCBT = true
}

// SetBlob stages the credential blob the client side will deliver via
// Delegate. It has no effect on a server-role engine.
func (e *Engine) SetBlob(blobType string, data []byte) {
	e.outBlobType = blobType
	e.outBlobData = append([]byte(nil), data...)
	e.haveOutBlob = true
}

// GetBlob returns the blob delivered by Delegate, once the server side has
// processed it.
func (e *Engine) GetBlob() (blobType string, data []byte, ok bool) {
	return e.inBlobType, e.inBlobData, e.haveInBlob
}

// GetDelegationKey returns the derived delegation key, valid once the
// handshake has progressed past Accept/Confirm.
func (e *Engine) GetDelegationKey() [32]byte { return e.keys.DelegationKey }

// GetIntegrityKey returns the derived integrity key, valid once the
// handshake has progressed past Accept/Confirm.
func (e *Engine) GetIntegrityKey() [32]byte { return e.keys.IntegrityKey }

// GetCipher returns the cipher negotiated for this session, valid once the
// handshake has progressed past Accept/Confirm.
func (e *Engine) GetCipher() crypto.Cipher { return e.negotiatedCipher }

// Done reports whether the handshake has finished.
func (e *Engine) Done() bool { return e.done }

// stepName returns the name of the step about to run, for logging and
// metrics labels.
func (e *Engine) stepName() string {
	if e.role == RoleClient {
		switch e.step {
		case 0:
			return "initiate"
		case 1:
			return "accept"
		default:
			return "delegate"
		}
	}
	switch e.step {
	case 0:
		return "offer"
	case 1:
		return "confirm"
	default:
		return "delegate"
	}
}

// Authenticate advances the engine by exactly one step: it consumes input
// (except the client's very first call) and returns the next outbound
// message (except the server's very last call, which returns nil). Each
// call logs a Debug event before and after the step (a Warn event instead of
// the second one on error) and records handshake/auth-failure metrics. Once
// the handshake has finished or a step has failed, every further call fails
// with protoerr.ErrBadSequence.
func (e *Engine) Authenticate(input []byte) ([]byte, Status, error) {
	if e.done || e.failed {
		return nil, StatusDone, protoerr.ErrBadSequence
	}
	role := e.role.String()
	step := e.stepName()
	if e.step == 0 {
		metrics.HandshakesInitiated.WithLabelValues(role).Inc()
	}

	start := time.Now()
	log := logger.GetDefaultLogger()
	log.Debug("handshake.step",
		logger.String("role", role),
		logger.String("step", step),
	)

	var out []byte
	var status Status
	var err error
	if e.role == RoleClient {
		out, status, err = e.clientStep(input)
	} else {
		out, status, err = e.serverStep(input)
	}
	metrics.HandshakeDuration.WithLabelValues(role, step).Observe(time.Since(start).Seconds())

	if err != nil {
		e.failed = true
		if errors.Is(err, protoerr.ErrInvalidMAC) {
			metrics.AuthFailures.WithLabelValues("mac").Inc()
		} else if errors.Is(err, protoerr.ErrInvalidCBT) {
			metrics.AuthFailures.WithLabelValues("cbt").Inc()
		}
		metrics.HandshakesFailed.WithLabelValues(role, errorTaxonomyLabel(err)).Inc()
		metrics.HandshakesCompleted.WithLabelValues("failure").Inc()
		log.Warn("handshake.step failed",
			logger.String("role", role),
			logger.String("step", step),
			logger.Error(err),
		)
		return out, status, err
	}

	log.Debug("handshake.step done",
		logger.String("role", role),
		logger.String("step", step),
		logger.Bool("done", status == StatusDone),
	)
	if status == StatusDone {
		metrics.HandshakesCompleted.WithLabelValues("success").Inc()
	}
	return out, status, err
}

// errorTaxonomyLabel maps err to a low-cardinality protoerr sentinel name
// for metric labels, falling back to "other" for anything unrecognized.
func errorTaxonomyLabel(err error) string {
	switch {
	case errors.Is(err, protoerr.ErrBadSequence):
		return "bad_sequence"
	case errors.Is(err, protoerr.ErrCipher):
		return "cipher"
	case errors.Is(err, protoerr.ErrInvalidMAC):
		return "invalid_mac"
	case errors.Is(err, protoerr.ErrInvalidCBT):
		return "invalid_cbt"
	case errors.Is(err, protoerr.ErrMissingBlob):
		return "missing_blob"
	case errors.Is(err, protoerr.ErrBlobFormat):
		return "blob_format"
	case errors.Is(err, protoerr.ErrInvalidKeySize):
		return "invalid_key_size"
	case errors.Is(err, protoerr.ErrInvalidDataLength):
		return "invalid_data_length"
	case errors.Is(err, protoerr.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, protoerr.ErrUnknownMsgType):
		return "unknown_msg_type"
	case errors.Is(err, protoerr.ErrRNG):
		return "rng"
	default:
		return "other"
	}
}

// Close zeroizes all derived secret material. Callers must invoke this when
// an Engine is no longer needed.
func (e *Engine) Close() {
	e.keys.Zero()
	if e.privateKey != nil {
		e.privateKey.SetInt64(0)
	}
	for i := range e.certData {
		e.certData[i] = 0
	}
	for i := range e.clientNonce {
		e.clientNonce[i] = 0
	}
	for i := range e.serverNonce {
		e.serverNonce[i] = 0
	}
	for i := range e.inBlobData {
		e.inBlobData[i] = 0
	}
}
