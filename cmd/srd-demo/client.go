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
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/sage-x-project/srd/authscheme"
	"github.com/sage-x-project/srd/handshake"
	"github.com/sage-x-project/srd/internal/logger"
)

var (
	clientAddr           string
	clientKeySize        int
	clientCiphers        string
	clientSkipDelegation bool
	clientCertFile       string
	clientBlobType       string
	clientBlobFile       string
	clientMessage        string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Run an SRD handshake against a running server",
	RunE:  runClient,
}

func init() {
	rootCmd.AddCommand(clientCmd)

	clientCmd.Flags().StringVar(&clientAddr, "addr", envOr("SRD_DEMO_ADDR", "http://127.0.0.1:8443"), "server base URL")
	clientCmd.Flags().IntVar(&clientKeySize, "key-size", envIntOr("SRD_DEMO_KEY_SIZE", handshake.DefaultKeySize), "DH key size (256, 512, 1024)")
	clientCmd.Flags().StringVar(&clientCiphers, "ciphers", envOr("SRD_DEMO_CIPHERS", ""), "comma-separated cipher allow-list (AES256,ChaCha20,XChaCha20)")
	clientCmd.Flags().BoolVar(&clientSkipDelegation, "skip-delegation", false, "passed to the client engine, which ignores it: the client finishes after Confirm only when the server's Confirm carries the skip flag")
	clientCmd.Flags().StringVar(&clientCertFile, "cert-data", "", "file whose contents bind the channel (must match the server's)")
	clientCmd.Flags().StringVar(&clientBlobType, "blob-type", "Text", "inner blob codec to delegate (Basic, Logon, Text)")
	clientCmd.Flags().StringVar(&clientBlobFile, "blob-file", "", "file whose contents are delegated as the credential blob")
	clientCmd.Flags().StringVar(&clientMessage, "message", "hello over the delegated channel", "plaintext sent over the bulk-encrypted session once the handshake completes")
}

func runClient(cmd *cobra.Command, args []string) error {
	ciphers, err := parseCiphers(clientCiphers)
	if err != nil {
		return err
	}
	var cert []byte
	if clientCertFile != "" {
		cert, err = os.ReadFile(clientCertFile)
		if err != nil {
			return fmt.Errorf("reading cert-data: %w", err)
		}
	}

	e := buildEngine(handshake.RoleClient, clientSkipDelegation, clientKeySize, ciphers, cert)
	defer e.Close()
	if clientBlobFile != "" {
		data, err := os.ReadFile(clientBlobFile)
		if err != nil {
			return fmt.Errorf("reading blob-file: %w", err)
		}
		e.SetBlob(clientBlobType, data)
	}

	log := logger.GetDefaultLogger()
	sessionID := uuid.NewString()
	httpClient := &http.Client{Timeout: 10 * time.Second}
	endpoint := strings.TrimSuffix(clientAddr, "/") + handshakePath

	var in []byte
	for {
		out, status, err := e.Authenticate(in)
		if err != nil {
			return fmt.Errorf("handshake step failed: %w", err)
		}

		// A Done status with nothing to send means the server already
		// finished on its side (it signaled skip_delegation in Confirm);
		// there is no further round to make.
		if status == handshake.StatusDone && len(out) == 0 {
			log.Info("handshake complete", logger.String("session", sessionID), logger.String("cipher", string(e.GetCipher())))
			break
		}

		req, err := http.NewRequest(http.MethodPost, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set(sessionHeader, sessionID)
		authscheme.SetAuthorization(req.Header, out)

		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("handshake round trip: %w", err)
		}
		challenge := resp.Header.Get("WWW-Authenticate")
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
			return fmt.Errorf("handshake round trip: unexpected status %s", resp.Status)
		}

		if status == handshake.StatusDone {
			log.Info("handshake complete", logger.String("session", sessionID), logger.String("cipher", string(e.GetCipher())))
			break
		}
		if challenge == "" {
			return fmt.Errorf("handshake round trip: server returned no challenge")
		}
		in, err = authscheme.ParseWWWAuthenticate(challenge)
		if err != nil {
			return fmt.Errorf("parsing challenge: %w", err)
		}
	}

	return runDelegatedSession(e, sessionID)
}

func runDelegatedSession(e *handshake.Engine, sessionID string) error {
	log := logger.GetDefaultLogger()

	wsURL, err := url.Parse(strings.Replace(strings.TrimSuffix(clientAddr, "/"), "http", "ws", 1) + sessionPath)
	if err != nil {
		return err
	}
	q := wsURL.Query()
	q.Set("session", sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing delegated session: %w", err)
	}
	defer conn.Close()

	bc := authscheme.NewBulkCipher(e.GetCipher(), e.GetDelegationKey())
	ciphertext, err := bc.Encrypt([]byte(clientMessage))
	if err != nil {
		return fmt.Errorf("bulk encrypt: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, ciphertext); err != nil {
		return fmt.Errorf("sending session message: %w", err)
	}

	msgType, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("reading session echo: %w", err)
	}
	if msgType != websocket.BinaryMessage {
		return fmt.Errorf("unexpected echo message type %d", msgType)
	}
	plaintext, err := bc.Decrypt(data)
	if err != nil {
		return fmt.Errorf("bulk decrypt: %w", err)
	}
	log.Info("delegated session echo", logger.String("plaintext", string(plaintext)))
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}
