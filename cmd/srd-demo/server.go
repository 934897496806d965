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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"github.com/sage-x-project/srd/authscheme"
	"github.com/sage-x-project/srd/handshake"
	"github.com/sage-x-project/srd/internal/logger"
)

var (
	serverAddr           string
	serverKeySize        int
	serverCiphers        string
	serverSkipDelegation bool
	serverCertFile       string
	serverMaxSessions    int64
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run an SRD delegation endpoint",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverAddr, "addr", envOr("SRD_DEMO_ADDR", ":8443"), "listen address")
	serverCmd.Flags().IntVar(&serverKeySize, "key-size", envIntOr("SRD_DEMO_KEY_SIZE", handshake.DefaultKeySize), "DH key size (256, 512, 1024)")
	serverCmd.Flags().StringVar(&serverCiphers, "ciphers", envOr("SRD_DEMO_CIPHERS", ""), "comma-separated cipher allow-list (AES256,ChaCha20,XChaCha20)")
	serverCmd.Flags().BoolVar(&serverSkipDelegation, "skip-delegation", false, "finish after Confirm with no credential blob round")
	serverCmd.Flags().StringVar(&serverCertFile, "cert-data", "", "file whose contents bind the channel; presence enables channel binding, must match the client's")
	serverCmd.Flags().Int64Var(&serverMaxSessions, "max-sessions", 256, "maximum number of delegated WebSocket sessions open at once")
}

// sessionStore holds one server-side Engine per in-progress or completed
// handshake, keyed by the client-chosen session id. sessions bounds how many
// delegated WebSocket connections may be open concurrently.
type sessionStore struct {
	mu       sync.Mutex
	engines  map[string]*handshake.Engine
	sessions *semaphore.Weighted
}

func newSessionStore(maxSessions int64) *sessionStore {
	return &sessionStore{
		engines:  make(map[string]*handshake.Engine),
		sessions: semaphore.NewWeighted(maxSessions),
	}
}

func (s *sessionStore) getOrCreate(id string, newEngine func() *handshake.Engine) *handshake.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engines[id]
	if !ok {
		e = newEngine()
		s.engines[id] = e
	}
	return e
}

func (s *sessionStore) get(id string) (*handshake.Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engines[id]
	return e, ok
}

// remove zeroizes and discards the engine backing id, once its delegated
// session is no longer needed.
func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[id]; ok {
		e.Close()
		delete(s.engines, id)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ciphers, err := parseCiphers(serverCiphers)
	if err != nil {
		return err
	}
	var cert []byte
	if serverCertFile != "" {
		cert, err = os.ReadFile(serverCertFile)
		if err != nil {
			return fmt.Errorf("reading cert-data: %w", err)
		}
	}

	log := logger.GetDefaultLogger()
	store := newSessionStore(serverMaxSessions)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc(handshakePath, func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(sessionHeader)
		if id == "" {
			id = uuid.NewString()
			w.Header().Set(sessionHeader, id)
		}

		in, err := authscheme.ParseAuthorization(r.Header.Get("Authorization"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e := store.getOrCreate(id, func() *handshake.Engine {
			return buildEngine(handshake.RoleServer, serverSkipDelegation, serverKeySize, ciphers, cert)
		})

		out, status, err := e.Authenticate(in)
		if err != nil {
			log.Warn("handshake round failed", logger.String("session", id), logger.Error(err))
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		if len(out) > 0 {
			authscheme.SetWWWAuthenticate(w.Header(), out)
		}
		if status == handshake.StatusDone {
			blobType, data, ok := e.GetBlob()
			if ok {
				log.Info("handshake complete, blob delegated",
					logger.String("session", id), logger.String("blob_type", blobType), logger.Int("blob_len", len(data)))
			} else {
				log.Info("handshake complete", logger.String("session", id))
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	mux.HandleFunc(sessionPath, func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session")
		e, ok := store.get(id)
		if !ok || !e.Done() {
			http.Error(w, "unknown or incomplete session", http.StatusBadRequest)
			return
		}

		if err := store.sessions.Acquire(r.Context(), 1); err != nil {
			http.Error(w, "too many concurrent sessions", http.StatusServiceUnavailable)
			return
		}
		defer store.sessions.Release(1)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", logger.Error(err))
			return
		}
		defer conn.Close()
		defer store.remove(id)

		bc := authscheme.NewBulkCipher(e.GetCipher(), e.GetDelegationKey())
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn("websocket read failed", logger.String("session", id), logger.Error(err))
				}
				return
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			plaintext, err := bc.Decrypt(data)
			if err != nil {
				log.Warn("bulk decrypt failed", logger.String("session", id), logger.Error(err))
				return
			}
			log.Info("session message", logger.String("session", id), logger.String("plaintext", string(plaintext)))

			echo, err := bc.Encrypt(plaintext)
			if err != nil {
				log.Warn("bulk encrypt failed", logger.String("session", id), logger.Error(err))
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, echo); err != nil {
				return
			}
		}
	})

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("srd-demo server listening", logger.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", logger.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
