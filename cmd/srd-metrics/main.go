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

// srd-metrics runs a standalone Prometheus /metrics exporter plus a
// health endpoint over the process-wide internal/metrics registry and
// health checks, for deployments that run the handshake engine embedded
// in another binary and want observability split out into its own port.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sage-x-project/srd/config"
	"github.com/sage-x-project/srd/health"
	"github.com/sage-x-project/srd/internal/logger"
	"github.com/sage-x-project/srd/internal/metrics"
)

func main() {
	_ = godotenv.Load()
	log := logger.GetDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading configuration", logger.Error(err))
	}
	if issues := config.ValidateConfiguration(cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Warn("configuration issue", logger.String("field", issue.Field), logger.String("level", issue.Level), logger.String("message", issue.Message))
		}
	}

	addr := ":9090"
	if cfg.Metrics != nil && cfg.Metrics.Port > 0 {
		addr = ":" + strconv.Itoa(cfg.Metrics.Port)
	}
	metricsPath := "/metrics"
	if cfg.Metrics != nil && cfg.Metrics.Path != "" {
		metricsPath = cfg.Metrics.Path
	}
	healthPath := "/healthz"
	if cfg.Health != nil && cfg.Health.Path != "" {
		healthPath = cfg.Health.Path
	}

	checker := health.NewHealthChecker(5 * time.Second)
	checker.RegisterCheck("rng", health.RNGHealthCheck())
	checker.RegisterCheck("dhparams", health.DHParamsHealthCheck())

	mux := http.NewServeMux()
	mux.Handle(metricsPath, metrics.Handler())
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		sys := checker.GetSystemHealth(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if sys.Status != health.StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(sys)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("srd-metrics listening",
			logger.String("addr", addr), logger.String("metrics_path", metricsPath), logger.String("health_path", healthPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", logger.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("metrics server shutdown error", logger.Error(err))
		os.Exit(1)
	}
}
