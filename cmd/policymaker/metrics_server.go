// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/peterhriser/PolicyMaker/lib/metrics"
)

// startMetricsServer serves /metrics for registry on address, adding
// the Go runtime and process collectors. The returned function shuts
// the server down.
func startMetricsServer(address string, registry *prometheus.Registry, logger *slog.Logger) (func(), error) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("metrics listener on %s: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "address", listener.Addr().String(), "path", "/metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}, nil
}
