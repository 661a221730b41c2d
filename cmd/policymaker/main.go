// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/peterhriser/PolicyMaker/lib/config"
	"github.com/peterhriser/PolicyMaker/lib/datagram"
	"github.com/peterhriser/PolicyMaker/lib/knowledgebase"
	"github.com/peterhriser/PolicyMaker/lib/metrics"
	"github.com/peterhriser/PolicyMaker/lib/monitor"
	"github.com/peterhriser/PolicyMaker/lib/process"
	"github.com/peterhriser/PolicyMaker/lib/resolve"
	"github.com/peterhriser/PolicyMaker/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv); err != nil {
		stop()
		process.Fatal(err)
	}
}

// run is the whole command. ctx cancellation is the shutdown request.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) error {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, errHelpShown) {
		return nil
	}
	if err != nil {
		return &process.ExitError{Code: 2, Err: err}
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "policymaker %s\n", version.Full())
		return nil
	}

	cfg, err := loadConfig(opts, lookup)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.Log).With("session", uuid.NewString())

	table, err := loadKnowledgeBase(cfg.KnowledgeBase)
	if err != nil {
		return err
	}
	logger.Info("knowledge base loaded",
		"source", knowledgeBaseSource(cfg.KnowledgeBase),
		"version", table.Version(),
		"fingerprint", table.Fingerprint(),
		"mappings", table.Len(),
		"services", table.Services(),
	)

	if opts.exportKnowledgeBase != "" {
		if err := knowledgebase.WriteFile(opts.exportKnowledgeBase, table); err != nil {
			return err
		}
		format, compression := knowledgebase.DetectFormat(opts.exportKnowledgeBase)
		logger.Info("knowledge base exported",
			"path", opts.exportKnowledgeBase,
			"format", format.String(),
			"compression", compression.String(),
		)
		return nil
	}

	recorder := metrics.Recorder(metrics.Noop{})
	if cfg.Metrics.Listen != "" {
		registry := prometheus.NewRegistry()
		prom, err := metrics.NewProm("policymaker", registry)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		recorder = prom
		stopMetrics, err := startMetricsServer(cfg.Metrics.Listen, registry, logger)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	listener, err := datagram.Listen(ctx, datagram.Config{
		Host:         cfg.Listen.Host,
		Port:         cfg.Listen.Port,
		SocketBuffer: cfg.Listen.ReceiveBuffer,
	})
	if err != nil {
		return err
	}
	defer listener.Close()

	controller, err := monitor.New(monitor.Config{
		Source:         listener,
		Resolver:       resolve.New(table),
		Sid:            cfg.Output.Sid,
		ReceiveTimeout: cfg.Listen.ReceiveTimeout,
		ShutdownPoll:   cfg.Listen.ShutdownPoll,
		Metrics:        recorder,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	logger.Info("listening for CSM traffic",
		"address", listener.LocalAddr().String(),
		"version", version.Info(),
	)

	document, runErr := controller.Run(ctx)
	listener.Close()

	stats := controller.Stats()
	if runErr != nil {
		logger.Error("receive loop failed, writing partial policy", "error", runErr, "stats", stats)
	} else {
		logger.Info("session finished", "stats", stats)
	}

	if err := writePolicy(document, cfg.Output, stdout); err != nil {
		return errors.Join(runErr, err)
	}
	if cfg.Output.File != "" {
		logger.Info("policy written", "path", cfg.Output.File, "statements", len(document.Statement))
	}
	return runErr
}

// loadConfig layers the config file, environment, and flags, then
// validates the result.
func loadConfig(opts *options, lookup func(string) (string, bool)) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path, _ = lookup(config.ConfigEnvironmentVariable)
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnvironment(lookup); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadKnowledgeBase(path string) (*knowledgebase.Table, error) {
	if path == "" {
		return knowledgebase.LoadEmbedded()
	}
	return knowledgebase.LoadFile(path)
}

func knowledgeBaseSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// newLogger builds the stderr logger. "auto" picks text for a terminal
// and JSON otherwise.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	options := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	useText := cfg.Format == "text" || (cfg.Format == "auto" && isTerminal(w))
	if useText {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
