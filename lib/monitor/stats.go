// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"log/slog"
	"time"
)

// Stats summarizes a session.
type Stats struct {
	StartedAt    time.Time
	StoppedAt    time.Time
	LastRecordAt time.Time

	// Received counts datagrams read; Decoded + Dropped == Received.
	Received uint64
	Decoded  uint64
	Dropped  uint64

	// Resolved counts decoded calls with at least one mapped action;
	// Resolved + Unmapped == Decoded.
	Resolved uint64
	Unmapped uint64

	// Services and Actions describe the aggregated policy.
	Services int
	Actions  int
}

// Duration is the session length, or zero while the session is still
// running.
func (s Stats) Duration() time.Duration {
	if s.StoppedAt.IsZero() {
		return 0
	}
	return s.StoppedAt.Sub(s.StartedAt)
}

// LogValue renders the summary for the shutdown log line.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("duration", s.Duration()),
		slog.Uint64("received", s.Received),
		slog.Uint64("decoded", s.Decoded),
		slog.Uint64("dropped", s.Dropped),
		slog.Uint64("resolved", s.Resolved),
		slog.Uint64("unmapped", s.Unmapped),
		slog.Int("services", s.Services),
		slog.Int("actions", s.Actions),
	)
}
