// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/peterhriser/PolicyMaker/lib/clock"
	"github.com/peterhriser/PolicyMaker/lib/csm"
	"github.com/peterhriser/PolicyMaker/lib/datagram"
	"github.com/peterhriser/PolicyMaker/lib/metrics"
	"github.com/peterhriser/PolicyMaker/lib/policy"
	"github.com/peterhriser/PolicyMaker/lib/resolve"
)

const (
	// DefaultReceiveTimeout bounds each receive so the loop rechecks
	// for shutdown while idle.
	DefaultReceiveTimeout = 100 * time.Millisecond

	// MaxShutdownPoll caps the optional blocking wait on the shutdown
	// signal between iterations.
	MaxShutdownPoll = time.Second
)

// Source produces raw datagrams. *datagram.Listener is the production
// implementation. A Receive that times out must return an error for
// which datagram.IsTimeout is true.
type Source interface {
	Receive(timeout time.Duration) (datagram.Packet, error)
}

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateShuttingDown
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Config wires a Controller. Source and Resolver are required.
type Config struct {
	Source   Source
	Resolver *resolve.Resolver

	// Sid, when non-empty, is set on the built document.
	Sid string

	// ReceiveTimeout bounds each receive. Zero means
	// DefaultReceiveTimeout.
	ReceiveTimeout time.Duration

	// ShutdownPoll is how long to wait for a shutdown request after
	// each iteration. Zero checks without blocking. Values above
	// MaxShutdownPoll are rejected.
	ShutdownPoll time.Duration

	// Metrics defaults to metrics.Noop.
	Metrics metrics.Recorder

	// Clock defaults to clock.Real.
	Clock clock.Clock

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// TransportError is returned by Run when the source fails with
// anything other than a timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("receiving datagram: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrAlreadyRun is returned by a second call to Run.
var ErrAlreadyRun = errors.New("monitor: controller already run")

// Controller runs one session. It is not reusable: Run may be called
// once.
type Controller struct {
	source         Source
	resolver       *resolve.Resolver
	aggregator     *policy.Aggregator
	receiveTimeout time.Duration
	shutdownPoll   time.Duration
	metrics        metrics.Recorder
	clock          clock.Clock
	logger         *slog.Logger

	state State
	stats Stats
}

// New validates config and returns a Controller in the idle state.
func New(config Config) (*Controller, error) {
	if config.Source == nil {
		return nil, errors.New("monitor: Source is required")
	}
	if config.Resolver == nil {
		return nil, errors.New("monitor: Resolver is required")
	}
	if config.ReceiveTimeout < 0 {
		return nil, fmt.Errorf("monitor: negative ReceiveTimeout %v", config.ReceiveTimeout)
	}
	if config.ShutdownPoll < 0 || config.ShutdownPoll > MaxShutdownPoll {
		return nil, fmt.Errorf("monitor: ShutdownPoll %v outside [0, %v]", config.ShutdownPoll, MaxShutdownPoll)
	}

	controller := &Controller{
		source:         config.Source,
		resolver:       config.Resolver,
		aggregator:     policy.NewAggregator(),
		receiveTimeout: config.ReceiveTimeout,
		shutdownPoll:   config.ShutdownPoll,
		metrics:        config.Metrics,
		clock:          config.Clock,
		logger:         config.Logger,
	}
	if controller.receiveTimeout == 0 {
		controller.receiveTimeout = DefaultReceiveTimeout
	}
	if controller.metrics == nil {
		controller.metrics = metrics.Noop{}
	}
	if controller.clock == nil {
		controller.clock = clock.Real()
	}
	if controller.logger == nil {
		controller.logger = slog.Default()
	}
	if config.Sid != "" {
		controller.aggregator.SetSid(config.Sid)
	}
	return controller, nil
}

// Run executes the receive loop until ctx is cancelled or the source
// fails.
//
// On cancellation Run builds the policy document once and returns it
// with a nil error. On a non-timeout source error Run returns the
// document built from everything aggregated so far together with a
// *TransportError; the caller decides whether to emit it.
func (c *Controller) Run(ctx context.Context) (*policy.Document, error) {
	if c.state != StateIdle {
		return nil, ErrAlreadyRun
	}
	c.state = StateRunning
	c.stats.StartedAt = c.clock.Now()

	for {
		packet, err := c.source.Receive(c.receiveTimeout)
		switch {
		case err == nil:
			c.handle(packet)
		case datagram.IsTimeout(err):
		default:
			c.state = StateFailed
			c.stats.StoppedAt = c.clock.Now()
			return c.aggregator.Build(), &TransportError{Err: err}
		}

		if c.shutdownRequested(ctx) {
			break
		}
	}

	c.state = StateShuttingDown
	document := c.aggregator.Build()
	c.state = StateTerminated
	c.stats.StoppedAt = c.clock.Now()
	return document, nil
}

// shutdownRequested checks ctx, waiting at most shutdownPoll.
func (c *Controller) shutdownRequested(ctx context.Context) bool {
	if c.shutdownPoll <= 0 {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}
	select {
	case <-ctx.Done():
		return true
	case <-c.clock.After(c.shutdownPoll):
		return false
	}
}

// handle processes one datagram. Nothing here can end the session.
func (c *Controller) handle(packet datagram.Packet) {
	c.stats.Received++
	c.metrics.DatagramReceived()

	observation, err := csm.Decode(packet.Data)
	if err != nil {
		c.stats.Dropped++
		c.metrics.RecordDropped(dropReason(err))
		var decodeErr *csm.DecodeError
		payload := string(packet.Data)
		if errors.As(err, &decodeErr) {
			payload = decodeErr.Payload
		}
		c.logger.Error("dropping undecodable CSM record",
			"sender", packet.Sender.String(),
			"payload", payload,
			"error", err,
		)
		return
	}

	c.stats.Decoded++
	c.stats.LastRecordAt = c.clock.Now()
	c.logger.Debug("CSM record", "sender", packet.Sender.String(), "observation", observation)

	service := resolve.ServiceKey(observation)
	actions := c.resolver.Resolve(observation)
	if len(actions) == 0 {
		c.stats.Unmapped++
		c.metrics.MethodUnmapped(service)
		c.logger.Debug("no IAM mapping for call", "service", service, "api", observation.API)
		return
	}

	before := c.aggregator.Actions()
	c.aggregator.Add(service, actions)
	c.stats.Resolved++
	c.metrics.ActionsResolved(service, len(actions))
	if after := c.aggregator.Actions(); after != before {
		c.metrics.PolicyActions(after)
		c.logger.Debug("policy grew", "service", service, "actions", actions, "total_actions", after)
	}
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, csm.ErrEmptyRecord):
		return metrics.ReasonEmpty
	case errors.Is(err, csm.ErrMissingAPI):
		return metrics.ReasonMissing
	default:
		return metrics.ReasonDecode
	}
}

// State returns the lifecycle state. Call it from the goroutine that
// calls Run, or after Run returns.
func (c *Controller) State() State {
	return c.state
}

// Stats returns session counters. Like State, it must not race with
// Run.
func (c *Controller) Stats() Stats {
	stats := c.stats
	stats.Services = c.aggregator.Services()
	stats.Actions = c.aggregator.Actions()
	return stats
}
