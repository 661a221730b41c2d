// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes monitor activity as Prometheus counters.
//
// The monitor reports through the [Recorder] interface. [Noop] discards
// everything and is the default when no metrics listener is configured;
// [Prom] registers counters on a caller-supplied registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons reported to [Recorder.RecordDropped].
const (
	ReasonEmpty   = "empty"
	ReasonDecode  = "decode"
	ReasonMissing = "missing_api"
)

// Recorder receives monitor events.
type Recorder interface {
	// DatagramReceived counts one datagram read from the socket.
	DatagramReceived()
	// RecordDropped counts a datagram that did not decode.
	RecordDropped(reason string)
	// ActionsResolved counts resolved actions for a service identifier.
	ActionsResolved(service string, count int)
	// MethodUnmapped counts a decoded call the knowledge base has no
	// mapping for.
	MethodUnmapped(service string)
	// PolicyActions sets the number of distinct actions accumulated so
	// far.
	PolicyActions(count int)
}

// Noop implements Recorder without recording anything.
type Noop struct{}

func (Noop) DatagramReceived()           {}
func (Noop) RecordDropped(string)        {}
func (Noop) ActionsResolved(string, int) {}
func (Noop) MethodUnmapped(string)       {}
func (Noop) PolicyActions(int)           {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	received prometheus.Counter
	dropped  *prometheus.CounterVec
	resolved *prometheus.CounterVec
	unmapped *prometheus.CounterVec
	actions  prometheus.Gauge
}

// NewProm creates the collectors under namespace and registers them
// with registerer. Registration fails if the names are already taken.
func NewProm(namespace string, registerer prometheus.Registerer) (*Prom, error) {
	p := &Prom{
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_received_total",
			Help:      "UDP datagrams read from the CSM socket",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Datagrams dropped because they did not decode, by reason",
		}, []string{"reason"}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_resolved_total",
			Help:      "IAM actions resolved from observed calls, by service",
		}, []string{"service"}),
		unmapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "methods_unmapped_total",
			Help:      "Observed calls with no knowledge-base mapping, by service",
		}, []string{"service"}),
		actions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "policy_actions",
			Help:      "Distinct IAM actions in the policy being built",
		}),
	}
	for _, collector := range []prometheus.Collector{p.received, p.dropped, p.resolved, p.unmapped, p.actions} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prom) DatagramReceived() {
	p.received.Inc()
}

func (p *Prom) RecordDropped(reason string) {
	p.dropped.WithLabelValues(reason).Inc()
}

func (p *Prom) ActionsResolved(service string, count int) {
	p.resolved.WithLabelValues(service).Add(float64(count))
}

func (p *Prom) MethodUnmapped(service string) {
	p.unmapped.WithLabelValues(service).Inc()
}

func (p *Prom) PolicyActions(count int) {
	p.actions.Set(float64(count))
}

// Handler returns an HTTP handler serving gatherer in the Prometheus
// exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
