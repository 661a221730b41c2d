// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"sort"
)

// Aggregator folds resolved actions into per-service action sets.
// The zero value is not usable; call [NewAggregator].
type Aggregator struct {
	// services maps a service identifier to the set of actions
	// observed for it. An entry exists only once at least one action
	// has been added for the service.
	services map[string]map[string]struct{}
	actions  int
	sid      *string
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{services: make(map[string]map[string]struct{})}
}

// SetSid sets the Sid written on built documents. An empty string
// clears it, and documents carry a null Sid.
func (a *Aggregator) SetSid(sid string) {
	if sid == "" {
		a.sid = nil
		return
	}
	a.sid = &sid
}

// Add unions actions into the service's action set, creating the
// service's entry on first use. Adding no actions is a no-op: a
// service with only unmapped calls never gets a statement. Empty
// action strings are ignored.
func (a *Aggregator) Add(service string, actions []string) {
	if len(actions) == 0 {
		return
	}
	set, ok := a.services[service]
	for _, action := range actions {
		if action == "" {
			continue
		}
		if !ok {
			set = make(map[string]struct{}, len(actions))
			a.services[service] = set
			ok = true
		}
		if _, present := set[action]; present {
			continue
		}
		set[action] = struct{}{}
		a.actions++
	}
}

// Services returns the number of services with at least one action.
func (a *Aggregator) Services() int {
	return len(a.services)
}

// Actions returns the number of distinct (service, action) pairs.
func (a *Aggregator) Actions() int {
	return a.actions
}

// Build renders the current state as a policy document with one
// statement per service. Statements are ordered by service identifier
// and actions within a statement are sorted, so calling Build twice
// without an intervening Add yields identical documents. Build does
// not modify the aggregator, and the returned document shares no
// memory with it.
func (a *Aggregator) Build() *Document {
	services := make([]string, 0, len(a.services))
	for service := range a.services {
		services = append(services, service)
	}
	sort.Strings(services)

	statements := make([]Statement, 0, len(services))
	for _, service := range services {
		set := a.services[service]
		actions := make([]string, 0, len(set))
		for action := range set {
			actions = append(actions, action)
		}
		sort.Strings(actions)
		statements = append(statements, Statement{
			Effect:   EffectAllow,
			Action:   actions,
			Resource: []string{Wildcard},
		})
	}

	document := &Document{
		Version:   Version,
		Statement: statements,
	}
	if a.sid != nil {
		sid := *a.sid
		document.Sid = &sid
	}
	return document
}
