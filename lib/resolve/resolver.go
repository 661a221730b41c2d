// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"github.com/peterhriser/PolicyMaker/lib/csm"
	"github.com/peterhriser/PolicyMaker/lib/knowledgebase"
)

// Resolver looks observations up in a knowledge base. It holds no
// mutable state and may be shared.
type Resolver struct {
	table *knowledgebase.Table
}

// New returns a Resolver backed by table. The table must not be nil.
func New(table *knowledgebase.Table) *Resolver {
	if table == nil {
		panic("resolve: nil knowledge base")
	}
	return &Resolver{table: table}
}

// ServiceKey returns the normalized service identifier used both for
// knowledge-base lookup and for grouping actions into policy
// statements.
func ServiceKey(observation csm.Observation) string {
	return knowledgebase.NormalizeService(observation.Service.Identifier())
}

// Resolve returns every IAM action mapped to the observation, in
// knowledge-base order. An unmapped observation returns nil.
func (r *Resolver) Resolve(observation csm.Observation) []string {
	return r.table.Actions(ServiceKey(observation), observation.API)
}

// Table returns the knowledge base the resolver reads from.
func (r *Resolver) Table() *knowledgebase.Table {
	return r.table
}
