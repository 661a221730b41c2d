// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-deadline
// pattern so individual tests never block forever on a channel. They
// are the only place tests use real wall-clock timeouts.
//
// [KnowledgeBase] builds a small fixture table from a
// "Service.Method" → actions map, and [SendDatagrams] writes CSM
// records to a UDP address over loopback.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
