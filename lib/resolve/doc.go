// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve maps decoded CSM observations to the IAM actions they
// require.
//
// A [Resolver] wraps a [knowledgebase.Table] supplied by the caller.
// Lookups use the observation's normalized service identifier and its
// verbatim API method name. Unmapped calls resolve to no actions; that
// is the normal outcome for internal retries and telemetry-only calls,
// not an error.
package resolve
