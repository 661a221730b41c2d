// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor drives a policy-building session.
//
// A [Controller] owns the receive loop: it reads one datagram from a
// [Source], decodes it into a CSM observation, resolves the IAM actions
// the call required, and folds them into a policy aggregator. Between
// iterations it checks the context for a shutdown request. When the
// context is cancelled the controller builds the policy document once
// and returns it.
//
// The lifecycle is:
//
//	Running ──ctx cancelled──▶ ShuttingDown ──Build──▶ Terminated (document, nil)
//	Running ──transport error──▶ Terminated (partial document, *TransportError)
//
// Receive timeouts are the normal idle case and never end the session.
// Records that fail to decode are logged and dropped. Calls with no
// knowledge-base mapping contribute nothing.
//
// Everything happens on the goroutine that calls [Controller.Run]. The
// only cross-goroutine input is context cancellation, which the signal
// handler in main triggers. Shutdown latency is bounded by
// ReceiveTimeout plus ShutdownPoll.
package monitor
