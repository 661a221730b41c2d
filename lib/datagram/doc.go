// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package datagram is the UDP transport CSM records arrive on.
//
// A [Listener] binds one UDP socket and hands out one datagram per
// [Listener.Receive] call, bounded by a timeout so the caller can check
// for shutdown between receives even when no traffic arrives. A
// timeout is reported as an error satisfying [IsTimeout]; every other
// error means the socket is unusable.
//
// The receive buffer is [MaxDatagramSize] bytes. A larger datagram is
// truncated by the kernel, and the truncated payload is returned as-is;
// in practice it then fails JSON decoding and is dropped.
package datagram
