// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that reads the time or waits on a timer accepts a [Clock]
// instead of calling time.Now or time.After directly. Production code
// passes [Real]; tests pass [Fake] and move time forward explicitly
// with [FakeClock.Advance].
//
// Socket read deadlines are the exception: the kernel enforces them
// against the wall clock, so the datagram listener uses the time
// package directly.
package clock
