// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint error handler shared by
// binaries: the one place that writes raw text to stderr and exits,
// for failures that happen before or after the structured logger.
package process
