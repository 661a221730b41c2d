// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for --version.
//
// [GitCommit], [GitDirty], [BuildTime], and [Version] can be injected
// with -ldflags -X:
//
//	go build -ldflags "-X github.com/peterhriser/PolicyMaker/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/policymaker
//
// When they are not injected, [Info] falls back to the VCS stamp the
// Go toolchain records in the binary (vcs.revision, vcs.modified,
// vcs.time), so `go install` builds still identify their commit.
package version
