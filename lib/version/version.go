// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set manually for releases.
	Version = "0.1.0-dev"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// build is the resolved build identity.
type build struct {
	commit string
	dirty  bool
	time   string
}

func resolve() build {
	resolved := build{commit: GitCommit, dirty: GitDirty == "true", time: BuildTime}
	if resolved.commit != "unknown" {
		return resolved
	}
	info, ok := readBuildInfo()
	if !ok {
		return resolved
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			resolved.commit = setting.Value
			if len(resolved.commit) > 12 {
				resolved.commit = resolved.commit[:12]
			}
		case "vcs.modified":
			resolved.dirty = setting.Value == "true"
		case "vcs.time":
			if resolved.time == "unknown" {
				resolved.time = setting.Value
			}
		}
	}
	return resolved
}

// Info returns "0.1.0-dev (abc1234-dirty, 2026-...)" for --version.
func Info() string {
	resolved := resolve()
	dirty := ""
	if resolved.dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, resolved.commit, dirty, resolved.time)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
