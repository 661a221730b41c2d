// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/peterhriser/PolicyMaker/lib/config"
	"github.com/peterhriser/PolicyMaker/lib/policy"
)

// writePolicy emits document to the configured file, or to stdout.
// Files are written through a temporary sibling and renamed into place
// so a reader never sees a partial policy.
func writePolicy(document *policy.Document, cfg config.OutputConfig, stdout io.Writer) error {
	format, err := policy.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	if cfg.File == "" {
		if err := document.Encode(stdout, format, shouldIndent(cfg.Indent, stdout)); err != nil {
			return fmt.Errorf("writing policy to stdout: %w", err)
		}
		return nil
	}

	temporary, err := os.CreateTemp(filepath.Dir(cfg.File), "."+filepath.Base(cfg.File)+".*")
	if err != nil {
		return fmt.Errorf("creating policy file: %w", err)
	}
	defer os.Remove(temporary.Name())

	if err := document.Encode(temporary, format, cfg.Indent == "always"); err != nil {
		temporary.Close()
		return fmt.Errorf("writing policy to %s: %w", cfg.File, err)
	}
	if err := temporary.Chmod(0o644); err != nil {
		temporary.Close()
		return fmt.Errorf("writing policy to %s: %w", cfg.File, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing policy to %s: %w", cfg.File, err)
	}
	if err := os.Rename(temporary.Name(), cfg.File); err != nil {
		return fmt.Errorf("writing policy to %s: %w", cfg.File, err)
	}
	return nil
}

// shouldIndent resolves the indent setting. "auto" indents only for a
// terminal.
func shouldIndent(setting string, w io.Writer) bool {
	switch setting {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal(w)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
