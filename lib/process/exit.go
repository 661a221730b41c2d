// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitError carries a specific exit status out of run(). Fatal exits
// with Code instead of 1. A nil Err exits silently.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Fatal writes "error: err" to stderr and exits. The exit status is 1
// unless err wraps an *ExitError.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err))
}

// report writes err to w and returns the exit status Fatal uses.
func report(w io.Writer, err error) int {
	code := 1
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Err == nil {
			return code
		}
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return code
}
