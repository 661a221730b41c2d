// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

type recordingTB struct {
	failure string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.failure = fmt.Sprintf(format, args...)
	panic(r)
}

func captureFatal(fn func()) (failure string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			failure = recovered.(*recordingTB).failure
		}
	}()
	fn()
	return ""
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}

	recorder := &recordingTB{}
	failure := captureFatal(func() {
		RequireReceive(recorder, make(chan int), 10*time.Millisecond, "waiting for %s", "nothing")
	})
	if !strings.Contains(failure, "waiting for nothing") {
		t.Errorf("timeout failure = %q", failure)
	}

	closed := make(chan int)
	close(closed)
	failure = captureFatal(func() {
		RequireReceive(recorder, closed, time.Second)
	})
	if !strings.Contains(failure, "channel closed") {
		t.Errorf("closed-channel failure = %q", failure)
	}
}

func TestRequireClosed(t *testing.T) {
	done := make(chan struct{})
	close(done)
	RequireClosed(t, done, time.Second, "closed channel")

	failure := captureFatal(func() {
		RequireClosed(&recordingTB{}, make(chan struct{}), 10*time.Millisecond, "never closed")
	})
	if !strings.Contains(failure, "never closed") {
		t.Errorf("failure = %q", failure)
	}
}

func TestKnowledgeBase(t *testing.T) {
	table := KnowledgeBase(t, map[string][]string{
		"S3.CopyObject": {"s3:GetObject", "s3:PutObject"},
	})
	got := table.Actions("s3", "CopyObject")
	if len(got) != 2 || got[0] != "s3:GetObject" || got[1] != "s3:PutObject" {
		t.Errorf("Actions = %v", got)
	}
}
