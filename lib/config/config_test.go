// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policymaker.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func environment(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Listen.Host != "0.0.0.0" || cfg.Listen.Port != 31000 {
		t.Errorf("expected listen 0.0.0.0:31000, got %s:%d", cfg.Listen.Host, cfg.Listen.Port)
	}
	if cfg.Listen.ReceiveTimeout != 100*time.Millisecond {
		t.Errorf("expected receive_timeout=100ms, got %v", cfg.Listen.ReceiveTimeout)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected output.format=json, got %s", cfg.Output.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
listen:
  host: 127.0.0.1
  port: 31001
  receive_timeout: 250ms
  shutdown_poll: 1s
knowledge_base: /etc/policymaker/mappings.cbor.zst
output:
  format: yaml
  sid: DeployRole
log:
  level: debug
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Listen.Host != "127.0.0.1" || cfg.Listen.Port != 31001 {
		t.Errorf("listen = %s:%d", cfg.Listen.Host, cfg.Listen.Port)
	}
	if cfg.Listen.ReceiveTimeout != 250*time.Millisecond {
		t.Errorf("receive_timeout = %v", cfg.Listen.ReceiveTimeout)
	}
	if cfg.Listen.ShutdownPoll != time.Second {
		t.Errorf("shutdown_poll = %v", cfg.Listen.ShutdownPoll)
	}
	if cfg.KnowledgeBase != "/etc/policymaker/mappings.cbor.zst" {
		t.Errorf("knowledge_base = %q", cfg.KnowledgeBase)
	}
	if cfg.Output.Format != "yaml" || cfg.Output.Sid != "DeployRole" {
		t.Errorf("output = %+v", cfg.Output)
	}
	// Omitted fields keep their defaults.
	if cfg.Output.Indent != "auto" {
		t.Errorf("expected output.indent default auto, got %q", cfg.Output.Indent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_Empty(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadFile() on empty file failed: %v", err)
	}
	if cfg.Listen.Port != 31000 {
		t.Errorf("expected defaults, got port %d", cfg.Listen.Port)
	}
}

func TestLoadFile_UnknownField(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "listen:\n  prot: 31001\n"))
	if err == nil {
		t.Fatal("expected error for misspelled field")
	}
	if !strings.Contains(err.Error(), "prot") {
		t.Errorf("error %q does not name the unknown field", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnvironment(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnvironment(environment(map[string]string{
		"HOST":                        "127.0.0.1",
		"PORT":                        "31005",
		"POLICYMAKER_RECEIVE_TIMEOUT": "50ms",
		"POLICYMAKER_OUTPUT_FORMAT":   "yaml",
		"POLICYMAKER_SID":             "FromEnv",
		"POLICYMAKER_METRICS_LISTEN":  "127.0.0.1:9464",
		"POLICYMAKER_KNOWLEDGE_BASE":  "${KB_DIR:-/opt/kb}/mappings.json",
	}))
	if err != nil {
		t.Fatalf("ApplyEnvironment: %v", err)
	}

	if cfg.Listen.Host != "127.0.0.1" || cfg.Listen.Port != 31005 {
		t.Errorf("listen = %s:%d", cfg.Listen.Host, cfg.Listen.Port)
	}
	if cfg.Listen.ReceiveTimeout != 50*time.Millisecond {
		t.Errorf("receive_timeout = %v", cfg.Listen.ReceiveTimeout)
	}
	if cfg.Output.Format != "yaml" || cfg.Output.Sid != "FromEnv" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9464" {
		t.Errorf("metrics.listen = %q", cfg.Metrics.Listen)
	}
	if cfg.KnowledgeBase != "/opt/kb/mappings.json" {
		t.Errorf("knowledge_base = %q, want default expansion", cfg.KnowledgeBase)
	}
}

func TestApplyEnvironment_EmptyValuesIgnored(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnvironment(environment(map[string]string{"HOST": "", "PORT": ""})); err != nil {
		t.Fatalf("ApplyEnvironment: %v", err)
	}
	if cfg.Listen.Host != "0.0.0.0" || cfg.Listen.Port != 31000 {
		t.Errorf("empty variables changed listen to %s:%d", cfg.Listen.Host, cfg.Listen.Port)
	}
}

func TestApplyEnvironment_InvalidValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnvironment(environment(map[string]string{
		"PORT":                        "thirty-one thousand",
		"POLICYMAKER_RECEIVE_TIMEOUT": "soon",
	}))
	if err == nil {
		t.Fatal("expected error for malformed values")
	}
	for _, want := range []string{"PORT", "POLICYMAKER_RECEIVE_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if cfg.Listen.Port != 31000 {
		t.Errorf("malformed PORT changed the port to %d", cfg.Listen.Port)
	}
}

func TestExpandVars(t *testing.T) {
	getenv := func(name string) string {
		return map[string]string{"HOME": "/home/ops"}[name]
	}
	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/policy.json", "/home/ops/policy.json"},
		{"${UNSET:-/tmp}/policy.json", "/tmp/policy.json"},
		{"${UNSET}/policy.json", "/policy.json"},
		{"plain/path.json", "plain/path.json"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, getenv); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		contains string
	}{
		{"empty host", func(c *Config) { c.Listen.Host = " " }, "listen.host"},
		{"port too large", func(c *Config) { c.Listen.Port = 70000 }, "listen.port"},
		{"negative buffer", func(c *Config) { c.Listen.ReceiveBuffer = -1 }, "receive_buffer"},
		{"zero timeout", func(c *Config) { c.Listen.ReceiveTimeout = 0 }, "receive_timeout"},
		{"long shutdown poll", func(c *Config) { c.Listen.ShutdownPoll = 5 * time.Second }, "shutdown_poll"},
		{"bad format", func(c *Config) { c.Output.Format = "toml" }, "output.format"},
		{"bad indent", func(c *Config) { c.Output.Indent = "sometimes" }, "output.indent"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"metrics without port", func(c *Config) { c.Metrics.Listen = "localhost" }, "metrics.listen"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), test.contains) {
				t.Errorf("error %q does not mention %q", err, test.contains)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Listen.Port = -1
	cfg.Output.Format = "toml"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if lines := strings.Count(err.Error(), "\n") + 1; lines != 2 {
		t.Errorf("expected 2 joined errors, got %d: %v", lines, err)
	}
}
