// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnvironmentVariable names the config file when --config is not
// given.
const ConfigEnvironmentVariable = "POLICYMAKER_CONFIG"

// Config is the complete monitor configuration.
type Config struct {
	// Listen configures the CSM UDP socket.
	Listen ListenConfig `yaml:"listen"`

	// KnowledgeBase is a knowledge-base file that replaces the
	// embedded mappings. Empty uses the embedded snapshot.
	KnowledgeBase string `yaml:"knowledge_base"`

	// Output configures where and how the policy is written.
	Output OutputConfig `yaml:"output"`

	// Log configures diagnostic logging on stderr.
	Log LogConfig `yaml:"log"`

	// Metrics configures the optional Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// ListenConfig configures the UDP listener and the receive loop.
type ListenConfig struct {
	// Host is the bind address. Default: 0.0.0.0
	Host string `yaml:"host"`

	// Port is the UDP port. Default: 31000, the SDK CSM default.
	Port int `yaml:"port"`

	// ReceiveBuffer sets SO_RCVBUF in bytes. Zero keeps the kernel
	// default.
	ReceiveBuffer int `yaml:"receive_buffer"`

	// ReceiveTimeout bounds each receive. Default: 100ms
	ReceiveTimeout time.Duration `yaml:"receive_timeout"`

	// ShutdownPoll is how long to wait for a shutdown signal between
	// receives. Default: 0 (check without blocking). At most 1s.
	ShutdownPoll time.Duration `yaml:"shutdown_poll"`
}

// OutputConfig configures policy emission.
type OutputConfig struct {
	// File receives the policy. Empty writes to stdout.
	File string `yaml:"file"`

	// Format is "json" or "yaml". Default: json
	Format string `yaml:"format"`

	// Sid is set on the policy document when non-empty.
	Sid string `yaml:"sid"`

	// Indent is "auto" (indent when writing to a terminal), "always",
	// or "never". Default: auto
	Indent string `yaml:"indent"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Format is "auto" (text on a terminal, JSON otherwise), "text",
	// or "json". Default: auto
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is a TCP address such as "127.0.0.1:9464". Empty
	// disables the endpoint.
	Listen string `yaml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Host:           "0.0.0.0",
			Port:           31000,
			ReceiveTimeout: 100 * time.Millisecond,
		},
		Output: OutputConfig{
			Format: "json",
			Indent: "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// LoadFile reads a YAML file over the defaults. Fields the file omits
// keep their default values; unknown fields are an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables(os.Getenv)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ApplyEnvironment overrides fields from environment variables read
// through lookup (os.LookupEnv in production). Malformed numeric or
// duration values are errors rather than silently ignored.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) error {
	var errs []error

	if value, ok := lookup("HOST"); ok && value != "" {
		c.Listen.Host = value
	}
	if value, ok := lookup("PORT"); ok && value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT=%q is not a number", value))
		} else {
			c.Listen.Port = port
		}
	}
	if value, ok := lookup("POLICYMAKER_RECEIVE_TIMEOUT"); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("POLICYMAKER_RECEIVE_TIMEOUT: %w", err))
		} else {
			c.Listen.ReceiveTimeout = timeout
		}
	}

	overrides := []struct {
		name   string
		target *string
	}{
		{"POLICYMAKER_KNOWLEDGE_BASE", &c.KnowledgeBase},
		{"POLICYMAKER_OUTPUT_FILE", &c.Output.File},
		{"POLICYMAKER_OUTPUT_FORMAT", &c.Output.Format},
		{"POLICYMAKER_SID", &c.Output.Sid},
		{"POLICYMAKER_LOG_LEVEL", &c.Log.Level},
		{"POLICYMAKER_METRICS_LISTEN", &c.Metrics.Listen},
	}
	for _, variable := range overrides {
		if value, ok := lookup(variable.name); ok && value != "" {
			*variable.target = value
		}
	}

	c.expandVariables(func(name string) string {
		value, _ := lookup(name)
		return value
	})
	return errors.Join(errs...)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func (c *Config) expandVariables(getenv func(string) string) {
	c.KnowledgeBase = expandVars(c.KnowledgeBase, getenv)
	c.Output.File = expandVars(c.Output.File, getenv)
}

func expandVars(s string, getenv func(string) string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Listen.Host) == "" {
		errs = append(errs, errors.New("listen.host is required"))
	}
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		errs = append(errs, fmt.Errorf("listen.port %d is outside 0-65535", c.Listen.Port))
	}
	if c.Listen.ReceiveBuffer < 0 {
		errs = append(errs, fmt.Errorf("listen.receive_buffer must not be negative, got %d", c.Listen.ReceiveBuffer))
	}
	if c.Listen.ReceiveTimeout <= 0 {
		errs = append(errs, fmt.Errorf("listen.receive_timeout must be positive, got %v", c.Listen.ReceiveTimeout))
	}
	if c.Listen.ShutdownPoll < 0 || c.Listen.ShutdownPoll > time.Second {
		errs = append(errs, fmt.Errorf("listen.shutdown_poll must be between 0 and 1s, got %v", c.Listen.ShutdownPoll))
	}

	if !contains([]string{"json", "yaml"}, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: json, yaml (got %q)", c.Output.Format))
	}
	if !contains([]string{"auto", "always", "never"}, c.Output.Indent) {
		errs = append(errs, fmt.Errorf("output.indent must be one of: auto, always, never (got %q)", c.Output.Indent))
	}
	if !contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error (got %q)", c.Log.Level))
	}
	if !contains([]string{"auto", "text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: auto, text, json (got %q)", c.Log.Format))
	}
	if c.Metrics.Listen != "" && !strings.Contains(c.Metrics.Listen, ":") {
		errs = append(errs, fmt.Errorf("metrics.listen %q must be host:port", c.Metrics.Listen))
	}

	return errors.Join(errs...)
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
