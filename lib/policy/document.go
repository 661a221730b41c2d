// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	// Version is the IAM policy language version written on every
	// document.
	Version = "2012-10-17"

	// EffectAllow is the only effect a synthesized statement carries.
	EffectAllow = "Allow"

	// Wildcard is the resource scope of every synthesized statement.
	Wildcard = "*"
)

// Statement is one permission grant.
type Statement struct {
	Effect   string   `json:"Effect" yaml:"Effect"`
	Action   []string `json:"Action" yaml:"Action"`
	Resource []string `json:"Resource" yaml:"Resource"`
}

// Document is a complete IAM policy. Sid is written as JSON null when
// unset.
type Document struct {
	Version   string      `json:"Version" yaml:"Version"`
	Sid       *string     `json:"Sid" yaml:"Sid,omitempty"`
	Statement []Statement `json:"Statement" yaml:"Statement"`
}

// Format selects the rendering of a Document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string selects JSON.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown policy format %q (want json or yaml)", name)
	}
}

// Encode writes the document to w. JSON output is a single line unless
// indent is set; YAML output is always block-style.
func (d *Document) Encode(w io.Writer, format Format, indent bool) error {
	switch format {
	case FormatJSON, "":
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		if indent {
			encoder.SetIndent("", "  ")
		}
		if err := encoder.Encode(d); err != nil {
			return fmt.Errorf("encoding policy as JSON: %w", err)
		}
		return nil

	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(d); err != nil {
			return fmt.Errorf("encoding policy as YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encoding policy as YAML: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown policy format %q", format)
	}
}

// Actions returns the total number of actions across all statements.
func (d *Document) Actions() int {
	total := 0
	for _, statement := range d.Statement {
		total += len(statement.Action)
	}
	return total
}
