// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package config holds the monitor's runtime configuration.
//
// Values come from three layers, each overriding the one before:
//
//  1. [Default]: listen on 0.0.0.0:31000, embedded knowledge base,
//     JSON to stdout, info-level logging, no metrics endpoint.
//  2. An optional YAML file, named by --config or POLICYMAKER_CONFIG,
//     read with [LoadFile].
//  3. Environment variables, applied with [Config.ApplyEnvironment]:
//     HOST and PORT (the names AWS SDK CSM tooling conventionally uses
//     alongside AWS_CSM_PORT) plus POLICYMAKER_* overrides.
//
// Command-line flags are applied last by the command itself. Call
// [Config.Validate] once every layer is in place.
//
// Path fields (knowledge_base, output.file) expand ${VAR} and
// ${VAR:-default} references against the environment.
package config
