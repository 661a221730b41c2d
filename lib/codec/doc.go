// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides PolicyMaker's CBOR encoding configuration.
//
// PolicyMaker speaks JSON on every external interface: CSM records
// arrive as JSON datagrams and the synthesized policy is written as
// JSON (or YAML). CBOR is used for one thing only: compact binary
// knowledge-base snapshots, which load faster than the equivalent JSON
// document and compress well.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same knowledge base always produces identical snapshot bytes and an
// identical content fingerprint.
//
//	data, err := codec.Marshal(snapshot)
//	err = codec.Unmarshal(data, &snapshot)
//
// Snapshot types carry `json` struct tags only. fxamacker/cbor reads
// `json` tags when `cbor` tags are absent, so one tag set controls
// field naming for both formats.
package codec
