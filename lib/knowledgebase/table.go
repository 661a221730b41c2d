// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package knowledgebase

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Entry is one IAM action required by an API method.
type Entry struct {
	// Action is the canonical IAM action, e.g. "s3:ListBucket".
	Action string `json:"action"`

	// ResourceTemplate is an ARN template that would narrow the
	// action to specific resources. Reserved; not consumed.
	ResourceTemplate string `json:"resource_mapping,omitempty"`
}

// Snapshot is the serialized form of a knowledge base, shared by the
// JSON and CBOR encodings.
type Snapshot struct {
	Version  string             `json:"version"`
	Mappings map[string][]Entry `json:"sdk_method_iam_mappings"`
}

// Key identifies one API method: the normalized service identifier and
// the verbatim method name.
type Key struct {
	Service string
	Method  string
}

// String renders the key in "service.Method" form.
func (k Key) String() string {
	return k.Service + "." + k.Method
}

// NormalizeService returns the canonical form of a service identifier
// as used in table keys: lower case with surrounding whitespace
// removed.
func NormalizeService(service string) string {
	return strings.ToLower(strings.TrimSpace(service))
}

// ParseKey splits a "Service.Method" mapping key. The service half is
// normalized. Both halves must be non-empty.
func ParseKey(raw string) (Key, error) {
	service, method, found := strings.Cut(raw, ".")
	if !found {
		return Key{}, fmt.Errorf("mapping key %q is not of the form Service.Method", raw)
	}
	service = NormalizeService(service)
	if service == "" || method == "" {
		return Key{}, fmt.Errorf("mapping key %q has an empty service or method", raw)
	}
	return Key{Service: service, Method: method}, nil
}

// Table is an immutable knowledge base. It is safe for concurrent
// readers; no method mutates it after construction.
type Table struct {
	version     string
	fingerprint string
	entries     map[Key][]Entry
	services    int
}

// ErrEmptyKnowledgeBase is returned when a snapshot carries no
// mappings at all.
var ErrEmptyKnowledgeBase = errors.New("knowledge base has no mappings")

// NewTable validates a snapshot and builds a Table from it. The
// snapshot is copied; later changes to it do not affect the table.
//
// Every key must parse with [ParseKey] and every entry must name an
// action. Two keys that normalize to the same Key (for example
// "S3.GetObject" and "s3.GetObject") are rejected rather than merged,
// since the file would then be ambiguous about the action order.
func NewTable(snapshot Snapshot) (*Table, error) {
	if len(snapshot.Mappings) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}

	var errs []error
	entries := make(map[Key][]Entry, len(snapshot.Mappings))
	origins := make(map[Key]string, len(snapshot.Mappings))
	services := make(map[string]struct{})

	for raw, mapped := range snapshot.Mappings {
		key, err := ParseKey(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if previous, ok := origins[key]; ok {
			errs = append(errs, fmt.Errorf("mapping keys %q and %q both normalize to %s", previous, raw, key))
			continue
		}
		if len(mapped) == 0 {
			errs = append(errs, fmt.Errorf("mapping %q lists no actions", raw))
			continue
		}
		copied := make([]Entry, 0, len(mapped))
		for index, entry := range mapped {
			if strings.TrimSpace(entry.Action) == "" {
				errs = append(errs, fmt.Errorf("mapping %q entry %d has an empty action", raw, index))
				continue
			}
			copied = append(copied, entry)
		}
		origins[key] = raw
		entries[key] = copied
		services[key.Service] = struct{}{}
	}

	if len(errs) > 0 {
		sortErrors(errs)
		return nil, fmt.Errorf("invalid knowledge base: %w", errors.Join(errs...))
	}

	table := &Table{
		version:  snapshot.Version,
		entries:  entries,
		services: len(services),
	}
	table.fingerprint = table.computeFingerprint()
	return table, nil
}

// Actions returns the IAM actions mapped to the given service and
// method, in knowledge-base order. The service is normalized before
// lookup; the method is matched exactly. An unmapped method returns
// nil. The returned slice is a fresh copy.
func (t *Table) Actions(service, method string) []string {
	mapped, ok := t.entries[Key{Service: NormalizeService(service), Method: method}]
	if !ok {
		return nil
	}
	actions := make([]string, len(mapped))
	for i, entry := range mapped {
		actions[i] = entry.Action
	}
	return actions
}

// Entries returns a copy of the full entries (including resource
// templates) for a key, or nil when unmapped.
func (t *Table) Entries(key Key) []Entry {
	mapped, ok := t.entries[Key{Service: NormalizeService(key.Service), Method: key.Method}]
	if !ok {
		return nil
	}
	return append([]Entry(nil), mapped...)
}

// Len returns the number of mapped API methods.
func (t *Table) Len() int {
	return len(t.entries)
}

// Services returns the number of distinct services with at least one
// mapping.
func (t *Table) Services() int {
	return t.services
}

// Version returns the snapshot's declared version string.
func (t *Table) Version() string {
	return t.version
}

// Fingerprint returns a hex BLAKE3 digest of the table's canonical
// content. Two tables with the same version and mappings have the same
// fingerprint regardless of the file format they were loaded from.
func (t *Table) Fingerprint() string {
	return t.fingerprint
}

// Snapshot returns the table in serializable form. Keys are written in
// normalized "service.Method" form.
func (t *Table) Snapshot() Snapshot {
	mappings := make(map[string][]Entry, len(t.entries))
	for key, mapped := range t.entries {
		mappings[key.String()] = append([]Entry(nil), mapped...)
	}
	return Snapshot{Version: t.version, Mappings: mappings}
}

// computeFingerprint hashes the table in sorted key order. Fields are
// separated by bytes that cannot appear in the values (NUL between
// fields, newline between records) so distinct tables cannot collide
// by concatenation.
func (t *Table) computeFingerprint() string {
	keys := make([]Key, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Service != keys[j].Service {
			return keys[i].Service < keys[j].Service
		}
		return keys[i].Method < keys[j].Method
	})

	hasher := blake3.New()
	hasher.WriteString(t.version)
	hasher.WriteString("\n")
	for _, key := range keys {
		hasher.WriteString(key.String())
		for _, entry := range t.entries[key] {
			hasher.WriteString("\x00")
			hasher.WriteString(entry.Action)
			hasher.WriteString("\x00")
			hasher.WriteString(entry.ResourceTemplate)
		}
		hasher.WriteString("\n")
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// sortErrors orders validation errors by message so that error text is
// stable across runs despite map iteration order.
func sortErrors(errs []error) {
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Error() < errs[j].Error()
	})
}
