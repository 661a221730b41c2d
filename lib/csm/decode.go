// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package csm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Observation is one decoded CSM record: the API method called, the
// service it belongs to, the region it was sent to, and whether it is
// a whole call or a single attempt.
type Observation struct {
	API      string
	Service  Service
	Region   Region
	CallType CallType
}

// LogValue renders the observation as a slog group so decoded records
// can be logged as a single attribute.
func (o Observation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api", o.API),
		slog.String("service", o.Service.String()),
		slog.String("region", o.Region.String()),
		slog.String("type", o.CallType.String()),
	)
}

// wireRecord is the subset of the CSM record schema that Decode reads.
// encoding/json matches field names case-insensitively, so "Api",
// "api", and "API" all land in API. Fields not listed here are
// ignored.
type wireRecord struct {
	API      *string  `json:"Api"`
	Service  Service  `json:"Service"`
	Region   Region   `json:"Region"`
	CallType CallType `json:"Type"`
}

var (
	// ErrEmptyRecord is returned for a datagram that is empty after
	// whitespace trimming.
	ErrEmptyRecord = errors.New("empty record")

	// ErrMissingAPI is returned when the record has no Api field, a
	// null Api, or an empty Api string.
	ErrMissingAPI = errors.New("record has no Api field")
)

// DecodeError reports a record that could not be decoded. Payload is
// the record text after lossy UTF-8 conversion and trimming, suitable
// for logging.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding CSM record: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses one raw datagram into an Observation.
//
// Invalid UTF-8 is replaced with U+FFFD rather than rejected, and
// surrounding whitespace is trimmed. Unknown or missing Service,
// Region, and Type values decode to their fallback variants. The
// record must be a JSON object with a non-empty string Api; anything
// else returns a [*DecodeError].
func Decode(raw []byte) (Observation, error) {
	text := string(raw)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Observation{}, &DecodeError{Payload: text, Err: ErrEmptyRecord}
	}

	var record wireRecord
	if err := json.Unmarshal([]byte(text), &record); err != nil {
		return Observation{}, &DecodeError{Payload: text, Err: err}
	}
	if record.API == nil || *record.API == "" {
		return Observation{}, &DecodeError{Payload: text, Err: ErrMissingAPI}
	}

	return Observation{
		API:      *record.API,
		Service:  record.Service,
		Region:   record.Region,
		CallType: record.CallType,
	}, nil
}
