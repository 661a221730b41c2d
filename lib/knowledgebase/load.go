// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package knowledgebase

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/tidwall/jsonc"

	"github.com/peterhriser/PolicyMaker/lib/codec"
)

// embeddedPath is the snapshot compiled into the binary.
const embeddedPath = "data/iam_mappings.json"

//go:embed data/iam_mappings.json
var embeddedFS embed.FS

// Format is a knowledge-base serialization.
type Format int

const (
	// FormatJSON is JSON, optionally with JSONC comments and trailing
	// commas.
	FormatJSON Format = iota
	// FormatCBOR is deterministic CBOR.
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// Compression is the outer compression applied to a knowledge-base
// file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// DetectFormat infers the serialization and compression of a
// knowledge-base file from its name. Names without a recognized
// extension are treated as JSON.
func DetectFormat(path string) (Format, Compression) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	switch {
	case strings.HasSuffix(name, ".zst"):
		compression = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	case strings.HasSuffix(name, ".lz4"):
		compression = CompressionLZ4
		name = strings.TrimSuffix(name, ".lz4")
	}

	if strings.HasSuffix(name, ".cbor") {
		return FormatCBOR, compression
	}
	return FormatJSON, compression
}

// LoadEmbedded builds a fresh Table from the snapshot compiled into
// the binary.
func LoadEmbedded() (*Table, error) {
	data, err := embeddedFS.ReadFile(embeddedPath)
	if err != nil {
		return nil, fmt.Errorf("reading embedded knowledge base: %w", err)
	}
	table, err := Parse(data, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("embedded knowledge base: %w", err)
	}
	return table, nil
}

// LoadFile reads a knowledge-base file, choosing the decoder with
// [DetectFormat].
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	format, compression := DetectFormat(path)
	data, err = decompress(data, compression)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	table, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse decodes an uncompressed knowledge-base document and builds a
// Table from it.
func Parse(data []byte, format Format) (*Table, error) {
	var snapshot Snapshot
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &snapshot); err != nil {
			return nil, fmt.Errorf("parsing knowledge base JSON: %w", err)
		}
	case FormatCBOR:
		if !codec.Valid(data) {
			return nil, errors.New("knowledge base is not a single well-formed CBOR item")
		}
		if err := codec.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("parsing knowledge base CBOR: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported knowledge base format %s", format)
	}
	return NewTable(snapshot)
}

// WriteFile serializes a table to path, choosing the encoding with
// [DetectFormat]. JSON output is indented so that exported snapshots
// diff cleanly.
func WriteFile(path string, table *Table) error {
	format, compression := DetectFormat(path)

	var data []byte
	var err error
	switch format {
	case FormatCBOR:
		data, err = codec.Marshal(table.Snapshot())
	default:
		data, err = json.MarshalIndent(table.Snapshot(), "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding knowledge base as %s: %w", format, err)
	}

	data, err = compress(data, compression)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// zstdDecoderOptions bounds decoder memory. Knowledge bases are a few
// hundred kilobytes; a window beyond 64 MiB means a malformed file.
var zstdDecoderOptions = []zstd.DOption{
	zstd.WithDecoderConcurrency(1),
	zstd.WithDecoderMaxWindow(64 << 20),
}

func decompress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		decoder, err := zstd.NewReader(nil, zstdDecoderOptions...)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer decoder.Close()
		out, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return out, nil

	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
}

func compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(data, nil), nil

	case CompressionLZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buffer.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
}
