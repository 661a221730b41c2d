// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package knowledgebase holds the static mapping from SDK API methods
// to the IAM actions they require.
//
// A knowledge base is a versioned document of the form:
//
//	{
//	  "version": "2026-09-01",
//	  "sdk_method_iam_mappings": {
//	    "S3.ListObjectsV2": [
//	      {"action": "s3:ListBucket", "resource_mapping": "arn:${Partition}:s3:::${Bucket}"}
//	    ],
//	    "S3.CopyObject": [
//	      {"action": "s3:GetObject"},
//	      {"action": "s3:PutObject"}
//	    ]
//	  }
//	}
//
// Keys are "Service.Method". The service half is case-normalized at
// load time (so "S3", "s3", and "DynamoDB"/"dynamodb" are the same
// service); the method half is kept verbatim. One method may require
// several actions, and their order is preserved.
//
// The resource_mapping template is parsed and retained on each [Entry]
// but nothing consumes it yet: synthesized policies scope every
// statement to "*".
//
// A [Table] is immutable once built. The process builds one at startup
// (from the embedded snapshot via [LoadEmbedded], or from an operator
// file via [LoadFile]) and hands it by reference to the resolver. No
// package-level table exists.
//
// # File formats
//
// [LoadFile] chooses a decoder from the file name:
//
//   - *.json, *.jsonc: JSON, with // and /* */ comments and trailing
//     commas allowed.
//   - *.cbor: the same document as deterministic CBOR (lib/codec).
//   - a trailing .zst or .lz4 suffix (e.g. mappings.cbor.zst) marks a
//     zstd- or lz4-frame-compressed file; the suffix is stripped and
//     the remaining name picks the decoder.
//
// [WriteFile] produces the same formats, which makes it easy to turn
// the embedded JSON into a compact CBOR snapshot and back.
package knowledgebase
