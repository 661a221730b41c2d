// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// policymaker builds a least-privilege IAM policy from AWS SDK
// client-side monitoring (CSM) traffic.
//
// Point an SDK at the monitor with AWS_CSM_ENABLED=true and
// AWS_CSM_PORT=31000, exercise the application, then stop the monitor
// with SIGINT or SIGTERM. On shutdown it writes one policy document
// granting exactly the actions the observed calls required:
//
//	{"Version":"2012-10-17","Sid":null,"Statement":[{"Effect":"Allow","Action":["s3:GetObject","s3:ListBucket"],"Resource":["*"]}]}
//
// The document goes to stdout unless --output-file is given. Logs go to
// stderr, so the two can be redirected separately.
//
// API calls are mapped to IAM actions through a knowledge base compiled
// into the binary. --knowledge-base replaces it with a JSON, JSONC, or
// CBOR file (optionally .zst or .lz4 compressed), and
// --export-knowledge-base writes the active knowledge base out in any of
// those formats and exits.
//
// If the UDP socket fails mid-session the monitor still writes the
// policy gathered so far and then exits with status 1.
package main
