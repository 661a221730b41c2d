// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package csm decodes AWS SDK client-side monitoring (CSM) records.
//
// An SDK with client-side monitoring enabled emits one JSON datagram per
// API call (and per attempt of that call) to a local UDP port. A record
// looks like:
//
//	{"Version":1,"ClientId":"","Type":"ApiCall","Service":"S3",
//	 "Api":"ListObjectsV2","Timestamp":1700000000000,"AttemptCount":1,
//	 "Region":"us-east-1","Latency":42,"FinalHttpStatusCode":200}
//
// [Decode] turns one such datagram into an [Observation]. Only four
// fields matter: Api, Service, Region, and Type. Everything else is
// accepted and discarded.
//
// # Forward compatibility
//
// SDKs add services, regions, and record types faster than this
// package is released. [Service], [Region], and [CallType] are closed
// enumerations, each with a zero-valued fallback ([ServiceOther],
// [RegionUnknown], [CallTypeOther]). A wire value the enumeration does
// not know decodes to the fallback instead of failing, so schema drift
// degrades resolution rather than dropping records.
//
// The Api field is the only hard requirement: a record without a
// non-empty string Api cannot be resolved to anything, and [Decode]
// reports it as a [*DecodeError].
package csm
