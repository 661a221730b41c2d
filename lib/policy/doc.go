// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy accumulates observed IAM actions and synthesizes a
// least-privilege IAM policy document from them.
//
// An [Aggregator] is a fold over observations: [Aggregator.Add] unions
// a service's resolved actions into that service's running set, and
// [Aggregator.Build] renders the current state as a [Document] with one
// Allow statement per service, every statement scoped to "*".
//
//	aggregator := policy.NewAggregator()
//	aggregator.Add("s3", []string{"s3:ListBucket"})
//	aggregator.Add("s3", []string{"s3:GetObject", "s3:ListBucket"})
//	document := aggregator.Build()
//	// {"Version":"2012-10-17","Sid":null,"Statement":[
//	//   {"Effect":"Allow","Action":["s3:GetObject","s3:ListBucket"],"Resource":["*"]}]}
//
// Aggregator is not safe for concurrent use: a single receive loop owns
// it.
package policy
