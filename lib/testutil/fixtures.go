// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"net"
	"net/netip"
	"testing"

	"github.com/peterhriser/PolicyMaker/lib/knowledgebase"
)

// KnowledgeBase builds a Table from "Service.Method" keys to action
// lists, in the order given.
//
//	table := testutil.KnowledgeBase(t, map[string][]string{
//	    "S3.ListObjectsV2": {"s3:ListBucket"},
//	})
func KnowledgeBase(t testing.TB, mappings map[string][]string) *knowledgebase.Table {
	t.Helper()
	snapshot := knowledgebase.Snapshot{
		Version:  "fixture",
		Mappings: make(map[string][]knowledgebase.Entry, len(mappings)),
	}
	for key, actions := range mappings {
		entries := make([]knowledgebase.Entry, len(actions))
		for i, action := range actions {
			entries[i] = knowledgebase.Entry{Action: action}
		}
		snapshot.Mappings[key] = entries
	}
	table, err := knowledgebase.NewTable(snapshot)
	if err != nil {
		t.Fatalf("building fixture knowledge base: %v", err)
	}
	return table
}

// SendDatagrams writes each payload as one UDP datagram to address
// from a fresh loopback socket.
func SendDatagrams(t testing.TB, address netip.AddrPort, payloads ...string) {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, net.UDPAddrFromAddrPort(address))
	if err != nil {
		t.Fatalf("dialing %s: %v", address, err)
	}
	defer conn.Close()
	for _, payload := range payloads {
		if _, err := conn.Write([]byte(payload)); err != nil {
			t.Fatalf("sending datagram to %s: %v", address, err)
		}
	}
}
