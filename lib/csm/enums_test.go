// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package csm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestServiceTableIsComplete(t *testing.T) {
	seenWire := make(map[string]Service)
	seenIdentifier := make(map[string]Service)
	for service := ServiceOther; service < serviceCount; service++ {
		info := services[service]
		if info.wire == "" || info.identifier == "" {
			t.Fatalf("service %d has no table entry", service)
		}
		if info.identifier != strings.ToLower(info.identifier) {
			t.Errorf("identifier %q for %s is not lower case", info.identifier, info.wire)
		}
		if previous, ok := seenWire[info.wire]; ok {
			t.Errorf("wire name %q used by %d and %d", info.wire, previous, service)
		}
		if previous, ok := seenIdentifier[info.identifier]; ok {
			t.Errorf("identifier %q used by %d and %d", info.identifier, previous, service)
		}
		seenWire[info.wire] = service
		seenIdentifier[info.identifier] = service
	}
}

func TestParseServiceRoundTrip(t *testing.T) {
	for service := ServiceOther + 1; service < serviceCount; service++ {
		if got := ParseService(service.String()); got != service {
			t.Errorf("ParseService(%q) = %d, want %d", service.String(), got, service)
		}
	}
	if ParseService("Other") != ServiceOther {
		t.Error("the literal wire value \"Other\" should map to the fallback")
	}
	if Service(250).String() != "Other" || Service(250).Identifier() != "other" {
		t.Error("out-of-range Service should render as the fallback")
	}
}

func TestParseRegion(t *testing.T) {
	for _, code := range []string{"us-west-1", "us-west-2", "us-east-1", "eu-central-1"} {
		region := ParseRegion(code)
		if region == RegionUnknown {
			t.Errorf("ParseRegion(%q) = Unknown", code)
		}
		if region.String() != code {
			t.Errorf("ParseRegion(%q).String() = %q", code, region.String())
		}
	}
	if ParseRegion("US-EAST-1") != RegionUnknown {
		t.Error("region codes are lower case on the wire")
	}
	if RegionUnknown.String() != "Unknown" {
		t.Errorf("RegionUnknown.String() = %q", RegionUnknown.String())
	}
}

func TestParseCallType(t *testing.T) {
	tests := map[string]CallType{
		"ApiCall":        CallTypeAPICall,
		"ApiCallAttempt": CallTypeAPICallAttempt,
		"ApiCallWrong":   CallTypeOther,
		"apicall":        CallTypeOther,
		"":               CallTypeOther,
	}
	for wire, want := range tests {
		if got := ParseCallType(wire); got != want {
			t.Errorf("ParseCallType(%q) = %v, want %v", wire, got, want)
		}
	}
}

func TestEnumerationsMarshalToWireNames(t *testing.T) {
	observation := struct {
		Service  Service
		Region   Region
		CallType CallType
	}{ServiceSecretsManager, ParseRegion("ap-south-1"), CallTypeAPICallAttempt}

	data, err := json.Marshal(observation)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"Service":"Secrets Manager","Region":"ap-south-1","CallType":"ApiCallAttempt"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}
