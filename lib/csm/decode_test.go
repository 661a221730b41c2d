// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package csm

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_ApiCall(t *testing.T) {
	raw := []byte(`{"Version":1,"ClientId":"","Type":"ApiCall","Service":"S3","Api":"ListObjectsV2",` +
		`"Timestamp":1700000000000,"AttemptCount":1,"Region":"us-east-1","UserAgent":"aws-sdk-go/1.44.0",` +
		`"FinalHttpStatusCode":200,"Latency":42,"MaxRetriesExceeded":0}`)

	observation, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Observation{
		API:      "ListObjectsV2",
		Service:  ServiceS3,
		Region:   ParseRegion("us-east-1"),
		CallType: CallTypeAPICall,
	}
	if observation != want {
		t.Errorf("Decode = %+v, want %+v", observation, want)
	}
	if observation.Region.String() != "us-east-1" {
		t.Errorf("Region = %q, want us-east-1", observation.Region)
	}
}

func TestDecode_ApiCallAttempt(t *testing.T) {
	raw := []byte(`{"Type":"ApiCallAttempt","Service":"DynamoDB","Api":"GetItem","Region":"eu-west-1",` +
		`"Fqdn":"dynamodb.eu-west-1.amazonaws.com","HttpStatusCode":200,"AttemptLatency":12}`)

	observation, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if observation.CallType != CallTypeAPICallAttempt {
		t.Errorf("CallType = %v, want ApiCallAttempt", observation.CallType)
	}
	if observation.Service != ServiceDynamoDB {
		t.Errorf("Service = %v, want DynamoDB", observation.Service)
	}
	if observation.Service.Identifier() != "dynamodb" {
		t.Errorf("Identifier = %q, want dynamodb", observation.Service.Identifier())
	}
}

func TestDecode_UnknownValuesFallBack(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		service  Service
		region   Region
		callType CallType
	}{
		{
			name:     "unknown service and type",
			raw:      `{"Api":"ListObjectsV2","Service":"S4","Region":"us-east-1","Type":"ApiCallWrong"}`,
			service:  ServiceOther,
			region:   ParseRegion("us-east-1"),
			callType: CallTypeOther,
		},
		{
			name:     "unknown region",
			raw:      `{"Api":"GetObject","Service":"S3","Region":"mars-north-1","Type":"ApiCall"}`,
			service:  ServiceS3,
			region:   RegionUnknown,
			callType: CallTypeAPICall,
		},
		{
			name:     "service is case sensitive",
			raw:      `{"Api":"GetObject","Service":"s3","Region":"us-east-1","Type":"ApiCall"}`,
			service:  ServiceOther,
			region:   ParseRegion("us-east-1"),
			callType: CallTypeAPICall,
		},
		{
			name:     "non-string enumerations",
			raw:      `{"Api":"GetObject","Service":7,"Region":null,"Type":{"nested":true}}`,
			service:  ServiceOther,
			region:   RegionUnknown,
			callType: CallTypeOther,
		},
		{
			name:     "missing enumerations",
			raw:      `{"Api":"GetCallerIdentity"}`,
			service:  ServiceOther,
			region:   RegionUnknown,
			callType: CallTypeOther,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			observation, err := Decode([]byte(test.raw))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if observation.Service != test.service {
				t.Errorf("Service = %v, want %v", observation.Service, test.service)
			}
			if observation.Region != test.region {
				t.Errorf("Region = %v, want %v", observation.Region, test.region)
			}
			if observation.CallType != test.callType {
				t.Errorf("CallType = %v, want %v", observation.CallType, test.callType)
			}
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "missing api", raw: `{"Service":"S3","Type":"ApiCall"}`, wantErr: ErrMissingAPI},
		{name: "null api", raw: `{"Api":null,"Service":"S3"}`, wantErr: ErrMissingAPI},
		{name: "empty api", raw: `{"Api":"","Service":"S3"}`, wantErr: ErrMissingAPI},
		{name: "numeric api", raw: `{"Api":12,"Service":"S3"}`},
		{name: "array api", raw: `{"Api":["GetObject"],"Service":"S3"}`},
		{name: "not an object", raw: `["Api","GetObject"]`},
		{name: "bare string", raw: `"GetObject"`},
		{name: "truncated", raw: `{"Api":"GetObject","Serv`},
		{name: "trailing garbage", raw: `{"Api":"GetObject"} trailing`},
		{name: "whitespace only", raw: " \n\t ", wantErr: ErrEmptyRecord},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode([]byte(test.raw))
			if err == nil {
				t.Fatal("expected decode failure, got nil")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("error %v is not a *DecodeError", err)
			}
			if decodeErr.Payload != strings.TrimSpace(test.raw) {
				t.Errorf("Payload = %q, want %q", decodeErr.Payload, strings.TrimSpace(test.raw))
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestDecode_TrimsWhitespace(t *testing.T) {
	observation, err := Decode([]byte("\n  {\"Api\":\"Publish\",\"Service\":\"SNS\"}  \r\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if observation.API != "Publish" || observation.Service != ServiceSNS {
		t.Errorf("Decode = %+v", observation)
	}
}

func TestDecode_InvalidUTF8IsReplaced(t *testing.T) {
	// 0xff is never valid UTF-8. Inside a string value it must be
	// replaced rather than failing the record.
	raw := append([]byte(`{"Api":"Get`), 0xff)
	raw = append(raw, []byte(`Object","Service":"S3"}`)...)

	observation, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if observation.API != "Get�Object" {
		t.Errorf("API = %q, want replacement character in place of invalid byte", observation.API)
	}
}

func TestDecode_InvalidUTF8InPayloadOfFailure(t *testing.T) {
	raw := []byte{'{', 0xfe, '}'}
	_, err := Decode(raw)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if decodeErr.Payload != "{�}" {
		t.Errorf("Payload = %q, want lossy conversion", decodeErr.Payload)
	}
}

func TestDecode_FieldNamesAreCaseInsensitive(t *testing.T) {
	observation, err := Decode([]byte(`{"api":"SendMessage","service":"SQS","region":"us-west-2","type":"ApiCall"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := Observation{
		API:      "SendMessage",
		Service:  ServiceSQS,
		Region:   ParseRegion("us-west-2"),
		CallType: CallTypeAPICall,
	}
	if observation != want {
		t.Errorf("Decode = %+v, want %+v", observation, want)
	}
}
