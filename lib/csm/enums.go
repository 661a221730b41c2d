// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package csm

import (
	"encoding/json"
)

// Service identifies the AWS service an observed call was made
// against. The zero value is [ServiceOther].
type Service uint8

const (
	// ServiceOther is the fallback for any service identifier this
	// package does not recognize, including a missing or non-string
	// Service field.
	ServiceOther Service = iota
	ServiceACM
	ServiceAPIGateway
	ServiceAthena
	ServiceAutoScaling
	ServiceCloudFormation
	ServiceCloudFront
	ServiceCloudTrail
	ServiceCloudWatch
	ServiceCloudWatchLogs
	ServiceCodeBuild
	ServiceCognitoIdentityProvider
	ServiceDynamoDB
	ServiceEC2
	ServiceECR
	ServiceECS
	ServiceEFS
	ServiceEKS
	ServiceELBv2
	ServiceEventBridge
	ServiceFirehose
	ServiceGlue
	ServiceIAM
	ServiceKinesis
	ServiceKMS
	ServiceLambda
	ServiceRDS
	ServiceRoute53
	ServiceS3
	ServiceSecretsManager
	ServiceSES
	ServiceSFN
	ServiceSNS
	ServiceSQS
	ServiceSSM
	ServiceSTS

	serviceCount
)

// serviceInfo pairs the SDK service ID as it appears on the wire with
// the lower-case identifier used as the IAM action prefix and the
// knowledge-base key.
type serviceInfo struct {
	wire       string
	identifier string
}

// services is indexed by Service. Wire names are the SDK service IDs
// and are matched case-sensitively.
var services = [serviceCount]serviceInfo{
	ServiceOther:                   {"Other", "other"},
	ServiceACM:                     {"ACM", "acm"},
	ServiceAPIGateway:              {"API Gateway", "apigateway"},
	ServiceAthena:                  {"Athena", "athena"},
	ServiceAutoScaling:             {"Auto Scaling", "autoscaling"},
	ServiceCloudFormation:          {"CloudFormation", "cloudformation"},
	ServiceCloudFront:              {"CloudFront", "cloudfront"},
	ServiceCloudTrail:              {"CloudTrail", "cloudtrail"},
	ServiceCloudWatch:              {"CloudWatch", "cloudwatch"},
	ServiceCloudWatchLogs:          {"CloudWatch Logs", "logs"},
	ServiceCodeBuild:               {"CodeBuild", "codebuild"},
	ServiceCognitoIdentityProvider: {"Cognito Identity Provider", "cognito-idp"},
	ServiceDynamoDB:                {"DynamoDB", "dynamodb"},
	ServiceEC2:                     {"EC2", "ec2"},
	ServiceECR:                     {"ECR", "ecr"},
	ServiceECS:                     {"ECS", "ecs"},
	ServiceEFS:                     {"EFS", "elasticfilesystem"},
	ServiceEKS:                     {"EKS", "eks"},
	ServiceELBv2:                   {"Elastic Load Balancing v2", "elasticloadbalancing"},
	ServiceEventBridge:             {"EventBridge", "events"},
	ServiceFirehose:                {"Firehose", "firehose"},
	ServiceGlue:                    {"Glue", "glue"},
	ServiceIAM:                     {"IAM", "iam"},
	ServiceKinesis:                 {"Kinesis", "kinesis"},
	ServiceKMS:                     {"KMS", "kms"},
	ServiceLambda:                  {"Lambda", "lambda"},
	ServiceRDS:                     {"RDS", "rds"},
	ServiceRoute53:                 {"Route 53", "route53"},
	ServiceS3:                      {"S3", "s3"},
	ServiceSecretsManager:          {"Secrets Manager", "secretsmanager"},
	ServiceSES:                     {"SES", "ses"},
	ServiceSFN:                     {"SFN", "states"},
	ServiceSNS:                     {"SNS", "sns"},
	ServiceSQS:                     {"SQS", "sqs"},
	ServiceSSM:                     {"SSM", "ssm"},
	ServiceSTS:                     {"STS", "sts"},
}

var servicesByWire = func() map[string]Service {
	index := make(map[string]Service, len(services))
	for service := ServiceOther + 1; service < serviceCount; service++ {
		index[services[service].wire] = service
	}
	return index
}()

// ParseService maps an SDK service ID to a Service. Unknown IDs
// return [ServiceOther].
func ParseService(wire string) Service {
	return servicesByWire[wire]
}

// String returns the SDK service ID, or "Other" for the fallback.
func (s Service) String() string {
	if s >= serviceCount {
		return services[ServiceOther].wire
	}
	return services[s].wire
}

// Identifier returns the lower-case service identifier shared by IAM
// action prefixes and knowledge-base keys (for example "s3" or
// "dynamodb"). The fallback returns "other", which no knowledge-base
// entry uses.
func (s Service) Identifier() string {
	if s >= serviceCount {
		return services[ServiceOther].identifier
	}
	return services[s].identifier
}

// UnmarshalJSON accepts any JSON value. Strings are parsed with
// [ParseService]; anything else (numbers, null, objects) decodes to
// [ServiceOther].
func (s *Service) UnmarshalJSON(data []byte) error {
	*s = ParseService(tolerantString(data))
	return nil
}

// MarshalJSON encodes the SDK service ID.
func (s Service) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Region identifies the AWS region of an observed call. Resolution does
// not use it; it is carried for diagnostics. The zero value is
// [RegionUnknown].
type Region uint8

// RegionUnknown is the fallback for any region code this package does
// not recognize.
const RegionUnknown Region = 0

// regionCodes lists the recognized region codes. Region(i+1) is
// regionCodes[i].
var regionCodes = [...]string{
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
	"af-south-1",
	"ap-east-1",
	"ap-south-1",
	"ap-south-2",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-southeast-3",
	"ap-southeast-4",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-northeast-3",
	"ca-central-1",
	"ca-west-1",
	"cn-north-1",
	"cn-northwest-1",
	"eu-central-1",
	"eu-central-2",
	"eu-north-1",
	"eu-south-1",
	"eu-south-2",
	"eu-west-1",
	"eu-west-2",
	"eu-west-3",
	"il-central-1",
	"me-central-1",
	"me-south-1",
	"sa-east-1",
	"us-gov-east-1",
	"us-gov-west-1",
}

var regionsByCode = func() map[string]Region {
	index := make(map[string]Region, len(regionCodes))
	for i, code := range regionCodes {
		index[code] = Region(i + 1)
	}
	return index
}()

// ParseRegion maps a region code such as "us-west-2" to a Region.
// Unknown codes return [RegionUnknown].
func ParseRegion(code string) Region {
	return regionsByCode[code]
}

// String returns the region code, or "Unknown" for the fallback.
func (r Region) String() string {
	if r == RegionUnknown || int(r) > len(regionCodes) {
		return "Unknown"
	}
	return regionCodes[r-1]
}

// UnmarshalJSON accepts any JSON value; non-strings decode to
// [RegionUnknown].
func (r *Region) UnmarshalJSON(data []byte) error {
	*r = ParseRegion(tolerantString(data))
	return nil
}

// MarshalJSON encodes the region code.
func (r Region) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// CallType distinguishes a completed API call from a single attempt
// of it. The zero value is [CallTypeOther].
type CallType uint8

const (
	// CallTypeOther is the fallback for unrecognized record types.
	CallTypeOther CallType = iota
	// CallTypeAPICall is a logical API call ("ApiCall"), reported
	// once after all retries finish.
	CallTypeAPICall
	// CallTypeAPICallAttempt is one HTTP attempt ("ApiCallAttempt").
	CallTypeAPICallAttempt
)

// ParseCallType maps the wire Type field to a CallType.
func ParseCallType(wire string) CallType {
	switch wire {
	case "ApiCall":
		return CallTypeAPICall
	case "ApiCallAttempt":
		return CallTypeAPICallAttempt
	default:
		return CallTypeOther
	}
}

// String returns the wire name of the call type.
func (c CallType) String() string {
	switch c {
	case CallTypeAPICall:
		return "ApiCall"
	case CallTypeAPICallAttempt:
		return "ApiCallAttempt"
	default:
		return "Other"
	}
}

// UnmarshalJSON accepts any JSON value; non-strings decode to
// [CallTypeOther].
func (c *CallType) UnmarshalJSON(data []byte) error {
	*c = ParseCallType(tolerantString(data))
	return nil
}

// MarshalJSON encodes the wire name of the call type.
func (c CallType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// tolerantString returns the decoded string when data is a JSON
// string, and "" for every other JSON value.
func tolerantString(data []byte) string {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return ""
	}
	return value
}
