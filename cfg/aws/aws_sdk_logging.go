// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package aws

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go/logging"
	"go.uber.org/zap"
)

// Hard coded strings that match actual variable names in the AWS SDK.
// I don't expect these names to change, or their meaning to change.
// Update this map if/when AWS SDK adds more levels (unlikely).
var stringToLevelMap = map[string]aws.ClientLogMode{
	// AWS SDK v2 Levels
	"LogRequest":              aws.LogRequest,
	"LogResponse":             aws.LogResponse,
	"LogSigning":              aws.LogSigning,
	"LogRequestWithBody":      aws.LogRequestWithBody,
	"LogResponseWithBody":     aws.LogResponseWithBody,
	"LogRetries":              aws.LogRetries,
	"LogRequestEventMessage":  aws.LogRequestEventMessage,
	"LogResponseEventMessage": aws.LogResponseEventMessage,
	"LogDeprecatedUsage":      aws.LogDeprecatedUsage,
	// AWS SDK v1 Levels
	"LogDebug":                    aws.LogRequest | aws.LogResponse,
	"LogDebugWithSigning":         aws.LogRequest | aws.LogResponse | aws.LogSigning,
	"LogDebugWithHTTPBody":        aws.LogRequestWithBody | aws.LogResponseWithBody,
	"LogDebugWithRequestRetries":  aws.LogRequest | aws.LogResponse | aws.LogRetries,
	"LogDebugWithRequestErrors":   aws.LogRequest | aws.LogResponse, // no equivalent in AWS SDK v2
	"LogDebugWithEventStreamBody": aws.LogRequestEventMessage | aws.LogResponseEventMessage,
}
var sdkLogLevel aws.ClientLogMode

// SetSDKLogLevel sets the global log level which will be used in all AWS SDK calls.
// The levels are a bit field that is OR'd together.
// So the user can specify multiple levels and we OR them together.
// Example: AWS_SDK_LOG_LEVEL="LogDebugWithSigning | LogDebugWithRequestErrors".
// The value must contain the levels separated by "|" and optionally whitespace.
func SetSDKLogLevel(sdkLogLevelString string) {
	var temp aws.ClientLogMode

	levels := strings.Split(sdkLogLevelString, "|")
	for _, v := range levels {
		trimmed := strings.TrimSpace(v)
		// If v not in map, then OR with 0 is harmless.
		temp |= stringToLevelMap[trimmed]
	}

	sdkLogLevel = temp
}

// SDKLogLevel returns the single global value used by every AWS SDK client.
func SDKLogLevel() aws.ClientLogMode {
	return sdkLogLevel
}

// SDKLogger writes AWS SDK client logs to zap.
type SDKLogger struct {
	Logger *zap.Logger
}

var _ logging.Logger = (*SDKLogger)(nil)

func (l SDKLogger) Logf(classification logging.Classification, format string, args ...interface{}) {
	logger := l.Logger
	if logger == nil {
		logger = zap.L()
	}
	msg := fmt.Sprintf(format, args...)
	switch classification {
	case logging.Debug:
		logger.Debug(msg)
	case logging.Warn:
		logger.Warn(msg)
	default:
		logger.Info(msg)
	}
}
