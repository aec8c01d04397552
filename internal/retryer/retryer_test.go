// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package retryer

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestIMDSRetryer(t *testing.T) {
	testCases := map[string]struct {
		retries      int
		wantAttempts int
	}{
		"WithZero":     {retries: 0, wantAttempts: 1},
		"WithRetries":  {retries: 4, wantAttempts: 5},
		"WithNegative": {retries: -2, wantAttempts: 1},
	}
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			r := NewIMDSRetryer(testCase.retries)
			assert.Equal(t, testCase.wantAttempts, r.MaxAttempts())
		})
	}

	r := NewIMDSRetryer(1)
	responseErr := &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
		Err:      errors.New("not found"),
	}
	assert.True(t, r.IsErrorRetryable(responseErr))
	assert.False(t, r.IsErrorRetryable(errors.New("not retryable")))
}

func TestLogThrottleRetryerLogging(t *testing.T) {
	const throttleDetectedLine = "AWS API call throttling detected, further throttling messages may be suppressed"
	const throttledLine = "AWS API call throttled"
	const summaryLine = "AWS API call has been throttled"
	const exitLine = "LogThrottleRetryer watch throttle events goroutine exiting"

	setup()
	defer tearDown()

	core, logs := observer.New(zapcore.DebugLevel)
	r := NewLogThrottleRetryer(zap.New(core))

	throttleErr := &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"}
	for i := 0; i < 5; i++ {
		assert.True(t, r.IsErrorRetryable(throttleErr))
	}
	assert.False(t, r.IsErrorRetryable(errors.New("boom")))

	require.Eventually(t, func() bool {
		return logs.FilterMessage(summaryLine).Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	r.Stop()
	r.Stop()
	require.Eventually(t, func() bool {
		return logs.FilterMessage(exitLine).Len() == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, logs.FilterMessage(throttleDetectedLine).Len())
	assert.Equal(t, 4, logs.FilterMessage(throttledLine).Len())
	summary := logs.FilterMessage(summaryLine).All()[0]
	assert.EqualValues(t, 5, summary.ContextMap()["count"])

	// A throttle after stop must not block.
	assert.True(t, r.IsErrorRetryable(throttleErr))
}

func setup() {
	throttleReportTimeout = 200 * time.Millisecond
	throttleReportCheckPeriod = 20 * time.Millisecond
}

func tearDown() {
	throttleReportTimeout = 1 * time.Minute
	throttleReportCheckPeriod = 5 * time.Second
}
