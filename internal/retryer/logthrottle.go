// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package retryer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

var (
	throttleReportTimeout     = 1 * time.Minute
	throttleReportCheckPeriod = 5 * time.Second
)

// LogThrottleRetryer keeps the standard retry behavior and aggregates throttling errors into
// periodic log lines instead of logging every throttled call.
type LogThrottleRetryer struct {
	*retry.Standard

	logger    *zap.Logger
	throttles retry.IsErrorThrottles

	throttleChan chan throttleEvent
	done         chan struct{}
	stopOnce     sync.Once
}

var _ aws.RetryerV2 = (*LogThrottleRetryer)(nil)

type throttleEvent struct {
	Code string
	Err  error
}

func (te throttleEvent) String() string {
	return fmt.Sprintf("Code: %v, Error: %v", te.Code, te.Err)
}

func NewLogThrottleRetryer(logger *zap.Logger, optFns ...func(*retry.StandardOptions)) *LogThrottleRetryer {
	r := &LogThrottleRetryer{
		Standard:     retry.NewStandard(optFns...),
		logger:       logger,
		throttles:    retry.IsErrorThrottles(retry.DefaultThrottles),
		throttleChan: make(chan throttleEvent, 1),
		done:         make(chan struct{}),
	}

	go r.watchThrottleEvents()
	return r
}

func (r *LogThrottleRetryer) IsErrorRetryable(err error) bool {
	if r.throttles.IsErrorThrottle(err) == aws.TrueTernary {
		te := throttleEvent{Err: err}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			te.Code = apiErr.ErrorCode()
		}
		select {
		case r.throttleChan <- te:
		case <-r.done:
		}
	}

	// Fallback to SDK's built in retry rules
	return r.Standard.IsErrorRetryable(err)
}

func (r *LogThrottleRetryer) Stop() {
	if r != nil {
		r.stopOnce.Do(func() {
			close(r.done)
		})
	}
}

func (r *LogThrottleRetryer) watchThrottleEvents() {
	ticker := time.NewTicker(throttleReportCheckPeriod)
	defer ticker.Stop()

	var lastReportTime time.Time
	var te throttleEvent
	aggregatedCnt := 0
	for {
		select {
		case te = <-r.throttleChan:
			if time.Since(lastReportTime) >= throttleReportTimeout {
				r.logger.Info("AWS API call throttling detected, further throttling messages may be suppressed",
					zap.Duration("suppressFor", throttleReportTimeout), zap.Stringer("event", te))
				lastReportTime = time.Now()
			} else {
				r.logger.Debug("AWS API call throttled", zap.Stringer("event", te))
			}
			aggregatedCnt++
		case <-ticker.C:
			d := time.Since(lastReportTime)
			if d > throttleReportTimeout {
				if aggregatedCnt > 0 {
					r.logger.Info("AWS API call has been throttled",
						zap.Int("count", aggregatedCnt), zap.Duration("period", d), zap.Stringer("lastEvent", te))
					aggregatedCnt = 0
				}
				lastReportTime = time.Now()
			}
		case <-r.done:
			if aggregatedCnt > 0 {
				r.logger.Info("AWS API call has been throttled",
					zap.Int("count", aggregatedCnt), zap.Duration("period", time.Since(lastReportTime)), zap.Stringer("lastEvent", te))
			}
			r.logger.Debug("LogThrottleRetryer watch throttle events goroutine exiting")
			return
		}
	}
}
