// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package retryer

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// DefaultMetadataRetries is used when the instance profile section does not set retries.
const DefaultMetadataRetries = 1

type IMDSRetryer struct {
	// Embed the standard retryer for default behavior
	*retry.Standard
}

var _ aws.RetryerV2 = (*IMDSRetryer)(nil)

// NewIMDSRetryer allows us to retry instance metadata and container credential endpoint errors.
// The retries do not include the first attempt.
func NewIMDSRetryer(retries int) *IMDSRetryer {
	if retries < 0 {
		retries = 0
	}
	return &IMDSRetryer{
		Standard: retry.NewStandard(func(options *retry.StandardOptions) {
			options.MaxAttempts = retries + 1 // MaxAttempts include the first attempt
		}),
	}
}

func (r *IMDSRetryer) IsErrorRetryable(err error) bool {
	// SDKv2 returns a ResponseError on request failure. Any of those errors is considered retryable.
	// https://github.com/aws/aws-sdk-go-v2/blob/dcbed91b6c6235022f15eda6ea526dbb91e1cb81/feature/ec2/imds/request_middleware.go#L185-L191
	var responseErr *smithyhttp.ResponseError
	return errors.As(err, &responseErr) || r.Standard.IsErrorRetryable(err)
}
