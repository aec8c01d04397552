// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package cloudwatch

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/aws/amazon-cloudwatch-metric-output/internal/record"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/util"
)

// BuildDimensions drops dimensions with an empty value and keeps the first MaxDimensions in
// configured order. It returns the kept dimensions and the number dropped for the limit.
func BuildDimensions(dimensions []types.Dimension) ([]types.Dimension, int) {
	kept := make([]types.Dimension, 0, min(len(dimensions), MaxDimensions))
	dropped := 0
	for _, d := range dimensions {
		if aws.ToString(d.Name) == "" || aws.ToString(d.Value) == "" {
			continue
		}
		if len(kept) >= MaxDimensions {
			dropped++
			continue
		}
		kept = append(kept, d)
	}
	return kept, dropped
}

// recordDimensions looks up each dimension key in the record. A dimension without a key uses
// its static value.
func recordDimensions(configs []DimensionConfig, rec record.Record) []types.Dimension {
	dimensions := make([]types.Dimension, 0, len(configs))
	for _, c := range configs {
		var value string
		switch {
		case c.Key != nil:
			value = util.ToString(rec[*c.Key])
		case c.Value != nil:
			value = *c.Value
		}
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(c.Name),
			Value: aws.String(value),
		})
	}
	return dimensions
}

// staticDimensions uses only the static values.
func staticDimensions(configs []DimensionConfig) []types.Dimension {
	dimensions := make([]types.Dimension, 0, len(configs))
	for _, c := range configs {
		dimensions = append(dimensions, types.Dimension{
			Name:  aws.String(c.Name),
			Value: aws.String(aws.ToString(c.Value)),
		})
	}
	return dimensions
}
