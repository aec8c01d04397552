// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package cloudwatch

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	bottomLinePayloadSizeInBytesToPublish = 999000 // 1MB payload size. Leave 1kb for the last datum buffer.

	// Constant for estimate encoded metric size
	// Action=PutMetricData
	pmdActionSize = 20
	// &Version=2010-08-01
	versionSize = 19
	// &MetricData.member.100.StatisticValues.Maximum=1558.3086995967291&MetricData.member.100.StatisticValues.Minimum=1558.3086995967291&MetricData.member.100.StatisticValues.SampleCount=1000&MetricData.member.100.StatisticValues.Sum=1558.3086995967291
	statisticsSize = 246
	// &MetricData.member.100.Timestamp=2018-05-29T21%3A14%3A00Z
	timestampSize = 57

	overallConstPerRequestSize = pmdActionSize + versionSize
	// &Namespace=, this is per request
	namespaceOverheads = 11

	// &MetricData.member.100.Dimensions.member.1.Name= &MetricData.member.100.Dimensions.member.1.Value=
	dimensionOverheads = 48 + 49
	// &MetricData.member.100.MetricName=
	metricNameOverheads = 34
	// &MetricData.member.100.StorageResolution=1
	storageResolutionOverheads = 42
	// &MetricData.member.100.Value=1558.3086995967291
	valueOverheads = 47
	// &MetricData.member.1.Unit=Kilobytes/Second
	unitOverheads = 42
)

func perRequestConstSize(namespace string) int {
	return overallConstPerRequestSize + len(namespace) + namespaceOverheads
}

// payload estimates the encoded size of a datum in a PutMetricData request.
func payload(datum *types.MetricDatum) int {
	size := timestampSize

	for _, dimension := range datum.Dimensions {
		if dimension.Name != nil && dimension.Value != nil {
			size += len(*dimension.Name) + len(*dimension.Value) + dimensionOverheads
		}
	}

	if datum.MetricName != nil {
		// The metric name won't be nil, but it should fail in the validation instead of panic here.
		size += len(*datum.MetricName) + metricNameOverheads
	}

	if datum.StorageResolution != nil {
		size += storageResolutionOverheads
	}

	if datum.StatisticValues != nil {
		size += statisticsSize
	} else {
		size += valueOverheads
	}

	if datum.Unit != "" {
		size += unitOverheads
	}

	return size
}

// partition splits the datums into request sized batches. A batch is closed once it holds
// maxDatumsPerCall datums or its estimated size reaches the payload limit.
func partition(datums []types.MetricDatum, maxDatumsPerCall int, constSize int) [][]types.MetricDatum {
	if len(datums) == 0 {
		return nil
	}
	if maxDatumsPerCall <= 0 {
		maxDatumsPerCall = defaultMaxDatumsPerCall
	}
	var batches [][]types.MetricDatum
	start := 0
	size := constSize
	for i := range datums {
		size += payload(&datums[i])
		if i+1-start >= maxDatumsPerCall || size >= bottomLinePayloadSizeInBytesToPublish {
			batches = append(batches, datums[start:i+1:i+1])
			start = i + 1
			size = constSize
		}
	}
	if start < len(datums) {
		batches = append(batches, datums[start:len(datums):len(datums)])
	}
	return batches
}
