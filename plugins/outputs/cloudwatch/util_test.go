// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package cloudwatch

import (
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
)

func TestPayload(t *testing.T) {
	datum := types.MetricDatum{
		MetricName: aws.String("name"),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(1),
	}
	base := payload(&datum)
	assert.Equal(t, timestampSize+len("name")+metricNameOverheads+valueOverheads, base)

	datum.Dimensions = []types.Dimension{{Name: aws.String("host"), Value: aws.String("web1")}}
	datum.Unit = types.StandardUnitCount
	datum.StorageResolution = aws.Int32(60)
	assert.Equal(t, base+len("host")+len("web1")+dimensionOverheads+unitOverheads+storageResolutionOverheads, payload(&datum))

	stats := types.MetricDatum{
		MetricName:      aws.String("name"),
		Timestamp:       aws.Time(time.Now()),
		StatisticValues: &types.StatisticSet{},
	}
	assert.Equal(t, timestampSize+len("name")+metricNameOverheads+statisticsSize, payload(&stats))
}

func testDatums(n int, metricName string) []types.MetricDatum {
	datums := make([]types.MetricDatum, n)
	for i := range datums {
		datums[i] = types.MetricDatum{
			MetricName: aws.String(metricName),
			Timestamp:  aws.Time(time.Unix(int64(i), 0)),
			Value:      aws.Float64(float64(i)),
		}
	}
	return datums
}

func TestPartition(t *testing.T) {
	constSize := perRequestConstSize("ns")
	testCases := map[string]struct {
		datums    int
		max       int
		wantSizes []int
	}{
		"Empty":        {datums: 0, max: 1000, wantSizes: nil},
		"Single":       {datums: 1, max: 1000, wantSizes: []int{1}},
		"Exact":        {datums: 1000, max: 1000, wantSizes: []int{1000}},
		"Overflow":     {datums: 2500, max: 1000, wantSizes: []int{1000, 1000, 500}},
		"SmallBatches": {datums: 5, max: 2, wantSizes: []int{2, 2, 1}},
		"DefaultMax":   {datums: 1001, max: 0, wantSizes: []int{1000, 1}},
	}
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			batches := partition(testDatums(testCase.datums, "m"), testCase.max, constSize)
			var sizes []int
			total := 0
			for _, batch := range batches {
				sizes = append(sizes, len(batch))
				total += len(batch)
			}
			assert.Equal(t, testCase.wantSizes, sizes)
			assert.Equal(t, testCase.datums, total)
		})
	}
}

func TestPartitionBySize(t *testing.T) {
	// Each datum is a bit over 1KB so the payload limit closes batches before the count limit.
	datums := testDatums(2000, strings.Repeat("m", 1000))
	batches := partition(datums, 1000, perRequestConstSize("ns"))
	assert.Greater(t, len(batches), 2)
	total := 0
	for _, batch := range batches {
		size := perRequestConstSize("ns")
		for i := range batch {
			size += payload(&batch[i])
		}
		assert.Less(t, size, bottomLinePayloadSizeInBytesToPublish+payload(&batch[0]))
		total += len(batch)
	}
	assert.Equal(t, len(datums), total)
}
