// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package cloudwatch

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aws/amazon-cloudwatch-metric-output/internal/record"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/util"
)

var (
	// ErrEmptyAggregationWindow is returned when statistic sets are enabled and the chunk is empty.
	ErrEmptyAggregationWindow = errors.New("no entries to aggregate")
	// ErrUnsupportedStatistic is returned when the aggregated sum of in range values leaves the
	// range PutMetricData accepts.
	ErrUnsupportedStatistic = errors.New("aggregated statistic outside the supported range")
)

const (
	coercionLogTick       = time.Second
	coercionLogFirst      = 5
	coercionLogThereafter = 100
)

// Builder converts chunks into metric datums. It keeps no state between calls and is safe for
// concurrent use.
type Builder struct {
	MetricName        string
	Unit              types.StandardUnit
	StorageResolution int32
	ValueKey          string
	Dimensions        []DimensionConfig
	UseStatisticSets  bool

	logger         *zap.Logger
	coercionLogger *zap.Logger
}

// NewBuilder copies the metric settings from the config. Only the coercion warnings are sampled
// so a malformed chunk cannot flood the log.
func NewBuilder(cfg *Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		MetricName:        cfg.MetricName,
		Unit:              ConvertUnit(cfg.Unit),
		StorageResolution: cfg.StorageResolution,
		ValueKey:          cfg.ValueKey,
		Dimensions:        cfg.Dimensions,
		UseStatisticSets:  cfg.UseStatisticSets,
		logger:            logger,
		coercionLogger: logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, coercionLogTick, coercionLogFirst, coercionLogThereafter)
		})),
	}
}

// Build returns one datum per entry, or a single statistic set datum for the whole chunk when
// UseStatisticSets is enabled. Values that cannot be coerced are reported as 0.
func (b *Builder) Build(chunk record.Chunk) ([]types.MetricDatum, error) {
	if b.UseStatisticSets {
		datum, err := b.aggregate(chunk)
		if err != nil {
			return nil, err
		}
		return []types.MetricDatum{datum}, nil
	}
	datums := make([]types.MetricDatum, 0, len(chunk))
	for _, entry := range chunk {
		dimensions, dropped := BuildDimensions(recordDimensions(b.Dimensions, entry.Record))
		if dropped > 0 {
			b.logger.Debug("cloudwatch: dropping dimensions", zap.Int("max", MaxDimensions), zap.Int("dropped", dropped))
		}
		datum := b.datum(entry.Timestamp(), dimensions)
		datum.Value = aws.Float64(b.value(entry))
		datums = append(datums, datum)
	}
	return datums, nil
}

// aggregate collapses the chunk into one datum stamped with the latest entry time. Each value is
// within range, but their sum may not be.
func (b *Builder) aggregate(chunk record.Chunk) (types.MetricDatum, error) {
	if len(chunk) == 0 {
		return types.MetricDatum{}, ErrEmptyAggregationWindow
	}
	latest := chunk[0].Time
	sum := 0.0
	minimum := math.Inf(1)
	maximum := math.Inf(-1)
	for _, entry := range chunk {
		latest = max(latest, entry.Time)
		v := b.value(entry)
		sum += v
		minimum = min(minimum, v)
		maximum = max(maximum, v)
	}
	if !util.IsSupportedValue(sum, util.MinValue, util.MaxValue) {
		return types.MetricDatum{}, fmt.Errorf("%w: sum %v over %d entries", ErrUnsupportedStatistic, sum, len(chunk))
	}
	dimensions, _ := BuildDimensions(staticDimensions(b.Dimensions))
	datum := b.datum(time.Unix(latest, 0).UTC(), dimensions)
	datum.StatisticValues = &types.StatisticSet{
		SampleCount: aws.Float64(float64(len(chunk))),
		Sum:         aws.Float64(sum),
		Minimum:     aws.Float64(minimum),
		Maximum:     aws.Float64(maximum),
	}
	return datum, nil
}

func (b *Builder) datum(timestamp time.Time, dimensions []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName:        aws.String(b.MetricName),
		Unit:              b.Unit,
		StorageResolution: aws.Int32(b.StorageResolution),
		Dimensions:        dimensions,
		Timestamp:         aws.Time(timestamp),
	}
}

// value folds coercion failures into 0 so one bad record does not fail the flush.
func (b *Builder) value(entry record.Entry) float64 {
	raw, ok := entry.Record[b.ValueKey]
	if !ok {
		b.coercionLogger.Warn("cloudwatch: value key missing from record, using 0", zap.String("key", b.ValueKey), zap.Int64("time", entry.Time))
		return 0
	}
	v, err := util.ToFloat64(raw)
	if err != nil {
		b.coercionLogger.Warn("cloudwatch: unable to coerce value, using 0", zap.String("key", b.ValueKey), zap.Int64("time", entry.Time), zap.Error(err))
		return 0
	}
	return v
}
