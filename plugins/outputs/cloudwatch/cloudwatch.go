// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package cloudwatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	configaws "github.com/aws/amazon-cloudwatch-metric-output/cfg/aws"
	"github.com/aws/amazon-cloudwatch-metric-output/cfg/envconfig"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/record"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/retryer"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/version"
)

// ErrNotStarted is returned by Write when Start has not completed successfully.
var ErrNotStarted = errors.New("cloudwatch output has not been started")

// SubmissionError reports a failed PutMetricData call. The whole chunk should be flushed again.
type SubmissionError struct {
	Namespace string
	Datums    int
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("cloudwatch: PutMetricData to namespace %q failed for %d datums: %v", e.Namespace, e.Datums, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var newPutMetricDataClient = func(cfg aws.Config, optFns ...func(*cloudwatch.Options)) putMetricDataAPI {
	return cloudwatch.NewFromConfig(cfg, optFns...)
}

// CloudWatch builds metric datums from flushed chunks and submits them with PutMetricData.
type CloudWatch struct {
	config  *Config
	env     envconfig.Environment
	logger  *zap.Logger
	builder *Builder

	svc     putMetricDataAPI
	retryer *retryer.LogThrottleRetryer

	startOnce sync.Once
	startErr  error
	started   *atomic.Bool
}

func New(config *Config, env envconfig.Environment, logger *zap.Logger) *CloudWatch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudWatch{
		config:  config,
		env:     env,
		logger:  logger,
		builder: NewBuilder(config, logger),
		started: atomic.NewBool(false),
	}
}

// Start validates the configuration, resolves the credentials and creates the client. It runs
// once; later calls return the first result.
func (c *CloudWatch) Start(ctx context.Context) error {
	c.startOnce.Do(func() {
		c.startErr = c.start(ctx)
		if c.startErr == nil {
			c.started.Store(true)
		}
	})
	return c.startErr
}

func (c *CloudWatch) start(ctx context.Context) error {
	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("invalid cloudwatch configuration: %w", err)
	}
	resolver := configaws.Resolver{Env: c.env, Logger: c.logger}
	creds := resolver.Resolve(c.config.Credentials, c.config.Region)
	c.logCredentials(creds)

	awsConfig, err := configaws.LoadConfig(ctx, creds, configaws.ClientOptions{
		Region:       c.config.Region,
		HTTPProxy:    c.config.HTTPProxy,
		CABundlePath: c.config.CABundlePath,
		Env:          c.env,
		Logger:       c.logger,
	})
	if err != nil {
		return err
	}
	if awsConfig.Region == "" {
		return errors.New("'region' must be set")
	}

	logThrottleRetryer := retryer.NewLogThrottleRetryer(c.logger)
	c.svc = newPutMetricDataClient(awsConfig, func(o *cloudwatch.Options) {
		if c.config.EndpointOverride != "" {
			o.BaseEndpoint = aws.String(c.config.EndpointOverride)
		}
		o.Retryer = logThrottleRetryer
		o.APIOptions = append(o.APIOptions, awsmiddleware.AddUserAgentKeyValue(version.UserAgentKey, version.Number()))
	})
	c.retryer = logThrottleRetryer
	c.logger.Info("cloudwatch: output started",
		zap.String("namespace", c.config.Namespace),
		zap.String("metric", c.config.MetricName),
		zap.String("region", awsConfig.Region),
		zap.Bool("statisticSets", c.config.UseStatisticSets))
	return nil
}

func (c *CloudWatch) logCredentials(creds configaws.Credentials) {
	masked := configaws.Masked(creds)
	fields := []zap.Field{zap.String("kind", string(masked.Kind()))}
	switch m := masked.(type) {
	case configaws.Static:
		fields = append(fields, zap.String("accessKey", m.AccessKey))
	case configaws.AssumeRole:
		fields = append(fields, zap.String("roleARN", m.RoleARN))
	case configaws.InstanceProfile:
		if m.IPAddress != nil {
			fields = append(fields, zap.String("ipAddress", *m.IPAddress))
		}
	}
	if c.logger.Core().Enabled(zap.DebugLevel) {
		if data, err := configaws.MarshalCredentials(masked); err == nil {
			fields = append(fields, zap.ByteString("options", data))
		}
	}
	c.logger.Debug("cloudwatch: resolved credentials", fields...)
}

// Write converts the chunk and submits the datums. An empty aggregation window, or one whose sum
// cannot be stored, is skipped. Any submission failure is returned as a *SubmissionError. Datums
// in batches before the failed one may already be stored, so a retried chunk can be delivered
// more than once.
func (c *CloudWatch) Write(ctx context.Context, chunk record.Chunk) error {
	if !c.started.Load() {
		return ErrNotStarted
	}
	datums, err := c.builder.Build(chunk)
	if errors.Is(err, ErrEmptyAggregationWindow) {
		c.logger.Warn("cloudwatch: skipping flush with no entries to aggregate")
		return nil
	}
	if errors.Is(err, ErrUnsupportedStatistic) {
		c.logger.Warn("cloudwatch: dropping statistic set", zap.Int("entries", len(chunk)), zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if len(datums) == 0 {
		return nil
	}
	for _, batch := range partition(datums, c.config.MaxDatumsPerCall, perRequestConstSize(c.config.Namespace)) {
		if err = c.putMetricData(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (c *CloudWatch) putMetricData(ctx context.Context, datums []types.MetricDatum) error {
	_, err := c.svc.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(c.config.Namespace),
		MetricData: datums,
	})
	if err == nil {
		c.logger.Debug("cloudwatch: PutMetricData succeeded", zap.Int("datums", len(datums)))
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		c.logger.Error("cloudwatch: PutMetricData failed",
			zap.String("code", apiErr.ErrorCode()),
			zap.String("message", apiErr.ErrorMessage()),
			zap.Int("datums", len(datums)))
	} else {
		c.logger.Error("cloudwatch: PutMetricData failed", zap.Error(err), zap.Int("datums", len(datums)))
	}
	return &SubmissionError{Namespace: c.config.Namespace, Datums: len(datums), Err: err}
}

// Shutdown stops the throttle watcher. Write must not be called afterwards.
func (c *CloudWatch) Shutdown(context.Context) error {
	c.logger.Debug("Stopping the CloudWatch output plugin")
	c.started.Store(false)
	c.retryer.Stop()
	c.logger.Debug("Stopped the CloudWatch output plugin")
	return nil
}
