// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package aws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/aws-sdk-go/aws/endpoints"
	"go.uber.org/zap"

	"github.com/aws/amazon-cloudwatch-metric-output/cfg/envconfig"
	awsmiddleware "github.com/aws/amazon-cloudwatch-metric-output/middleware"
)

const (
	bjsPartition          = "aws-cn"
	pdtPartition          = "aws-us-gov"
	lckPartition          = "aws-iso-b"
	dcaPartition          = "aws-iso"
	classicFallbackRegion = "us-east-1"
	bjsFallbackRegion     = "cn-north-1"
	pdtFallbackRegion     = "us-gov-west-1"
	lckFallbackRegion     = "us-isob-east-1"
	dcaFallbackRegion     = "us-iso-east-1"
)

const (
	SourceArnHeaderKey     = "x-amz-source-arn"
	SourceAccountHeaderKey = "x-amz-source-account"
)

type stsCredentialsProvider struct {
	logger *zap.Logger

	mu          sync.Mutex
	fallback    aws.CredentialsProvider
	regional    aws.CredentialsProvider
	partitional aws.CredentialsProvider
}

var _ aws.CredentialsProvider = (*stsCredentialsProvider)(nil)

func (p *stsCredentialsProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	p.mu.Lock()
	fallback := p.fallback
	p.mu.Unlock()
	if fallback != nil {
		return fallback.Retrieve(ctx)
	}
	credentials, err := p.regional.Retrieve(ctx)
	if err != nil && p.partitional != nil {
		var rde *types.RegionDisabledException
		if errors.As(err, &rde) {
			p.logger.Debug("The regional STS endpoint is deactivated and going to fall back to partitional STS endpoint")
			p.mu.Lock()
			p.fallback = p.partitional
			p.mu.Unlock()
			return p.partitional.Retrieve(ctx)
		}
	}
	return credentials, err
}

// newStsCredentialsProvider assumes the role with the base config credentials. The regional endpoint
// is used first and the partition endpoint once the region reports STS as disabled. Without a
// region only the partition endpoint in the classic partition is used.
func newStsCredentialsProvider(cfg aws.Config, role AssumeRole, env envconfig.Environment, logger *zap.Logger) aws.CredentialsProvider {
	optFn := assumeRoleOptions(role)
	if role.Region == "" {
		partitionalCfg := cfg.Copy()
		partitionalCfg.Region = classicFallbackRegion
		return &stsCredentialsProvider{
			logger:   logger,
			regional: stscreds.NewAssumeRoleProvider(newAssumeRoleClient(partitionalCfg, env), role.RoleARN, optFn),
		}
	}
	regionalCfg := cfg.Copy()
	regionalCfg.Region = role.Region
	partitionalCfg := cfg.Copy()
	partitionalCfg.Region = getFallbackRegion(role.Region)
	return &stsCredentialsProvider{
		logger:      logger,
		regional:    stscreds.NewAssumeRoleProvider(newAssumeRoleClient(regionalCfg, env), role.RoleARN, optFn),
		partitional: stscreds.NewAssumeRoleProvider(newAssumeRoleClient(partitionalCfg, env), role.RoleARN, optFn),
	}
}

// assumeRoleOptions only sets the optional request fields that were configured.
func assumeRoleOptions(role AssumeRole) func(*stscreds.AssumeRoleOptions) {
	return func(o *stscreds.AssumeRoleOptions) {
		if role.RoleSessionName != "" {
			o.RoleSessionName = role.RoleSessionName
		}
		if role.Policy != nil {
			o.Policy = aws.String(*role.Policy)
		}
		if role.DurationSeconds != nil {
			o.Duration = time.Duration(*role.DurationSeconds) * time.Second
		}
		if role.ExternalID != nil {
			o.ExternalID = aws.String(*role.ExternalID)
		}
	}
}

var newAssumeRoleClient = newStsClient

func newStsClient(cfg aws.Config, env envconfig.Environment) stscreds.AssumeRoleAPIClient {
	var options []func(*sts.Options)
	if env.HasSourceHeaders() {
		options = append(options, func(o *sts.Options) {
			o.APIOptions = append(o.APIOptions, awsmiddleware.WithHeaders("sourceHeaders", map[string]string{
				SourceArnHeaderKey:     env.SourceArn,
				SourceAccountHeaderKey: env.SourceAccount,
			}))
		})
	}
	return sts.NewFromConfig(cfg, options...)
}

// Get the region in the partition where STS endpoint cannot be deactivated by customers which is used to fallback.
// NOTE: Some Regions are not enabled by default, such as the Asia Pacific Hong Kong Region. In that case, when you
// manually enable the Region, the regional STS endpoints will always be activated and cannot be deactivated.
// Refer to: https://docs.aws.amazon.com/IAM/latest/UserGuide/id_credentials_temp_enable-regions.html
func getFallbackRegion(region string) string {
	switch getPartition(region) {
	case bjsPartition:
		return bjsFallbackRegion
	case pdtPartition:
		return pdtFallbackRegion
	case dcaPartition:
		return dcaFallbackRegion
	case lckPartition:
		return lckFallbackRegion
	default:
		return classicFallbackRegion
	}
}

// Get the partition information based on the region name
func getPartition(region string) string {
	partition, ok := endpoints.PartitionForRegion(endpoints.DefaultPartitions(), region)
	if !ok {
		return ""
	}
	return partition.ID()
}
