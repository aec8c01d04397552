// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

const (
	defaultExpiryWindow = 10 * time.Minute
)

// RefreshableSharedCredentialsProvider re-reads the shared credentials file after the expiry
// window so rotated keys are picked up without a restart.
type RefreshableSharedCredentialsProvider struct {
	Provider     SharedCredentialsProvider
	ExpiryWindow time.Duration
}

var _ aws.CredentialsProvider = (*RefreshableSharedCredentialsProvider)(nil)

func (p RefreshableSharedCredentialsProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	credentials, err := p.Provider.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}
	window := p.ExpiryWindow
	if window <= 0 {
		window = defaultExpiryWindow
	}
	credentials.CanExpire = true
	credentials.Expires = time.Now().Add(window)
	return credentials, nil
}

// SharedCredentialsProvider loads the credentials of a profile from a shared credentials file.
// An empty Filename uses the SDK default locations.
type SharedCredentialsProvider struct {
	Filename string
	Profile  string
}

var _ aws.CredentialsProvider = (*SharedCredentialsProvider)(nil)

func (p SharedCredentialsProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	var opts []func(*config.LoadSharedConfigOptions)
	if p.Filename != "" {
		opts = append(opts, func(options *config.LoadSharedConfigOptions) {
			options.CredentialsFiles = []string{p.Filename}
			// Only the configured file is consulted.
			options.ConfigFiles = []string{}
		})
	}
	profile := p.Profile
	if profile == "" {
		profile = config.DefaultSharedConfigProfile
	}
	sharedConfig, err := config.LoadSharedConfigProfile(ctx, profile, opts...)
	if err != nil {
		return aws.Credentials{}, err
	}
	credentials := sharedConfig.Credentials
	credentials.Source = "SharedCredentialsProvider"
	return credentials, nil
}
