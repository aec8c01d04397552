// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package envconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromOS(t *testing.T) {
	t.Setenv(AWS_REGION, "us-west-2")
	t.Setenv(AWS_CONTAINER_CREDENTIALS_RELATIVE_URI, "")
	t.Setenv(AmzSourceAccount, "123456789012")
	t.Setenv(AmzSourceArn, "")

	env := FromOS()
	assert.Equal(t, "us-west-2", env.Region)
	assert.False(t, env.IsContainerCredentialsEndpoint())
	assert.False(t, env.HasSourceHeaders())

	t.Setenv(AWS_CONTAINER_CREDENTIALS_RELATIVE_URI, "/v2/credentials/abc")
	t.Setenv(AmzSourceArn, "arn:aws:ecs:us-west-2:123456789012:task/abc")
	env = FromOS()
	assert.True(t, env.IsContainerCredentialsEndpoint())
	assert.Equal(t, "/v2/credentials/abc", env.ContainerCredentialsRelativeURI)
	assert.True(t, env.HasSourceHeaders())
}

func TestFromLookup(t *testing.T) {
	values := map[string]string{
		AWS_REGION:        "eu-west-1",
		AWS_SDK_LOG_LEVEL: "LogRequest",
	}
	env := FromLookup(func(key string) string { return values[key] })
	assert.Equal(t, Environment{Region: "eu-west-1", SDKLogLevel: "LogRequest"}, env)
}
