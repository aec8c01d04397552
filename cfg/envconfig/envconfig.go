// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package envconfig

import (
	"os"
)

const (
	//the following are the names of environment variables
	AWS_REGION                             = "AWS_REGION"                             //nolint:revive
	AWS_SDK_LOG_LEVEL                      = "AWS_SDK_LOG_LEVEL"                      //nolint:revive
	AWS_CONTAINER_CREDENTIALS_RELATIVE_URI = "AWS_CONTAINER_CREDENTIALS_RELATIVE_URI" //nolint:revive
	AWS_CONTAINER_AUTHORIZATION_TOKEN      = "AWS_CONTAINER_AUTHORIZATION_TOKEN"      //nolint:revive
	CWAGENT_LOG_LEVEL                      = "CWAGENT_LOG_LEVEL"                      //nolint:revive

	// confused deputy prevention related headers
	AmzSourceAccount = "AMZ_SOURCE_ACCOUNT" // populates the "x-amz-source-account" header
	AmzSourceArn     = "AMZ_SOURCE_ARN"     // populates the "x-amz-source-arn" header
)

// Environment is the snapshot of process environment the credential resolver and client
// construction depend on. It is captured once at startup and passed around explicitly.
type Environment struct {
	// Region is the default region used when no region is configured.
	Region string
	// ContainerCredentialsRelativeURI is set by the container orchestrator when task
	// credentials are served from the container credentials endpoint.
	ContainerCredentialsRelativeURI string
	// ContainerAuthorizationToken is sent with container credentials requests when set.
	ContainerAuthorizationToken string
	SourceAccount               string
	SourceArn                   string
	SDKLogLevel                 string
}

// FromOS captures the Environment from the current process.
func FromOS() Environment {
	return FromLookup(os.Getenv)
}

// FromLookup captures the Environment using the given lookup function.
func FromLookup(getenv func(string) string) Environment {
	return Environment{
		Region:                          getenv(AWS_REGION),
		ContainerCredentialsRelativeURI: getenv(AWS_CONTAINER_CREDENTIALS_RELATIVE_URI),
		ContainerAuthorizationToken:     getenv(AWS_CONTAINER_AUTHORIZATION_TOKEN),
		SourceAccount:                   getenv(AmzSourceAccount),
		SourceArn:                       getenv(AmzSourceArn),
		SDKLogLevel:                     getenv(AWS_SDK_LOG_LEVEL),
	}
}

// IsContainerCredentialsEndpoint returns true when credentials should be fetched from the
// container credentials endpoint instead of the instance metadata service.
func (e Environment) IsContainerCredentialsEndpoint() bool {
	return e.ContainerCredentialsRelativeURI != ""
}

// HasSourceHeaders returns true if both confused deputy headers can be populated.
func (e Environment) HasSourceHeaders() bool {
	return e.SourceAccount != "" && e.SourceArn != ""
}
