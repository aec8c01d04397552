// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package aws

import (
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/aws/amazon-cloudwatch-metric-output/cfg/envconfig"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/util"
)

type Kind string

const (
	KindStatic          Kind = "static"
	KindAssumeRole      Kind = "assume_role"
	KindInstanceProfile Kind = "instance_profile"
	KindContainer       Kind = "container"
	KindSharedFile      Kind = "shared_file"
	KindDefault         Kind = "default"
)

// Credentials is the resolved credential strategy used to build the client. It is one of
// Static, AssumeRole, InstanceProfile, SharedFile or Default.
type Credentials interface {
	Kind() Kind
	isCredentials()
}

type Static struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"-"`
}

type AssumeRole struct {
	RoleARN         string  `json:"role_arn"`
	RoleSessionName string  `json:"role_session_name,omitempty"`
	Policy          *string `json:"policy,omitempty"`
	DurationSeconds *int32  `json:"duration_seconds,omitempty"`
	ExternalID      *string `json:"external_id,omitempty"`
	// Region scopes the STS endpoint. Empty uses the partition endpoint.
	Region string `json:"region,omitempty"`
}

type InstanceProfile struct {
	Retries         *int     `json:"retries,omitempty"`
	IPAddress       *string  `json:"ip_address,omitempty"`
	Port            *int     `json:"port,omitempty"`
	HTTPOpenTimeout *float64 `json:"http_open_timeout,omitempty"`
	HTTPReadTimeout *float64 `json:"http_read_timeout,omitempty"`
	// ContainerRelativeURI routes the options to the container credentials endpoint when set.
	ContainerRelativeURI string `json:"container_relative_uri,omitempty"`
}

type SharedFile struct {
	Path        *string `json:"path,omitempty"`
	ProfileName *string `json:"profile_name,omitempty"`
}

// Default defers to the SDK default credential chain.
type Default struct{}

func (Static) Kind() Kind     { return KindStatic }
func (AssumeRole) Kind() Kind { return KindAssumeRole }
func (SharedFile) Kind() Kind { return KindSharedFile }
func (Default) Kind() Kind    { return KindDefault }

func (p InstanceProfile) Kind() Kind {
	if p.ContainerRelativeURI != "" {
		return KindContainer
	}
	return KindInstanceProfile
}

func (Static) isCredentials()          {}
func (AssumeRole) isCredentials()      {}
func (InstanceProfile) isCredentials() {}
func (SharedFile) isCredentials()      {}
func (Default) isCredentials()         {}

// Resolver picks the credential strategy from a CredentialsConfig. It reads nothing from the
// process and makes no network calls.
type Resolver struct {
	Env    envconfig.Environment
	Logger *zap.Logger
}

// Resolve returns the first configured strategy in precedence order: static keys, assume role,
// instance profile, shared file, the deprecated iam_retries option, then the default chain.
// region is the configured output region; the environment region is used when it is empty.
func (r Resolver) Resolve(c *CredentialsConfig, region string) Credentials {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if region == "" {
		region = r.Env.Region
	}
	switch {
	case c == nil:
		return Default{}
	case c.AccessKey != "" && c.SecretKey != "":
		return Static{AccessKey: c.AccessKey, SecretKey: c.SecretKey}
	case c.AssumeRole != nil:
		return AssumeRole{
			RoleARN:         c.AssumeRole.RoleARN,
			RoleSessionName: c.AssumeRole.RoleSessionName,
			Policy:          clone(c.AssumeRole.Policy),
			DurationSeconds: clone(c.AssumeRole.DurationSeconds),
			ExternalID:      clone(c.AssumeRole.ExternalID),
			Region:          region,
		}
	case c.InstanceProfile != nil:
		return InstanceProfile{
			Retries:              clone(c.InstanceProfile.Retries),
			IPAddress:            clone(c.InstanceProfile.IPAddress),
			Port:                 clone(c.InstanceProfile.Port),
			HTTPOpenTimeout:      clone(c.InstanceProfile.HTTPOpenTimeout),
			HTTPReadTimeout:      clone(c.InstanceProfile.HTTPReadTimeout),
			ContainerRelativeURI: r.Env.ContainerCredentialsRelativeURI,
		}
	case c.SharedFile != nil:
		return SharedFile{
			Path:        clone(c.SharedFile.Path),
			ProfileName: clone(c.SharedFile.ProfileName),
		}
	case c.IAMRetries != nil:
		logger.Warn("'iam_retries' is deprecated, use the 'instance_profile' credentials section instead")
		return InstanceProfile{
			Retries:              clone(c.IAMRetries),
			ContainerRelativeURI: r.Env.ContainerCredentialsRelativeURI,
		}
	default:
		return Default{}
	}
}

type marshaledCredentials struct {
	Kind    Kind        `json:"kind"`
	Options Credentials `json:"options,omitempty"`
}

// MarshalCredentials encodes the strategy and its configured options. Unset options are
// omitted and secrets are never included.
func MarshalCredentials(c Credentials) ([]byte, error) {
	if c == nil {
		c = Default{}
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(marshaledCredentials{Kind: c.Kind(), Options: c})
}

// Masked returns a copy of c that is safe to log. The access key keeps its type prefix and the
// instance profile address keeps its network half.
func Masked(c Credentials) Credentials {
	switch v := c.(type) {
	case Static:
		return Static{AccessKey: util.MaskAccessKey(v.AccessKey)}
	case InstanceProfile:
		if v.IPAddress != nil {
			masked := util.MaskIPAddress(*v.IPAddress)
			v.IPAddress = &masked
		}
		return v
	}
	return c
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
