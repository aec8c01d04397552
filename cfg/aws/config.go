// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package aws

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

const (
	CredentialSection      = "credentials"
	AssumeRoleSection      = "assume_role"
	InstanceProfileSection = "instance_profile"
	SharedFileSection      = "shared_file"
	StaticKeys             = "access_key/secret_key"
	DeprecatedIAMRetries   = "iam_retries"
)

// ErrConfigurationConflict is returned when more than one credential strategy is configured.
var ErrConfigurationConflict = errors.New("more than one credential strategy configured")

var validate = validator.New(validator.WithRequiredStructEnabled())

// CredentialsConfig is the credentials section of the output configuration. Each strategy is
// optional and selected by presence. Pointer fields distinguish "not configured" from
// "configured as empty".
type CredentialsConfig struct {
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	// IAMRetries is deprecated, use the instance_profile section instead.
	IAMRetries *int `toml:"iam_retries" validate:"omitempty,min=0"`

	AssumeRole      *AssumeRoleConfig      `toml:"assume_role"`
	InstanceProfile *InstanceProfileConfig `toml:"instance_profile"`
	SharedFile      *SharedFileConfig      `toml:"shared_file"`
}

type AssumeRoleConfig struct {
	RoleARN         string  `toml:"role_arn" validate:"required"`
	RoleSessionName string  `toml:"role_session_name"`
	Policy          *string `toml:"policy"`
	// STS accepts 15 minutes up to 12 hours.
	DurationSeconds *int32  `toml:"duration_seconds" validate:"omitempty,min=900,max=43200"`
	ExternalID      *string `toml:"external_id"`
}

type InstanceProfileConfig struct {
	Retries   *int    `toml:"retries" validate:"omitempty,min=0"`
	IPAddress *string `toml:"ip_address" validate:"omitempty,ip"`
	Port      *int    `toml:"port" validate:"omitempty,min=1,max=65535"`
	// Timeouts are in seconds.
	HTTPOpenTimeout *float64 `toml:"http_open_timeout" validate:"omitempty,gt=0"`
	HTTPReadTimeout *float64 `toml:"http_read_timeout" validate:"omitempty,gt=0"`
}

type SharedFileConfig struct {
	Path        *string `toml:"path"`
	ProfileName *string `toml:"profile_name"`
}

// Strategies returns the names of the configured credential strategies in precedence order.
func (c *CredentialsConfig) Strategies() []string {
	if c == nil {
		return nil
	}
	var strategies []string
	if c.AccessKey != "" || c.SecretKey != "" {
		strategies = append(strategies, StaticKeys)
	}
	if c.AssumeRole != nil {
		strategies = append(strategies, AssumeRoleSection)
	}
	if c.InstanceProfile != nil {
		strategies = append(strategies, InstanceProfileSection)
	}
	if c.SharedFile != nil {
		strategies = append(strategies, SharedFileSection)
	}
	if c.IAMRetries != nil {
		strategies = append(strategies, DeprecatedIAMRetries)
	}
	return strategies
}

// Validate checks the field constraints and rejects configurations with more than one
// credential strategy. All problems are reported together.
func (c *CredentialsConfig) Validate() error {
	if c == nil {
		return nil
	}
	var errs error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, verr := range verrs {
				errs = multierr.Append(errs, fmt.Errorf("%s: invalid value %v (%s)", verr.Namespace(), verr.Value(), verr.Tag()))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		errs = multierr.Append(errs, errors.New("'access_key' and 'secret_key' must be set together"))
	}
	if strategies := c.Strategies(); len(strategies) > 1 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrConfigurationConflict, strings.Join(strategies, ", ")))
	}
	return errs
}
