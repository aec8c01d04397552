// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package cloudwatch

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	configaws "github.com/aws/amazon-cloudwatch-metric-output/cfg/aws"
)

const (
	defaultMaxDatumsPerCall  = 1000 // PutMetricData only supports up to 1000 data metrics per call by default
	defaultStorageResolution = 60
	MaxDimensions            = 30
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DimensionConfig names a dimension and where its value comes from. Key is looked up in each
// record; Value is a static literal used when Key is not set and in aggregated mode.
type DimensionConfig struct {
	Name  string  `toml:"name" validate:"required,max=255"`
	Key   *string `toml:"key"`
	Value *string `toml:"value" validate:"omitempty,max=1024"`
}

// Config represents the configuration for the CloudWatch metric output.
type Config struct {
	Region           string `toml:"region"`
	EndpointOverride string `toml:"endpoint_override" validate:"omitempty,url"`
	HTTPProxy        string `toml:"http_proxy" validate:"omitempty,url"`
	CABundlePath     string `toml:"ca_bundle_path" validate:"omitempty,file"`

	Namespace         string            `toml:"namespace" validate:"required,max=255"`
	MetricName        string            `toml:"metric_name" validate:"required,max=255"`
	Unit              string            `toml:"unit"`
	StorageResolution int32             `toml:"storage_resolution" validate:"oneof=1 60"`
	ValueKey          string            `toml:"value_key" validate:"required"`
	UseStatisticSets  bool              `toml:"use_statistic_sets"`
	MaxDatumsPerCall  int               `toml:"max_datums_per_call" validate:"min=1,max=1000"`
	Dimensions        []DimensionConfig `toml:"dimensions" validate:"max=30,dive"`

	Credentials *configaws.CredentialsConfig `toml:"credentials" validate:"-"`
}

// DefaultConfig returns a Config with the defaults applied before decoding.
func DefaultConfig() *Config {
	return &Config{
		StorageResolution: defaultStorageResolution,
		MaxDatumsPerCall:  defaultMaxDatumsPerCall,
	}
}

// Validate checks if the output configuration is valid. All problems are reported together.
func (c *Config) Validate() error {
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
	if unit := ConvertUnit(c.Unit); !slices.Contains(types.StandardUnit("").Values(), unit) {
		errs = multierr.Append(errs, fmt.Errorf("'unit' %q is not a CloudWatch standard unit", c.Unit))
	}
	for _, d := range c.Dimensions {
		switch {
		case d.Key == nil && d.Value == nil:
			errs = multierr.Append(errs, fmt.Errorf("dimension %q requires a 'key' or a 'value'", d.Name))
		case c.UseStatisticSets && d.Value == nil:
			errs = multierr.Append(errs, fmt.Errorf("dimension %q requires a static 'value' when 'use_statistic_sets' is enabled", d.Name))
		}
	}
	return multierr.Append(errs, c.Credentials.Validate())
}
