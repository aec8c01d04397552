// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package commonconfig

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/aws/amazon-cloudwatch-metric-output/internal/record"
	"github.com/aws/amazon-cloudwatch-metric-output/plugins/outputs/cloudwatch"
)

const (
	AgentSection      = "agent"
	CloudWatchSection = "cloudwatch"

	defaultLogLevel     = "info"
	defaultFlushWorkers = 1
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CommonConfig struct {
	Agent      *Agent             `toml:"agent"`
	CloudWatch *cloudwatch.Config `toml:"cloudwatch"`
}

// Agent holds the process wide settings.
type Agent struct {
	LogLevel          string `toml:"log_level" validate:"oneof=debug info warn error"`
	Logfile           string `toml:"logfile"`
	FlushWorkers      int    `toml:"flush_workers" validate:"min=1,max=64"`
	ChunkLimitRecords int    `toml:"chunk_limit_records" validate:"min=1"`
	// AWSSDKLogLevel follows the AWS_SDK_LOG_LEVEL syntax, e.g. "LogRequest | LogRetries".
	AWSSDKLogLevel string `toml:"aws_sdk_log_level"`
}

// New returns a CommonConfig with the defaults applied.
func New() *CommonConfig {
	return &CommonConfig{
		Agent: &Agent{
			LogLevel:          defaultLogLevel,
			FlushWorkers:      defaultFlushWorkers,
			ChunkLimitRecords: record.DefaultChunkLimit,
		},
		CloudWatch: cloudwatch.DefaultConfig(),
	}
}

func Parse(r io.Reader) (*CommonConfig, error) {
	cc := New()
	err := cc.Parse(r)
	if err != nil {
		return nil, err
	}
	return cc, nil
}

// ParseFile decodes the TOML file at path.
func ParseFile(path string) (*CommonConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (c *CommonConfig) Parse(r io.Reader) error {
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return fmt.Errorf("unable to decode toml: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown configuration keys: %v", undecoded)
	}
	return nil
}

// Validate reports every problem in the agent and output sections.
func (c *CommonConfig) Validate() error {
	var errs error
	if c.Agent == nil {
		errs = multierr.Append(errs, fmt.Errorf("missing [%s] section", AgentSection))
	} else if err := validate.Struct(c.Agent); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, verr := range verrs {
				errs = multierr.Append(errs, fmt.Errorf("%s: invalid value %v (%s)", verr.Namespace(), verr.Value(), verr.Tag()))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}
	if c.CloudWatch == nil {
		return multierr.Append(errs, fmt.Errorf("missing [%s] section", CloudWatchSection))
	}
	return multierr.Append(errs, c.CloudWatch.Validate())
}
