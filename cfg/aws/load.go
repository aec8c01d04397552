// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package aws

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/credentials/endpointcreds"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"go.uber.org/zap"

	"github.com/aws/amazon-cloudwatch-metric-output/cfg/envconfig"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/retryer"
)

const (
	defaultIMDSAddress      = "169.254.169.254"
	defaultContainerAddress = "169.254.170.2"
)

// ClientOptions are the client settings shared by every credential strategy.
type ClientOptions struct {
	Region       string
	HTTPProxy    string
	CABundlePath string
	Env          envconfig.Environment
	Logger       *zap.Logger
}

// LoadConfig builds the SDK config for the resolved credentials. The credentials provider is
// wrapped in a cache and is not contacted until the first request is signed.
func LoadConfig(ctx context.Context, creds Credentials, opts ClientOptions) (aws.Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	region := opts.Region
	if region == "" {
		region = opts.Env.Region
	}
	httpClient, err := newHTTPClient(opts.HTTPProxy)
	if err != nil {
		return aws.Config{}, err
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithHTTPClient(httpClient),
		config.WithClientLogMode(SDKLogLevel()),
		config.WithLogger(SDKLogger{Logger: logger}),
	}
	if opts.CABundlePath != "" {
		bundle, err := os.ReadFile(opts.CABundlePath)
		if err != nil {
			return aws.Config{}, fmt.Errorf("unable to read ca bundle: %w", err)
		}
		loadOpts = append(loadOpts, config.WithCustomCABundle(bytes.NewReader(bundle)))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load aws config: %w", err)
	}

	provider, err := newCredentialsProvider(cfg, creds, opts.Env, logger)
	if err != nil {
		return aws.Config{}, err
	}
	if provider != nil {
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}
	kind := KindDefault
	if creds != nil {
		kind = creds.Kind()
	}
	logger.Debug("Loaded AWS config", zap.String("region", cfg.Region), zap.String("credentials", string(kind)))
	return cfg, nil
}

// newCredentialsProvider returns nil for the default chain already loaded into cfg.
func newCredentialsProvider(cfg aws.Config, creds Credentials, env envconfig.Environment, logger *zap.Logger) (aws.CredentialsProvider, error) {
	switch c := creds.(type) {
	case Static:
		return credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""), nil
	case AssumeRole:
		return newStsCredentialsProvider(cfg, c, env, logger), nil
	case InstanceProfile:
		if c.Kind() == KindContainer {
			return newContainerProvider(c, env), nil
		}
		return newInstanceProfileProvider(c), nil
	case SharedFile:
		provider := RefreshableSharedCredentialsProvider{ExpiryWindow: defaultExpiryWindow}
		if c.Path != nil {
			provider.Provider.Filename = *c.Path
		}
		provider.Provider.Profile = config.DefaultSharedConfigProfile
		if c.ProfileName != nil && *c.ProfileName != "" {
			provider.Provider.Profile = *c.ProfileName
		}
		return provider, nil
	case Default, nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported credentials %T", creds)
	}
}

func newInstanceProfileProvider(c InstanceProfile) aws.CredentialsProvider {
	imdsOpts := imds.Options{
		Retryer: retryer.NewIMDSRetryer(retries(c.Retries)),
	}
	if c.IPAddress != nil || c.Port != nil {
		imdsOpts.Endpoint = "http://" + hostPort(c.IPAddress, defaultIMDSAddress, c.Port, 80)
	}
	if client := newTimeoutClient(c.HTTPOpenTimeout, c.HTTPReadTimeout); client != nil {
		imdsOpts.HTTPClient = client
	}
	return ec2rolecreds.New(func(o *ec2rolecreds.Options) {
		o.Client = imds.New(imdsOpts)
	})
}

func newContainerProvider(c InstanceProfile, env envconfig.Environment) aws.CredentialsProvider {
	host := defaultContainerAddress
	if c.IPAddress != nil || c.Port != nil {
		host = hostPort(c.IPAddress, defaultContainerAddress, c.Port, 80)
	}
	endpoint := "http://" + host + c.ContainerRelativeURI
	return endpointcreds.New(endpoint, func(o *endpointcreds.Options) {
		o.Retryer = retryer.NewIMDSRetryer(retries(c.Retries))
		if client := newTimeoutClient(c.HTTPOpenTimeout, c.HTTPReadTimeout); client != nil {
			o.HTTPClient = client
		}
		if env.ContainerAuthorizationToken != "" {
			o.AuthorizationToken = env.ContainerAuthorizationToken
		}
	})
}

func retries(configured *int) int {
	if configured == nil {
		return retryer.DefaultMetadataRetries
	}
	return *configured
}

func hostPort(ip *string, defaultIP string, port *int, defaultPort int) string {
	host := defaultIP
	if ip != nil && *ip != "" {
		host = *ip
	}
	p := defaultPort
	if port != nil {
		p = *port
	}
	return net.JoinHostPort(host, strconv.Itoa(p))
}

// newTimeoutClient returns nil when neither timeout is configured. Timeouts are in seconds.
func newTimeoutClient(openTimeout, readTimeout *float64) *awshttp.BuildableClient {
	if openTimeout == nil && readTimeout == nil {
		return nil
	}
	client := awshttp.NewBuildableClient()
	if openTimeout != nil {
		d := seconds(*openTimeout)
		client = client.WithDialerOptions(func(dialer *net.Dialer) {
			dialer.Timeout = d
		})
	}
	if readTimeout != nil {
		d := seconds(*readTimeout)
		client = client.WithTransportOptions(func(tr *http.Transport) {
			tr.ResponseHeaderTimeout = d
		})
	}
	return client
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
