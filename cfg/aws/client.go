// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package aws

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

const defaultHTTPTimeout = 1 * time.Minute

var (
	sharedHTTPClient     aws.HTTPClient
	sharedHTTPClientOnce sync.Once
)

// getSharedHTTPClient returns a singleton HTTP client for all AWS SDK operations. Sharing the client enables connection
// pooling and reuse across all AWS API calls, which reduces memory and file descriptor usage. It has to be an
// BuildableClient because the SDK will only append custom CA bundles if the client is of that type.
// https://github.com/aws/aws-sdk-go-v2/blob/v1.41.1/config/resolve.go#L57
func getSharedHTTPClient() aws.HTTPClient {
	sharedHTTPClientOnce.Do(func() {
		sharedHTTPClient = awshttp.NewBuildableClient().WithTimeout(defaultHTTPTimeout)
	})
	return sharedHTTPClient
}

// newHTTPClient returns the shared client unless a proxy is configured, in which case the client
// gets its own transport.
func newHTTPClient(proxy string) (aws.HTTPClient, error) {
	if proxy == "" {
		return getSharedHTTPClient(), nil
	}
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid http_proxy %q: %w", proxy, err)
	}
	return awshttp.NewBuildableClient().
		WithTimeout(defaultHTTPTimeout).
		WithTransportOptions(func(tr *http.Transport) {
			tr.Proxy = http.ProxyURL(proxyURL)
		}), nil
}
