// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"fmt"

	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// HeaderMiddleware sets the headers returned by Fn on every request just before it is signed.
type HeaderMiddleware struct {
	MiddlewareID string
	Fn           func() map[string]string
}

var _ middleware.FinalizeMiddleware = (*HeaderMiddleware)(nil)

func NewHeaderMiddleware(id string, headers map[string]string) *HeaderMiddleware {
	return &HeaderMiddleware{
		MiddlewareID: id,
		Fn: func() map[string]string {
			return headers
		},
	}
}

func (m *HeaderMiddleware) ID() string {
	return m.MiddlewareID
}

func (m *HeaderMiddleware) HandleFinalize(ctx context.Context, in middleware.FinalizeInput, next middleware.FinalizeHandler) (middleware.FinalizeOutput, middleware.Metadata, error) {
	req, ok := in.Request.(*smithyhttp.Request)
	if !ok {
		return middleware.FinalizeOutput{}, middleware.Metadata{}, fmt.Errorf("unrecognized transport type %T", in.Request)
	}
	for k, v := range m.Fn() {
		req.Header.Set(k, v)
	}
	return next.HandleFinalize(ctx, in)
}

// WithHeaders returns an API option adding a HeaderMiddleware to the front of the finalize step.
func WithHeaders(id string, headers map[string]string) func(*middleware.Stack) error {
	return func(s *middleware.Stack) error {
		return s.Finalize.Add(NewHeaderMiddleware(id, headers), middleware.Before)
	}
}
