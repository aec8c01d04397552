// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package internal

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aws/amazon-cloudwatch-metric-output/internal/record"
	"github.com/aws/amazon-cloudwatch-metric-output/plugins/outputs/cloudwatch"
)

const (
	DefaultFlushRetries  = 3
	DefaultRetryInterval = time.Second

	maxRetryDelay = 30 * time.Second
)

type ChunkSource interface {
	Next() (record.Chunk, error)
}

type ChunkWriter interface {
	Write(ctx context.Context, chunk record.Chunk) error
}

// Pipeline reads chunks from Source and flushes them to Writer with up to Workers concurrent
// flushes. A failed flush is retried Retries times before the chunk is counted as lost.
type Pipeline struct {
	Source        ChunkSource
	Writer        ChunkWriter
	Workers       int
	Retries       int
	RetryInterval time.Duration
	Logger        *zap.Logger

	flushed atomic.Int64
	lost    atomic.Int64
}

// Run returns once the source is exhausted and every dispatched flush has finished, or ctx is
// cancelled. Lost chunks are not an error.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Workers, 1))

	var readErr error
	for ctx.Err() == nil {
		chunk, err := p.Source.Next()
		if len(chunk) > 0 {
			g.Go(func() error {
				p.flush(gctx, chunk)
				return nil
			})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() == nil {
				readErr = err
			}
			break
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return readErr
}

func (p *Pipeline) flush(ctx context.Context, chunk record.Chunk) {
	err := ctx.Err()
	if err == nil {
		err = retry.Do(
			func() error {
				return p.Writer.Write(ctx, chunk)
			},
			retry.Context(ctx),
			retry.Attempts(uint(max(p.Retries, 0)+1)),
			retry.Delay(p.RetryInterval),
			retry.MaxDelay(maxRetryDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				return !errors.Is(err, cloudwatch.ErrNotStarted)
			}),
			retry.OnRetry(func(n uint, err error) {
				p.Logger.Warn("Flush failed, retrying",
					zap.Uint("attempt", n+1),
					zap.Int("entries", len(chunk)),
					zap.Error(err))
			}),
		)
	}
	if err == nil {
		p.flushed.Inc()
		return
	}
	p.lost.Inc()
	p.Logger.Error("Dropping chunk after failed flushes", zap.Int("entries", len(chunk)), zap.Error(err))
}

// Flushed returns the number of chunks written successfully.
func (p *Pipeline) Flushed() int64 {
	return p.flushed.Load()
}

// Lost returns the number of chunks dropped after exhausting their retries.
func (p *Pipeline) Lost() int64 {
	return p.lost.Load()
}
