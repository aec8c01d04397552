// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/run"
	"go.uber.org/zap"

	configaws "github.com/aws/amazon-cloudwatch-metric-output/cfg/aws"
	"github.com/aws/amazon-cloudwatch-metric-output/cfg/commonconfig"
	"github.com/aws/amazon-cloudwatch-metric-output/cfg/envconfig"
	"github.com/aws/amazon-cloudwatch-metric-output/cmd/amazon-cloudwatch-metric-output/internal"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/record"
	"github.com/aws/amazon-cloudwatch-metric-output/internal/version"
	"github.com/aws/amazon-cloudwatch-metric-output/logger"
	"github.com/aws/amazon-cloudwatch-metric-output/plugins/outputs/cloudwatch"
)

var fConfig = flag.String("config", "", "path to the TOML configuration file")
var fInput = flag.String("input", "", "JSON lines input file, defaults to stdin")
var fTest = flag.Bool("test", false, "validate the configuration and exit")
var fVersion = flag.Bool("version", false, "display the version and exit")

func main() {
	flag.Parse()
	if *fVersion {
		fmt.Println(version.Full())
		return
	}
	if *fConfig == "" {
		fmt.Fprintln(os.Stderr, "E! -config is required")
		os.Exit(2)
	}
	if err := runOutput(*fConfig, *fInput); err != nil {
		fmt.Fprintf(os.Stderr, "E! %v\n", err)
		os.Exit(1)
	}
}

func runOutput(configPath, inputPath string) error {
	cc, err := commonconfig.ParseFile(configPath)
	if err != nil {
		return err
	}
	if err = cc.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", configPath, err)
	}
	if *fTest {
		fmt.Println("I! configuration is valid")
		return nil
	}

	env := envconfig.FromOS()
	level := cc.Agent.LogLevel
	if override := os.Getenv(envconfig.CWAGENT_LOG_LEVEL); override != "" {
		level = override
	}
	writer := logger.NewWriter(cc.Agent.Logfile)
	defer writer.Close()
	log := logger.New(writer, logger.ConvertToAtomicLevel(level))
	defer log.Sync()

	sdkLogLevel := cc.Agent.AWSSDKLogLevel
	if env.SDKLogLevel != "" {
		sdkLogLevel = env.SDKLogLevel
	}
	configaws.SetSDKLogLevel(sdkLogLevel)

	input, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer input.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("Starting metric output", zap.String("version", version.Full()))
	output := cloudwatch.New(cc.CloudWatch, env, log)
	if err = output.Start(ctx); err != nil {
		return err
	}
	defer output.Shutdown(context.Background())

	pipeline := &internal.Pipeline{
		Source:        record.NewReader(input, cc.Agent.ChunkLimitRecords, log),
		Writer:        output,
		Workers:       cc.Agent.FlushWorkers,
		Retries:       internal.DefaultFlushRetries,
		RetryInterval: internal.DefaultRetryInterval,
		Logger:        log,
	}

	var g run.Group
	{
		// Termination handler.
		term := make(chan os.Signal, 1)
		signal.Notify(term, os.Interrupt, syscall.SIGTERM)
		stop := make(chan struct{})
		g.Add(
			func() error {
				select {
				case sig := <-term:
					log.Warn("Received signal, exiting gracefully...", zap.Stringer("signal", sig))
				case <-stop:
				}
				return nil
			},
			func(error) {
				signal.Stop(term)
				close(stop)
			},
		)
	}
	{
		// Flush pipeline. Closing the input unblocks a pending read.
		g.Add(
			func() error {
				return pipeline.Run(ctx)
			},
			func(error) {
				cancel()
				input.Close()
			},
		)
	}
	err = g.Run()

	log.Info("Flush pipeline stopped",
		zap.Int64("flushed", pipeline.Flushed()),
		zap.Int64("lost", pipeline.Lost()))
	if err != nil {
		return err
	}
	if lost := pipeline.Lost(); lost > 0 {
		return fmt.Errorf("%d chunks could not be delivered", lost)
	}
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return os.Stdin, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input: %w", err)
	}
	return f, nil
}
