// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

// NewWriter returns a rotating writer for logfile, or stderr when logfile is empty.
func NewWriter(logfile string) io.WriteCloser {
	if logfile == "" {
		return nopCloser{os.Stderr}
	}
	os.MkdirAll(filepath.Dir(logfile), 0755)
	// The codes below should not change, because the retention information has already been published to public doc.
	return &lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     7,
		Compress:   true,
	}
}
