// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWriteLogToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "")
	assert.NoError(t, err)
	defer func() { os.Remove(tmpfile.Name()) }()
	defer SetLevel(zap.NewAtomicLevelAt(zapcore.InfoLevel))

	writer := NewWriter(tmpfile.Name())
	defer writer.Close()
	logger := New(writer, zap.NewAtomicLevelAt(zapcore.InfoLevel))
	logger.Info("TEST")
	logger.Debug("TEST") // <- should be ignored

	f, err := os.ReadFile(tmpfile.Name())
	assert.NoError(t, err)
	assert.Equal(t, []byte(`Z I! {"msg":"TEST"}`+"\n"), f[19:])
}

func TestDebugWriteLogToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "")
	assert.NoError(t, err)
	defer func() { os.Remove(tmpfile.Name()) }()
	defer SetLevel(zap.NewAtomicLevelAt(zapcore.InfoLevel))

	writer := NewWriter(tmpfile.Name())
	defer writer.Close()
	logger := New(writer, ConvertToAtomicLevel("debug"))
	logger.Debug("TEST", zap.Int("datums", 3))

	f, err := os.ReadFile(tmpfile.Name())
	assert.NoError(t, err)
	assert.Equal(t, []byte(`Z D! {"msg":"TEST","datums":3}`+"\n"), f[19:])
}

func TestErrorWriteLogToFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "")
	assert.NoError(t, err)
	defer func() { os.Remove(tmpfile.Name()) }()
	defer SetLevel(zap.NewAtomicLevelAt(zapcore.InfoLevel))

	writer := NewWriter(tmpfile.Name())
	defer writer.Close()
	logger := New(writer, ConvertToAtomicLevel("error"))
	logger.Error("TEST")
	logger.Info("TEST") // <- should be ignored

	f, err := os.ReadFile(tmpfile.Name())
	assert.NoError(t, err)
	assert.Equal(t, []byte(`Z E! {"msg":"TEST"}`+"\n"), f[19:])
}

func TestWriteToTruncatedFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "")
	assert.NoError(t, err)
	defer func() { os.Remove(tmpfile.Name()) }()
	defer SetLevel(zap.NewAtomicLevelAt(zapcore.InfoLevel))

	writer := NewWriter(tmpfile.Name())
	defer writer.Close()
	logger := New(writer, zap.NewAtomicLevelAt(zapcore.InfoLevel))
	logger.Info("TEST")

	f, err := os.ReadFile(tmpfile.Name())
	assert.NoError(t, err)
	assert.Equal(t, []byte(`Z I! {"msg":"TEST"}`+"\n"), f[19:])

	tmpf, err := os.OpenFile(tmpfile.Name(), os.O_RDWR|os.O_TRUNC, 0644)
	assert.NoError(t, err)
	assert.NoError(t, tmpf.Close())

	logger.Info("SHOULD BE FIRST")

	f, err = os.ReadFile(tmpfile.Name())
	assert.NoError(t, err)
	assert.Equal(t, []byte(`Z I! {"msg":"SHOULD BE FIRST"}`+"\n"), f[19:])
}

func TestWriteCreatesLogDirectory(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "nested", "output.log")
	writer := NewWriter(logfile)
	defer writer.Close()
	_, err := writer.Write([]byte("I! TEST\n"))
	require.NoError(t, err)
	assert.FileExists(t, logfile)
}

func TestNewWriterDefaultsToStderr(t *testing.T) {
	writer := NewWriter("")
	assert.Equal(t, nopCloser{os.Stderr}, writer)
	assert.NoError(t, writer.Close())
}
