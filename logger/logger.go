// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var (
	loggerLevel zap.AtomicLevel
	bufferPool  = buffer.NewPool()
)

// LetterLevelEncoder prefixes every JSON entry with the UTC timestamp and a level letter,
// e.g. "2024-05-01T10:00:00Z I! {...}".
type LetterLevelEncoder struct {
	zapcore.Encoder
}

// New returns a logger writing to writer at the shared level.
func New(writer io.Writer, level zap.AtomicLevel) *zap.Logger {
	loggerLevel.SetLevel(level.Level())
	return zap.New(newCore(writer))
}

func newCore(writer io.Writer) zapcore.Core {
	return zapcore.NewCore(
		createLetterLevelEncoder(),
		zapcore.AddSync(writer),
		loggerLevel,
	)
}

func createLetterLevelEncoder() LetterLevelEncoder {
	return LetterLevelEncoder{
		zapcore.NewJSONEncoder(newProductionEncoderConfig()),
	}
}

func SetLevel(level zap.AtomicLevel) {
	loggerLevel.SetLevel(level.Level())
}

// Level returns the level shared by every logger created in this package.
func Level() zap.AtomicLevel {
	return loggerLevel
}

func (t LetterLevelEncoder) EncodeEntry(e zapcore.Entry, f []zapcore.Field) (*buffer.Buffer, error) {
	entry, err := t.Encoder.EncodeEntry(e, f)
	if err != nil {
		return nil, err
	}
	defer entry.Free()
	buf := bufferPool.Get()
	buf.AppendTime(e.Time.UTC(), time.RFC3339)
	buf.AppendByte(' ')
	buf.AppendString(ConvertToLetterLevel(e.Level) + "! ")
	buf.AppendBytes(entry.Bytes())
	return buf, nil
}

func (t LetterLevelEncoder) Clone() zapcore.Encoder {
	return LetterLevelEncoder{t.Encoder.Clone()}
}

func newProductionEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		NameKey:       "logger",
		CallerKey:     "caller",
		FunctionKey:   zapcore.OmitKey,
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
}

// ConvertToAtomicLevel maps a configured level name onto zap. Unknown names are info.
func ConvertToAtomicLevel(level string) zap.AtomicLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel)
}

func ConvertToLetterLevel(l zapcore.Level) string {
	return string(l.CapitalString()[0])
}

func init() {
	loggerLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
}
