// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package record

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseEntry(t *testing.T) {
	testCases := map[string]struct {
		input   string
		want    Entry
		wantErr bool
	}{
		"Object": {
			input: `{"time": 100, "record": {"v": 1.5, "h": "web1"}}`,
			want:  Entry{Time: 100, Record: Record{"v": json.Number("1.5"), "h": "web1"}},
		},
		"Array": {
			input: `[200, {"v": "abc"}]`,
			want:  Entry{Time: 200, Record: Record{"v": "abc"}},
		},
		"FractionalTime": {
			input: `[1700000000.75, {"v": 1}]`,
			want:  Entry{Time: 1700000000, Record: Record{"v": json.Number("1")}},
		},
		"NullValue": {
			input: `{"time": 1, "record": {"v": null}}`,
			want:  Entry{Time: 1, Record: Record{"v": nil}},
		},
		"MissingTime": {
			input:   `{"record": {"v": 1}}`,
			wantErr: true,
		},
		"MissingRecord": {
			input:   `{"time": 1}`,
			wantErr: true,
		},
		"ShortArray": {
			input:   `[1]`,
			wantErr: true,
		},
		"RecordNotObject": {
			input:   `[1, "v"]`,
			wantErr: true,
		},
		"TimeNotNumber": {
			input:   `[true, {}]`,
			wantErr: true,
		},
		"Scalar": {
			input:   `42`,
			wantErr: true,
		},
		"Truncated": {
			input:   `{"time": 1, "record": {`,
			wantErr: true,
		},
		"Empty": {
			input:   ``,
			wantErr: true,
		},
		"Whitespace": {
			input:   " \t ",
			wantErr: true,
		},
	}
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseEntry([]byte(testCase.input))
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestReader(t *testing.T) {
	input := strings.Join([]string{
		`{"time": 100, "record": {"v": 1}}`,
		``,
		`[200, {"v": 2}]`,
		`not json`,
		`{"time": 150, "record": {"v": 3}}`,
	}, "\n")

	core, logs := observer.New(zapcore.WarnLevel)
	r := NewReader(strings.NewReader(input), 2, zap.New(core))

	chunk, err := r.Next()
	require.NoError(t, err)
	require.Len(t, chunk, 2)
	assert.EqualValues(t, 100, chunk[0].Time)
	assert.EqualValues(t, 200, chunk[1].Time)

	chunk, err = r.Next()
	require.NoError(t, err)
	require.Len(t, chunk, 1)
	assert.EqualValues(t, 150, chunk[0].Time)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, 1, r.Skipped())
	require.Equal(t, 1, logs.Len())
	assert.EqualValues(t, 4, logs.All()[0].ContextMap()["line"])
}

func TestReaderSkipsLongLines(t *testing.T) {
	long := `{"time": 300, "record": {"v": "` + strings.Repeat("x", 200) + `"}}`
	input := strings.Join([]string{
		`{"time": 100, "record": {"v": 1}}`,
		long,
		`{"time": 200, "record": {"v": 2}}`,
		long,
	}, "\n")

	core, logs := observer.New(zapcore.WarnLevel)
	r := NewReader(nil, 10, zap.New(core))
	r.reader = bufio.NewReaderSize(strings.NewReader(input), 16)
	r.maxLine = 64

	chunk, err := r.Next()
	require.NoError(t, err)
	require.Len(t, chunk, 2)
	assert.EqualValues(t, 100, chunk[0].Time)
	assert.EqualValues(t, 200, chunk[1].Time)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, r.Skipped())
	require.Equal(t, 2, logs.Len())
	assert.EqualValues(t, 2, logs.All()[0].ContextMap()["line"])
	assert.EqualValues(t, 4, logs.All()[1].ContextMap()["line"])
}

func TestReaderLastLineWithoutNewline(t *testing.T) {
	r := NewReader(strings.NewReader("[1, {\"v\": 1}]\n[2, {\"v\": 2}]"), 10, nil)
	chunk, err := r.Next()
	require.NoError(t, err)
	require.Len(t, chunk, 2)
	assert.EqualValues(t, 2, chunk[1].Time)
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""), 0, nil)
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEntryTimestamp(t *testing.T) {
	e := Entry{Time: 200}
	assert.Equal(t, time.Unix(200, 0).UTC(), e.Timestamp())
	assert.Equal(t, time.UTC, e.Timestamp().Location())
}
