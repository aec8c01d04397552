// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package record

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	DefaultChunkLimit = 1000
	maxLineSize       = 1024 * 1024
	readBufferSize    = 64 * 1024
)

var (
	errInvalidLine = errors.New("entry must be an object with time and record or a [time, record] array")
	errInvalidTime = errors.New("entry time must be a finite number of epoch seconds")
	errLineTooLong = fmt.Errorf("entry exceeds %d bytes", maxLineSize)
)

// Numbers are kept as json.Number so large integers keep their precision until coercion.
var jsonAPI = jsoniter.Config{
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

type objectEntry struct {
	Time   *json.Number `json:"time"`
	Record Record       `json:"record"`
}

// Reader groups JSON lines into chunks. Each line is either
// {"time": <epoch seconds>, "record": {...}} or the array form [<epoch seconds>, {...}].
// Malformed lines, including lines longer than 1MB, are logged and skipped.
type Reader struct {
	reader  *bufio.Reader
	buf     []byte
	maxLine int
	limit   int
	logger  *zap.Logger
	line    int
	skipped int
}

func NewReader(r io.Reader, limit int, logger *zap.Logger) *Reader {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		reader:  bufio.NewReaderSize(r, readBufferSize),
		maxLine: maxLineSize,
		limit:   limit,
		logger:  logger,
	}
}

// Next returns the next chunk of at most limit entries. It returns io.EOF once the input is
// exhausted and no entries remain.
func (r *Reader) Next() (Chunk, error) {
	chunk := make(Chunk, 0, r.limit)
	for len(chunk) < r.limit {
		raw, err := r.readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		r.line++
		if errors.Is(err, errLineTooLong) {
			r.skip(err)
			continue
		}
		if err != nil {
			return chunk, fmt.Errorf("unable to read entries: %w", err)
		}
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			r.skip(err)
			continue
		}
		chunk = append(chunk, entry)
	}
	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

func (r *Reader) skip(err error) {
	r.skipped++
	r.logger.Warn("Skipping malformed entry", zap.Int("line", r.line), zap.Error(err))
}

// readLine returns the next line, newline included. The slice is only valid until the next
// call. A line over maxLine bytes is consumed and reported as errLineTooLong.
func (r *Reader) readLine() ([]byte, error) {
	r.buf = r.buf[:0]
	n := 0
	tooLong := false
	for {
		frag, err := r.reader.ReadSlice('\n')
		n += len(frag)
		if !tooLong && len(r.buf)+len(frag) > r.maxLine {
			tooLong = true
			r.buf = r.buf[:0]
		}
		if !tooLong {
			r.buf = append(r.buf, frag...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && (!errors.Is(err, io.EOF) || n == 0) {
			return nil, err
		}
		if tooLong {
			return nil, errLineTooLong
		}
		return r.buf, nil
	}
}

// Skipped returns the number of malformed lines dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ParseEntry decodes one entry in either the object or the array form.
func ParseEntry(data []byte) (Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Entry{}, errInvalidLine
	}
	switch data[0] {
	case '{':
		var obj objectEntry
		if err := jsonAPI.Unmarshal(data, &obj); err != nil {
			return Entry{}, err
		}
		if obj.Time == nil || obj.Record == nil {
			return Entry{}, errInvalidLine
		}
		t, err := epochSeconds(*obj.Time)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Time: t, Record: obj.Record}, nil
	case '[':
		var pair []jsoniter.RawMessage
		if err := jsonAPI.Unmarshal(data, &pair); err != nil {
			return Entry{}, err
		}
		if len(pair) != 2 {
			return Entry{}, errInvalidLine
		}
		var ts json.Number
		if err := jsonAPI.Unmarshal(pair[0], &ts); err != nil {
			return Entry{}, errInvalidTime
		}
		t, err := epochSeconds(ts)
		if err != nil {
			return Entry{}, err
		}
		var rec Record
		if err := jsonAPI.Unmarshal(pair[1], &rec); err != nil || rec == nil {
			return Entry{}, errInvalidLine
		}
		return Entry{Time: t, Record: rec}, nil
	default:
		return Entry{}, errInvalidLine
	}
}

// epochSeconds truncates fractional seconds.
func epochSeconds(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, errInvalidTime
	}
	return int64(f), nil
}
