// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package record

import "time"

// Record is one flushed key/value record. Values are scalars: string, number, bool or nil.
type Record map[string]any

// Entry pairs a record with its event time in epoch seconds.
type Entry struct {
	Time   int64
	Record Record
}

// Timestamp returns the entry time in UTC.
func (e Entry) Timestamp() time.Time {
	return time.Unix(e.Time, 0).UTC()
}

// Chunk is an ordered batch of entries flushed together. A chunk is never modified once built.
type Chunk []Entry
