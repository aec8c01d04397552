// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package util

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// MinValue and MaxValue bound the values PutMetricData accepts.
const (
	MinValue = -0x1p360
	MaxValue = 0x1p360
)

// IsSupportedValue reports whether value is finite and within [lower, upper].
func IsSupportedValue(value, lower, upper float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= lower && value <= upper
}

// CoercionError is returned when a record value cannot be used as a metric value.
type CoercionError struct {
	Value  any
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("unable to coerce %v (%T) to float64: %s", e.Value, e.Value, e.Reason)
}

// ToFloat64 converts a scalar record value to a float64. Numbers, numeric strings and bools
// convert. Missing (nil), non-numeric, composite and non-finite values are a *CoercionError, as
// are numbers outside [MinValue, MaxValue]. Strings must be numeric in full, so "12abc" is rejected.
func ToFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, &CoercionError{Value: value, Reason: "missing value"}
	case map[string]any, []any:
		return 0, &CoercionError{Value: value, Reason: "composite value"}
	case string:
		value = strings.TrimSpace(v)
	case []byte:
		value = strings.TrimSpace(string(v))
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, &CoercionError{Value: value, Reason: "not a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &CoercionError{Value: value, Reason: "not finite"}
	}
	if !IsSupportedValue(f, MinValue, MaxValue) {
		return 0, &CoercionError{Value: value, Reason: "outside the supported range"}
	}
	return f, nil
}

// ToString converts a scalar record value to the string sent on the wire. Missing values are
// empty.
func ToString(value any) string {
	if value == nil {
		return ""
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return s
}
