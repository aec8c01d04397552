// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package cloudwatch

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// CloudWatch supports:
// https://docs.aws.amazon.com/AmazonCloudWatch/latest/APIReference/API_MetricDatum.html
var units = map[string]types.StandardUnit{
	"":   types.StandardUnitNone,
	"1":  types.StandardUnitNone,
	"%":  types.StandardUnitPercent,
	"s":  types.StandardUnitSeconds,
	"us": types.StandardUnitMicroseconds,
	"ms": types.StandardUnitMilliseconds,
	// days, hours, minutes, nanoseconds will require a value conversion.
	"B":   types.StandardUnitBytes,
	"By":  types.StandardUnitBytes,
	"KB":  types.StandardUnitKilobytes,
	"KBy": types.StandardUnitKilobytes,
	"MB":  types.StandardUnitMegabytes,
	"MBy": types.StandardUnitMegabytes,
	"GB":  types.StandardUnitGigabytes,
	"GBy": types.StandardUnitGigabytes,
	"TB":  types.StandardUnitTerabytes,
	"TBy": types.StandardUnitTerabytes,
	// kibibytes, mebibytes, etc. will require a value conversion.
	"Bi":  types.StandardUnitBits,
	"KBi": types.StandardUnitKilobits,
	"MBi": types.StandardUnitMegabits,
	"GBi": types.StandardUnitGigabits,
	"TBi": types.StandardUnitTerabits,
	// rates
	"B/s":   types.StandardUnitBytesSecond,
	"By/s":  types.StandardUnitBytesSecond,
	"KB/s":  types.StandardUnitKilobytesSecond,
	"KBy/s": types.StandardUnitKilobytesSecond,
	"MB/s":  types.StandardUnitMegabytesSecond,
	"MBy/s": types.StandardUnitMegabytesSecond,
	"GB/s":  types.StandardUnitGigabytesSecond,
	"GBy/s": types.StandardUnitGigabytesSecond,
	"TB/s":  types.StandardUnitTerabytesSecond,
	"TBy/s": types.StandardUnitTerabytesSecond,

	"Bi/s":  types.StandardUnitBitsSecond,
	"KBi/s": types.StandardUnitKilobitsSecond,
	"MBi/s": types.StandardUnitMegabitsSecond,
	"GBi/s": types.StandardUnitGigabitsSecond,
	"TBi/s": types.StandardUnitTerabitsSecond,

	"1/s": types.StandardUnitCountSecond,
}

// ConvertUnit maps short unit names to the CloudWatch standard unit. Names that are already
// CloudWatch units, or unknown, are returned as-is and rejected by Config.Validate.
func ConvertUnit(unit string) types.StandardUnit {
	u, ok := units[unit]
	if ok {
		return u
	}
	return types.StandardUnit(unit)
}
