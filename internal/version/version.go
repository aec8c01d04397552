// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// UserAgentKey identifies this output in the SDK user agent.
	UserAgentKey = "CWMetricOutput"

	filename       = "METRIC_OUTPUT_VERSION"
	unknownVersion = "Unknown"
)

var (
	version     = readVersionFile()
	fullVersion = buildFullVersion(version)
)

// Number is the version read from the file next to the executable.
func Number() string {
	return version
}

func Full() string {
	return fullVersion
}

func FilePath() (string, error) {
	ex, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(ex), filename), nil
}

func buildFullVersion(version string) string {
	return fmt.Sprintf("%s/%s (%s; %s; %s)",
		UserAgentKey,
		version,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH)
}

func readVersionFile() string {
	versionFilePath, err := FilePath()
	if err != nil {
		return unknownVersion
	}
	content, err := os.ReadFile(versionFilePath)
	if err != nil {
		return unknownVersion
	}
	v := strings.TrimSpace(string(content))
	if v == "" || strings.ContainsAny(v, " \t/") {
		return unknownVersion
	}
	return v
}
