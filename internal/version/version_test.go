// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package version

import (
	"fmt"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	expectedFullVersion := fmt.Sprintf("CWMetricOutput/%s (%s; %s; %s)",
		unknownVersion,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH)
	assert.Equal(t, unknownVersion, Number())
	assert.Equal(t, expectedFullVersion, Full())
}

func TestReadVersionFile(t *testing.T) {
	filePath, err := FilePath()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.Remove(filePath)
	})

	testCases := map[string]struct {
		content string
		want    string
	}{
		"Version":    {content: "1.300.0\n", want: "1.300.0"},
		"Empty":      {content: " \n", want: unknownVersion},
		"WithSpaces": {content: "1.0 beta", want: unknownVersion},
	}
	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filePath, []byte(testCase.content), 0644))
			assert.Equal(t, testCase.want, readVersionFile())
		})
	}

	expected := fmt.Sprintf("CWMetricOutput/1.300.0 (%s; %s; %s)", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	assert.Equal(t, expected, buildFullVersion("1.300.0"))
}
