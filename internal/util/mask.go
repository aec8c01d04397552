// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: MIT

package util

import (
	"net/netip"
	"strconv"
	"strings"
)

const (
	maskedEmpty   = "<empty>"
	maskedPresent = "<present>"

	accessKeyPrefixLen = 4
)

// MaskAccessKey keeps only the key type prefix of an access key id, e.g. "AKIA..." or "ASIA...".
func MaskAccessKey(key string) string {
	if key == "" {
		return maskedEmpty
	}
	if len(key) <= accessKeyPrefixLen {
		return maskedPresent
	}
	return key[:accessKeyPrefixLen] + "..."
}

// MaskIPAddress keeps the network half of an address: "10.0.x.x" for IPv4 and the first two
// groups for IPv6. Anything that does not parse as an address is only reported as present.
func MaskIPAddress(ip string) string {
	if ip == "" {
		return maskedEmpty
	}
	addr, err := netip.ParseAddr(strings.Trim(ip, "[]"))
	if err != nil {
		return maskedPresent
	}
	if addr.Is4() || addr.Is4In6() {
		b := addr.Unmap().As4()
		return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + ".x.x"
	}
	groups := strings.SplitN(addr.StringExpanded(), ":", 3)
	return groups[0] + ":" + groups[1] + ":x"
}
