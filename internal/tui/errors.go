// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"
)

var ErrNoServices = errors.New("tui requires client services")

// humanizeSyncError shortens transport failures to a message an accountant
// can act on.
func humanizeSyncError(msg string) string {
	s := strings.ToLower(msg)
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "network unavailable or server unreachable"
	}

	return msg
}
