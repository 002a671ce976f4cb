// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	errNothingToRun = errors.New("neither an http address nor workers are configured")
)
