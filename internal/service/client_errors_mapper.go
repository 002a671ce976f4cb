// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
)

// isPermanent reports whether a failed replay should move the entry straight
// to failed instead of counting against the retry ceiling.
func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedEntry) || errors.Is(err, ErrInvalidOperation) {
		return true
	}
	return adapter.Classify(err) == adapter.Permanent
}

// failureMessage is the message stored on a queue entry for err. Long
// remote bodies are cut so one entry cannot bloat the store.
func failureMessage(err error) string {
	msg := strings.TrimSpace(err.Error())
	if len(msg) > maxErrorLength {
		msg = strings.ToValidUTF8(msg[:maxErrorLength], "") + "…"
	}
	return msg
}

const maxErrorLength = 512
