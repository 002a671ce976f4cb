package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-offline-keeper/internal/adapter"
)

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "malformed", err: fmt.Errorf("%w: no id", ErrMalformedEntry), want: true},
		{name: "invalid operation", err: ErrInvalidOperation, want: true},
		{name: "check violation", err: fmt.Errorf("%w: %w", adapter.ErrBadRequest, &pgconn.PgError{Code: "23514"}), want: true},
		{name: "server error", err: adapter.ErrServerError, want: false},
		{name: "offline", err: ErrOffline, want: false},
		{name: "unknown", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPermanent(tt.err))
		})
	}
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "boom", failureMessage(errors.New("  boom\n")))

	long := failureMessage(errors.New(strings.Repeat("é", maxErrorLength)))
	assert.True(t, utf8.ValidString(long))
	assert.LessOrEqual(t, len(long), maxErrorLength+len("…"))
}
