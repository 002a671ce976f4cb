// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes type-safe context keys, JSON response writing, the resty client
// factory, access token inspection, UUIDv7 generation and a swappable clock.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// CompanyIDCtxKey is the key used to store the active company scope in the
// context. The HTTP layer reads it from the X-Company-ID header.
//
//	ctx := context.WithValue(ctx, utils.CompanyIDCtxKey, "acme")
var CompanyIDCtxKey = contextKey("companyID")

// TraceIDCtxKey is the key used to store the request trace id.
var TraceIDCtxKey = contextKey("traceID")

// GetCompanyIDFromContext retrieves the company scope from the context.
//
// Returns the company id and an ok flag:
//   - ok == true : value is found, is a string and is not empty
//   - ok == false: value is missing, empty or has an unexpected type
func GetCompanyIDFromContext(ctx context.Context) (string, bool) {
	companyID, ok := ctx.Value(CompanyIDCtxKey).(string)
	return companyID, ok && companyID != ""
}

// GetTraceIDFromContext retrieves the trace id stored by the HTTP middleware.
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok
}
