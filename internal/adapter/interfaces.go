// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client of the hosted remote store.
//
// The primary abstraction is [RemoteStore], which decouples the sync engine
// and the read-through query from the wire protocol. The package ships a
// PostgREST implementation over resty ([NewPostgRESTAdapter]).
//
// HTTP failures are mapped to the sentinel errors in errors.go by
// mapHTTPError. When the remote returns a SQLSTATE code the mapped error
// also wraps a *pgconn.PgError, which [Classify] inspects to decide whether
// a failed replay may be retried.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-offline-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is the authoritative backend that queued mutations are
// replayed against and collections are refreshed from.
type RemoteStore interface {
	// Insert creates a row in table from payload.
	Insert(ctx context.Context, table string, payload models.Payload) error

	// Update applies payload to the row of table identified by id.
	Update(ctx context.Context, table, id string, payload models.Payload) error

	// Delete removes the row of table identified by id.
	Delete(ctx context.Context, table, id string) error

	// Fetch returns the rows of table matching filter. Rows without an "id"
	// field are skipped.
	Fetch(ctx context.Context, table string, filter models.Filter) ([]models.Record, error)

	// Ping reports whether the remote store is reachable.
	Ping(ctx context.Context) error

	// UserID returns the subject of the current access token, or an empty
	// string when no token is configured.
	UserID() string

	// SetToken replaces the access token used for subsequent calls.
	SetToken(token string)
}
