// Package http exposes the offline store as a local JSON API.
//
// Applications that cannot link the Go packages directly read cached
// collections, queue mutations and trigger drains over loopback HTTP.
// Cross-cutting concerns such as request tracing, access logging, response
// compression and company scoping are handled by middlewares before the
// request reaches the service layer.
package http
