// Package middleware provides the HTTP middleware chain: W3C-style request
// logging, Prometheus request metrics, gzip compression for JSON payloads,
// and optional bearer-token auth on mutating endpoints.
package middleware
