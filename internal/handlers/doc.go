// Package handlers implements the HTTP API: job submission and inspection,
// batch coordination, live progress events over SSE, result downloads,
// cache management, source probing, thumbnails, and health/version probes.
package handlers
