// Package main provides the entry point for the VidPress transcoding service.
//
// VidPress is a self-hosted video transcoding coordinator. It accepts
// transcode requests over HTTP, resolves them against quality presets,
// runs them through FFmpeg with bounded concurrency, and caches results
// on disk so repeated requests are served without re-encoding. Batches
// of related jobs report a single aggregate progress stream.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Configuration Loading: Reads environment variables and validates directories
//  2. Database Initialization: Opens SQLite for the cache index and job history
//  3. Component Initialization:
//     - Result Cache: Loads the persisted index and reconciles it with disk
//     - Encoder: Verifies FFmpeg/FFprobe availability
//     - Job Manager: Sets up the bounded worker pool
//     - Thumbnail Generator: Initializes libvips for frame thumbnails
//     - Metrics Collector: Gathers Prometheus metrics on a separate port
//  4. HTTP Server Setup: Configures routes, middleware, and starts the server
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM, drains jobs, kills encoders
//
// # Related Tools
//
// The tokenctl command (cmd/tokenctl) manages the optional admin token
// that protects mutating API endpoints.
package main
