// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - CACHE_DIR: Path to cache directory for results and thumbnails (default: /cache)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - MAX_JOBS: Maximum concurrent transcode jobs (default: one per CPU)
//   - FFMPEG_PATH: Path to the ffmpeg binary (default: ffmpeg)
//   - FFPROBE_PATH: Path to the ffprobe binary (default: ffprobe)
//   - PROGRESS_MIN_DELTA: Minimum progress change worth reporting (default: 0.01)
//   - PROGRESS_MIN_INTERVAL: Minimum time between progress events (default: 100ms)
//   - HISTORY_LIMIT: Number of finished jobs kept in history (default: 50)
//   - CACHE_DISABLED: Disable the result cache entirely (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: false)
//
// # Directory Setup
//
// The package validates and creates required directories:
//   - Database directory: Required, must be writable
//   - Results directory: Optional, transcoding is disabled without it
//   - Thumbnail directory: Optional, thumbnails are disabled without it
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
package startup
