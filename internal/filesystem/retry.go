package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"vidpress/internal/logging"
	"vidpress/internal/metrics"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// ESTALE (stale file handle) - errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}

	return false
}

// withRetry runs fn, retrying on ESTALE with exponential backoff.
func withRetry(op, path string, config RetryConfig, fn func() error) error {
	volume := defaultResolver.Resolve(path)
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
			}
			return nil
		}

		lastErr = err

		if !isNFSStaleError(err) {
			return err
		}

		if attempt < config.MaxRetries {
			metrics.FilesystemRetryAttempts.WithLabelValues(op, volume).Inc()
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, lastErr)
	metrics.FilesystemRetryFailures.WithLabelValues(op, defaultResolver.Resolve(path)).Inc()
	return lastErr
}

// StatWithRetry performs os.Stat with retry logic for NFS stale handles.
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	var info os.FileInfo
	err := withRetry("stat", path, config, func() error {
		var statErr error
		info, statErr = os.Stat(path)
		return statErr
	})
	return info, err
}

// Exists reports whether path exists and is a regular, non-empty file.
// This is the trust check for cache entries: a missing or zero-byte file
// must never be served from the cache.
func Exists(path string) bool {
	info, err := StatWithRetry(path, DefaultRetryConfig())
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Size returns the size of path in bytes.
func Size(path string) (int64, error) {
	info, err := StatWithRetry(path, DefaultRetryConfig())
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ReadDirWithRetry performs os.ReadDir with retry logic for NFS stale handles.
func ReadDirWithRetry(path string, config RetryConfig) ([]os.DirEntry, error) {
	var entries []os.DirEntry
	err := withRetry("readdir", path, config, func() error {
		var readErr error
		entries, readErr = os.ReadDir(path)
		return readErr
	})
	return entries, err
}

// RemoveWithRetry performs os.Remove with retry logic for NFS stale handles.
func RemoveWithRetry(path string, config RetryConfig) error {
	return withRetry("remove", path, config, func() error {
		return os.Remove(path)
	})
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
