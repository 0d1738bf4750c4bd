// Package filesystem provides the filesystem operations the transcoding
// service depends on (exists, size, list, delete, create-directory) with
// automatic retry logic for NFS stale file handle errors.
//
// Cache directories are commonly NFS mounts in containerized deployments;
// ESTALE (errno 116) surfaces there during server-side changes. Only ESTALE
// triggers retries; every other error fails immediately. Retries use
// exponential backoff (50ms → 100ms → 200ms by default, capped at 500ms).
//
// Operations are labeled per volume for metrics via the VolumeResolver
// configured at startup.
package filesystem
