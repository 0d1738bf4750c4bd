// Package logging provides a simple leveled logging interface for the
// vidpress transcoding service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (ffmpeg invocations, cache probes)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the service
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true.
package logging
