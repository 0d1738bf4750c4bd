package engine

import "errors"

// Sentinel errors for transcode outcomes. Handlers and callers classify
// failures with errors.Is against these.
var (
	// ErrInvalidSource indicates the source file is missing or unreadable.
	ErrInvalidSource = errors.New("source file missing or unreadable")

	// ErrEncodingFailed indicates the encoder itself failed; the wrapped
	// message carries the native error description (ffmpeg stderr tail).
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrCanceled indicates the job was canceled before completion.
	ErrCanceled = errors.New("transcode canceled")

	// ErrUnknown covers failures with no usable diagnostic, such as the
	// encoder exiting zero without producing output.
	ErrUnknown = errors.New("transcode failed for an unknown reason")
)
