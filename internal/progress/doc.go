// Package progress cleans raw encoder progress signals into bounded-rate,
// non-redundant event streams.
//
// Encoders report progress noisily: ticks arrive at arbitrary rates, may
// repeat, and may even regress when the encoder re-reads a segment. The
// Emitter clamps, deduplicates, rate-limits and monotonizes the signal
// while guaranteeing that the 0.0 start marker and the 1.0 terminal marker
// are each delivered exactly once. The Aggregator folds the per-job streams
// of a batch into a single mean scalar.
package progress
