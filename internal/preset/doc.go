// Package preset maps quality tiers and container formats to concrete
// encoder parameter bundles.
//
// Resolution is forgiving by design: unrecognized format strings degrade to
// MP4 and unrecognized quality strings degrade to medium, so a caller can
// never fail a request by naming a container the encoder does not know.
// The resolver produces an ordered preference list of presets terminating
// in a universal fallback, and picks the first one a compatibility probe
// accepts.
package preset
