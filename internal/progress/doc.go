// Package progress translates engine progress events into telemetry
// protocol lines for the two-bar monitor display.
//
// Bar 1 tracks entries at the archive level, bar 2 tracks bytes within
// the current entry. A bar's maximum must be announced before any value
// or step command for it; the Bridge owns that bookkeeping per pass via
// an explicit BarState value reset at pass boundaries.
package progress
