// Package lz4arc is an archive engine implementing the archive contract
// with an LZ4-compressed container.
//
// The container stores a sequence of LZ4 frames followed by an entry
// table and a fixed footer. The table exists in two variants selected by
// the save mode: a standard variant whose sizes, offsets and entry count
// are 32-bit, and an extended variant using 64-bit fields. Forcing the
// standard variant on content that does not fit returns
// archive.ErrLimitExceeded.
//
// Layout:
//
//	"ZT4A" magic, version byte
//	LZ4 frames, one per entry, in entry order
//	entry table: count, then per entry name length, name,
//	  original size, compressed size, frame offset
//	footer: flags byte (bit0 = extended table), table offset (u64),
//	  "ZT4E" magic
//
// Save and Extract emit progress events synchronously on the calling
// goroutine; see the archive package for the event contract. The 32-bit
// boundary is configurable through Options.Limit32 so overflow behaviour
// is testable without multi-gigabyte fixtures.
package lz4arc
