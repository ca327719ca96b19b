// Package checksum records and verifies content digests for archive
// entries across a round trip.
//
// A Registry maps each entry's canonical relative name to a streaming
// SHA-256 digest computed at creation time. After the archive has been
// saved, reopened and extracted, Verify recomputes the digest from the
// extracted bytes and compares for exact equality. The registry is
// consulted, never silently mutated, during verification; entries removed
// from the archive must be removed from the registry too, so verification
// only checks names still present.
//
// Digests are stored in SQLite so a trial over tens of thousands of
// entries keeps a flat memory profile and the registry can be kept as an
// inspectable artifact after a failed run.
package checksum
