// Package archive defines the contract between the trial harness and an
// archive engine.
//
// The engine itself is an external collaborator: this package owns no
// compression or encoding logic. It specifies the operations the harness
// consumes (create, open, add, save, extract, rename, remove) and the
// synchronous progress event stream engines emit during save and extract
// passes.
//
// # Size-extension policy
//
// Archives come in two on-disk variants: a standard variant whose sizes,
// offsets and entry counts fit in 32 bits, and an extended variant using
// 64-bit fields. The Mode type selects between them when saving:
//
//   - ModeAsNecessary: the engine decides based on content (default)
//   - ModeAlways: force the extended variant
//   - ModeNever: force the standard variant; content exceeding 32-bit
//     limits is an engine error, never a silent truncation
//
// # Progress events
//
// Engines deliver events synchronously on the goroutine executing the save
// or extract pass. Observers must therefore return quickly and must never
// block; there is no queue between the engine and its observers.
package archive
