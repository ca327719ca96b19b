// Package trial generates and executes the verification matrix.
//
// A matrix is the cross product of size-extension policies and operation
// kinds, one Spec per cell, each populated with a pseudo-random set of
// entries. A trial walks the state machine
//
//	Setup -> Create -> Save -> [Reopen -> Mutate? -> Save] ->
//	Reopen -> Extract&Verify -> Done
//
// recording every entry's checksum at creation time and asserting
// byte-exact round trips after the final reopen. Progress is mirrored to
// the telemetry sink throughout; telemetry failures never affect trial
// outcome.
//
// Trials run strictly sequentially. Engine progress callbacks arrive
// synchronously on the trial goroutine, so the progress bridge
// translates inline with zero queuing.
package trial
