// Package telemetry implements the one-way textual channel between the
// harness and an out-of-process progress monitor.
//
// # Protocol
//
// One command per line, space-delimited. The final field of test and
// status is free text; everything else is a fixed token or an integer.
//
//	test <name>          announce a named test scenario
//	status <text>        human-readable status
//	pb <i> max <n>       set bar i (1 or 2) maximum
//	pb <i> value <n>     set bar i current value
//	pb <i> step          increment bar i by one
//	stop                 terminal message, closes the session
//
// # Delivery
//
// Delivery is best-effort and fire-and-forget. The monitor may not be
// listening when the channel opens, may attach late, or may never exist;
// none of that is an error. Sends never block the archive pass and every
// delivery failure is swallowed. Telemetry has no effect on trial
// correctness, only on progress visibility.
package telemetry
