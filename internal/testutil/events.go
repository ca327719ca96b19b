// Package testutil provides deterministic helpers shared by harness
// tests: seeded randomness and archive event scripting.
package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/rmarsh/ziptrial/internal/archive"
)

// NewRand returns a seeded pseudo-random source for reproducible test
// populations. The same seed produces the same trial content across
// runs, which keeps golden telemetry comparisons stable.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// EventRecorder collects archive events for inspection.
//
// Thread-safety: events are delivered synchronously in this harness, but
// the recorder locks anyway so tests driving an engine from multiple
// goroutines stay race-free.
type EventRecorder struct {
	mu     sync.Mutex
	events []archive.Event
}

// OnArchiveEvent implements archive.Observer.
func (r *EventRecorder) OnArchiveEvent(ev archive.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded so far.
func (r *EventRecorder) Events() []archive.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]archive.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns just the event kinds, in order.
func (r *EventRecorder) Kinds() []archive.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]archive.EventKind, len(r.events))
	for i, ev := range r.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// Play feeds a scripted event sequence to an observer, standing in for
// an engine pass.
func Play(obs archive.Observer, events []archive.Event) {
	for _, ev := range events {
		obs.OnArchiveEvent(ev)
	}
}

// SavePass builds the event script an engine emits for a save pass over
// the given entries, with one byte event per entry.
func SavePass(entries map[string]int64) []archive.Event {
	return pass(entries, archive.SaveStarted, archive.EntrySaveBegin, archive.EntryBytesRead, archive.EntrySaveEnd, archive.SaveCompleted)
}

// ExtractPass builds the event script for an extract pass.
func ExtractPass(entries map[string]int64) []archive.Event {
	return pass(entries, archive.ExtractStarted, archive.EntryExtractBegin, archive.EntryBytesWritten, archive.EntryExtractEnd, archive.ExtractCompleted)
}

func pass(entries map[string]int64, started, begin, bytes, end, completed archive.EventKind) []archive.Event {
	events := []archive.Event{{Kind: started, EntriesTotal: len(entries)}}
	for _, name := range sortedKeys(entries) {
		size := entries[name]
		events = append(events,
			archive.Event{Kind: begin, EntryName: name},
			archive.Event{Kind: bytes, EntryName: name, BytesTransferred: size, TotalBytes: size},
			archive.Event{Kind: end, EntryName: name},
		)
	}
	return append(events, archive.Event{Kind: completed})
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
