package progress

import (
	"github.com/rmarsh/ziptrial/internal/archive"
	"github.com/rmarsh/ziptrial/internal/telemetry"
)

// BarState tracks, per pass, whether each bar's maximum has been
// announced. It is reset whenever a new save or extract pass begins so a
// stale maximum from the previous pass can never leak into the next one.
type BarState struct {
	archiveMaxSet bool
	entryMaxSet   bool
	entriesTotal  int
}

// Reset clears both flags and records the pass entry total.
func (s *BarState) Reset(entriesTotal int) {
	s.archiveMaxSet = false
	s.entryMaxSet = false
	s.entriesTotal = entriesTotal
}

// Bridge implements archive.Observer, mirroring one engine pass onto the
// telemetry channel. It holds no archive state beyond the per-pass
// BarState; register it with Archive.Subscribe around each pass and
// deregister afterwards so events from a later pass are not translated
// twice.
type Bridge struct {
	sink  telemetry.Sink
	state BarState
}

// NewBridge creates a bridge writing to sink.
func NewBridge(sink telemetry.Sink) *Bridge {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &Bridge{sink: sink}
}

// OnArchiveEvent implements archive.Observer.
func (b *Bridge) OnArchiveEvent(ev archive.Event) {
	switch ev.Kind {
	case archive.SaveStarted:
		b.state.Reset(ev.EntriesTotal)
		b.sink.SendLine(telemetry.Statusf("Saving archive (%d entries)", ev.EntriesTotal))

	case archive.ExtractStarted:
		b.state.Reset(ev.EntriesTotal)
		b.sink.SendLine(telemetry.Statusf("Extracting archive (%d entries)", ev.EntriesTotal))

	case archive.EntrySaveBegin:
		b.beginEntry("Compressing", ev.EntryName)

	case archive.EntryExtractBegin:
		b.beginEntry("Extracting", ev.EntryName)

	case archive.EntryBytesRead, archive.EntryBytesWritten:
		b.entryBytes(ev.BytesTransferred, ev.TotalBytes)

	case archive.EntrySaveEnd, archive.EntryExtractEnd:
		b.sink.SendLine(telemetry.BarStepLine(telemetry.BarArchive))

	case archive.SaveCompleted:
		b.complete("Save complete")

	case archive.ExtractCompleted:
		b.complete("Extract complete")
	}
}

func (b *Bridge) beginEntry(verb, name string) {
	if !b.state.archiveMaxSet {
		b.sink.SendLine(telemetry.BarMaxLine(telemetry.BarArchive, int64(b.state.entriesTotal)))
		b.state.archiveMaxSet = true
	}
	b.sink.SendLine(telemetry.Statusf("%s %s", verb, name))
	b.state.entryMaxSet = false
}

func (b *Bridge) entryBytes(transferred, total int64) {
	if !b.state.entryMaxSet {
		b.sink.SendLine(telemetry.BarMaxLine(telemetry.BarEntry, total))
		b.state.entryMaxSet = true
	}
	// Zero-length entries still produce a byte event; guard the ratio.
	pct := float64(100)
	if total > 0 {
		pct = float64(transferred) / float64(total) * 100
	}
	b.sink.SendLine(telemetry.Statusf("%.0f%%", pct))
	b.sink.SendLine(telemetry.BarValueLine(telemetry.BarEntry, transferred))
}

func (b *Bridge) complete(status string) {
	b.state.Reset(0)
	b.sink.SendLine(telemetry.BarMaxLine(telemetry.BarArchive, 1))
	b.sink.SendLine(telemetry.BarValueLine(telemetry.BarArchive, 1))
	b.sink.SendLine(telemetry.StatusLine(status))
}
