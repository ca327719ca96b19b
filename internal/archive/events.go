package archive

// EventKind identifies one point in an engine's save or extract stream.
type EventKind int

const (
	// SaveStarted opens a save pass. EntriesTotal carries the number of
	// entries about to be written.
	SaveStarted EventKind = iota

	// EntrySaveBegin precedes writing one entry. EntryName is set.
	EntrySaveBegin

	// EntryBytesRead reports save progress within the current entry.
	// BytesTransferred and TotalBytes are set.
	EntryBytesRead

	// EntrySaveEnd follows writing one entry. EntryName is set.
	EntrySaveEnd

	// SaveCompleted closes a save pass.
	SaveCompleted

	// ExtractStarted opens an extract pass. EntriesTotal carries the
	// number of entries in the archive.
	ExtractStarted

	// EntryExtractBegin precedes extracting one entry. EntryName is set.
	EntryExtractBegin

	// EntryBytesWritten reports extract progress within the current entry.
	// BytesTransferred and TotalBytes are set.
	EntryBytesWritten

	// EntryExtractEnd follows extracting one entry. EntryName is set.
	EntryExtractEnd

	// ExtractCompleted closes an extract pass.
	ExtractCompleted
)

// String returns the event kind name for logs and failure messages.
func (k EventKind) String() string {
	names := [...]string{
		"SaveStarted", "EntrySaveBegin", "EntryBytesRead", "EntrySaveEnd",
		"SaveCompleted", "ExtractStarted", "EntryExtractBegin",
		"EntryBytesWritten", "EntryExtractEnd", "ExtractCompleted",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "EventKind(?)"
}

// Event is one engine progress notification. Fields beyond Kind are set
// only where the kind documentation says so; the rest are zero.
type Event struct {
	Kind             EventKind
	EntryName        string
	BytesTransferred int64
	TotalBytes       int64
	EntriesTotal     int
}

// Observer receives engine progress events. Delivery is synchronous on the
// goroutine running the pass; implementations must not block.
type Observer interface {
	OnArchiveEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnArchiveEvent implements Observer.
func (f ObserverFunc) OnArchiveEvent(ev Event) { f(ev) }
