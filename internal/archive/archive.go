package archive

import (
	"errors"
	"io"
)

// ErrLimitExceeded is returned by Save when ModeNever is forced on content
// that does not fit the standard 32-bit variant.
var ErrLimitExceeded = errors.New("archive: content exceeds standard-format limits")

// ErrEntryNotFound is returned by Extract and Rename for unknown names.
var ErrEntryNotFound = errors.New("archive: entry not found")

// ContentSource supplies an entry's bytes. Sources must be reopenable so
// that recording a checksum and writing the archive can each stream the
// same content without buffering it.
type ContentSource interface {
	// Open returns a fresh reader over the full content.
	Open() (io.ReadCloser, error)

	// Size returns the content length in bytes.
	Size() int64
}

// Engine creates and opens archives.
type Engine interface {
	// Create starts a new, empty archive that will be persisted at path
	// by the first Save.
	Create(path string) (Archive, error)

	// Open reads an existing archive for extraction or update.
	Open(path string) (Archive, error)
}

// Archive is one open archive handle.
//
// Mutations (Add, Rename, RemoveMatching) affect the in-memory entry set
// and take effect on disk at the next Save. Subscribe registers an
// observer for the save and extract event streams; the returned function
// deregisters it and is safe to call more than once.
type Archive interface {
	Add(name string, src ContentSource) error
	Entries() []string
	Extract(name string, dst io.Writer) error
	Rename(oldName, newName string) error
	RemoveMatching(glob string) (int, error)
	Save(mode Mode) error

	// ExtensionUsed reports whether the last Save (or the opened file)
	// used the 64-bit extended variant.
	ExtensionUsed() bool

	// FileSize returns the on-disk size of the persisted archive.
	FileSize() (int64, error)

	Subscribe(obs Observer) (unsubscribe func())
	Close() error
}
