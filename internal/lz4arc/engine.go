package lz4arc

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/rmarsh/ziptrial/internal/archive"
)

// DefaultBufferSize is the transfer buffer used for compression and
// extraction when Options.BufferSize is zero.
const DefaultBufferSize = 256 * 1024

// Options configures an Engine.
type Options struct {
	// Limit32 is the largest value a standard-variant field may hold.
	// Defaults to math.MaxUint32. Tests lower it to exercise overflow
	// without huge fixtures.
	Limit32 uint64

	// BufferSize is the transfer buffer for save and extract streams.
	BufferSize int
}

func (o Options) limit32() uint64 {
	if o.Limit32 == 0 {
		return math.MaxUint32
	}
	return o.Limit32
}

func (o Options) bufferSize() int {
	if o.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.BufferSize
}

// Engine creates and opens lz4arc containers.
type Engine struct {
	opts Options
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Create implements archive.Engine. The archive materialises at path on
// the first Save.
func (e *Engine) Create(path string) (archive.Archive, error) {
	return &Archive{
		engine: e,
		path:   path,
	}, nil
}

// Open implements archive.Engine.
func (e *Engine) Open(path string) (archive.Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lz4arc: open %s: %w", path, err)
	}
	a := &Archive{
		engine: e,
		path:   path,
		file:   f,
	}
	if err := a.loadTable(); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

// entry is one archive member. For entries loaded from an existing file,
// offset and compSize locate the frame; for freshly added entries, src
// supplies the content.
type entry struct {
	name     string
	origSize int64

	// frame location within a.file, valid when src is nil
	offset   int64
	compSize int64

	// pending content, valid until the next Save
	src archive.ContentSource
}

// Archive is one open container. Not safe for concurrent use; the
// harness runs trials sequentially.
type Archive struct {
	engine *Engine
	path   string

	file    *os.File // persisted container, nil before first Save
	entries []*entry
	extUsed bool

	obsMu     sync.Mutex
	observers []archive.Observer
}

// Subscribe implements archive.Archive. The returned function
// deregisters the observer and may be called more than once.
func (a *Archive) Subscribe(obs archive.Observer) func() {
	a.obsMu.Lock()
	a.observers = append(a.observers, obs)
	a.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.obsMu.Lock()
			defer a.obsMu.Unlock()
			for i, o := range a.observers {
				if o == obs {
					a.observers = append(a.observers[:i], a.observers[i+1:]...)
					break
				}
			}
		})
	}
}

func (a *Archive) emit(ev archive.Event) {
	a.obsMu.Lock()
	obs := make([]archive.Observer, len(a.observers))
	copy(obs, a.observers)
	a.obsMu.Unlock()
	for _, o := range obs {
		o.OnArchiveEvent(ev)
	}
}

// Entries implements archive.Archive, returning names in archive order.
func (a *Archive) Entries() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// ExtensionUsed implements archive.Archive.
func (a *Archive) ExtensionUsed() bool { return a.extUsed }

// FileSize implements archive.Archive.
func (a *Archive) FileSize() (int64, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return 0, fmt.Errorf("lz4arc: stat %s: %w", a.path, err)
	}
	return info.Size(), nil
}

// Close implements archive.Archive.
func (a *Archive) Close() error {
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

func (a *Archive) find(name string) (int, *entry) {
	for i, e := range a.entries {
		if e.name == name {
			return i, e
		}
	}
	return -1, nil
}
