package trial

import (
	"fmt"
	"io"
	"math/rand"
)

// extClasses are the extension classes entries are drawn from. Update
// trials remove one whole class; verification must survive that.
var extClasses = []string{".bin", ".txt", ".dat", ".log"}

// textAlphabet is the character set for text-flavoured entries.
const textAlphabet = "abcdefghijklmnopqrstuvwxyz ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789.,;\n"

// Content is a deterministic pseudo-random content source. It
// regenerates the same byte stream on every Open from its seed, so
// checksum recording, archive writing and any later re-read all stream
// the same content without ever materialising it.
type Content struct {
	Seed   int64
	Length int64
	Text   bool
}

// Size implements archive.ContentSource.
func (c Content) Size() int64 { return c.Length }

// Open implements archive.ContentSource.
func (c Content) Open() (io.ReadCloser, error) {
	return &contentReader{
		rnd:       rand.New(rand.NewSource(c.Seed)),
		remaining: c.Length,
		text:      c.Text,
	}, nil
}

type contentReader struct {
	rnd       *rand.Rand
	remaining int64
	text      bool
}

func (r *contentReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	if r.text {
		for i := range p {
			p[i] = textAlphabet[r.rnd.Intn(len(textAlphabet))]
		}
	} else {
		r.rnd.Read(p)
	}
	r.remaining -= int64(len(p))
	return len(p), nil
}

func (r *contentReader) Close() error { return nil }

// entrySpec pairs a generated relative name with its content source.
type entrySpec struct {
	name    string
	content Content
}

// populate generates the entry set for one trial. Names mix top-level
// files with nested directories; flattening happens later through
// checksum.CanonicalName, applied identically at creation and
// verification.
func populate(spec Spec, cfg *Config, rnd *rand.Rand) []entrySpec {
	dirs := []string{"", "data/", "data/sub/", "logs/"}

	entries := make([]entrySpec, 0, spec.EntryCount)
	for i := 0; i < spec.EntryCount; i++ {
		dir := dirs[rnd.Intn(len(dirs))]
		ext := extClasses[rnd.Intn(len(extClasses))]
		name := fmt.Sprintf("%sentry-%04d%s", dir, i, ext)

		size := cfg.MinEntrySize
		if span := cfg.MaxEntrySize - cfg.MinEntrySize; span > 0 {
			size += rnd.Int63n(span + 1)
		}
		if spec.Huge {
			size = cfg.Huge.EntrySize
		}

		entries = append(entries, entrySpec{
			name: name,
			content: Content{
				Seed:   rnd.Int63(),
				Length: size,
				Text:   ext == ".txt" || ext == ".log",
			},
		})
	}
	return entries
}

// pickRemovalClass returns the glob for the extension class removed
// during an update trial's mutation step.
func pickRemovalClass(rnd *rand.Rand) string {
	return "*" + extClasses[rnd.Intn(len(extClasses))]
}
