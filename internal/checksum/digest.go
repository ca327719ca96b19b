package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

// digestDomain is mixed into every digest so a registry value can never
// collide with a raw SHA-256 of the same bytes computed elsewhere. The
// version suffix allows future algorithm migration.
const digestDomain = "ziptrial/entry/v1"

// digestBuffer sizes the streaming read. Entries may be multi-gigabyte;
// the digest path must never materialise one.
const digestBuffer = 256 * 1024

// Digest computes the streaming content digest of r, returning the hex
// digest and the number of bytes consumed.
func Digest(r io.Reader) (string, int64, error) {
	h := sha256.New()
	h.Write([]byte(digestDomain))
	h.Write([]byte{0x00})
	n, err := io.CopyBuffer(h, r, make([]byte, digestBuffer))
	if err != nil {
		return "", n, fmt.Errorf("digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Writer computes the content digest of everything written to it. It is
// the push-side counterpart of Digest for callers that receive content
// through an io.Writer (archive extraction sinks).
type Writer struct {
	h hash.Hash
	n int64
}

// NewWriter returns a ready digest writer.
func NewWriter() *Writer {
	h := sha256.New()
	h.Write([]byte(digestDomain))
	h.Write([]byte{0x00})
	return &Writer{h: h}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.h.Write(p)
	w.n += int64(len(p))
	return len(p), nil
}

// Sum returns the hex digest of the bytes written so far.
func (w *Writer) Sum() string {
	return hex.EncodeToString(w.h.Sum(nil))
}

// Bytes returns how many bytes have been written.
func (w *Writer) Bytes() int64 { return w.n }
