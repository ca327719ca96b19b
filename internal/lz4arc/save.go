package lz4arc

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/rmarsh/ziptrial/internal/archive"
)

// Save implements archive.Archive. It writes the whole container to a
// temporary file, then renames it over path, so a failed save never
// corrupts the previous artifact. Entries loaded from the old file are
// recompressed by streaming through their frames.
func (a *Archive) Save(mode archive.Mode) error {
	a.emit(archive.Event{Kind: archive.SaveStarted, EntriesTotal: len(a.entries)})

	tmpPath := a.path + ".saving"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("lz4arc: create %s: %w", tmpPath, err)
	}
	// tmp is removed on any failure path; cleared on success.
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := writeHeader(tmp); err != nil {
		return fail(fmt.Errorf("lz4arc: write header: %w", err))
	}
	pos := int64(headerLen)

	buf := make([]byte, a.engine.opts.bufferSize())
	for _, e := range a.entries {
		a.emit(archive.Event{Kind: archive.EntrySaveBegin, EntryName: e.name})

		src, err := a.entrySource(e)
		if err != nil {
			return fail(err)
		}
		e.offset = pos
		compSize, err := a.writeFrame(tmp, src, e, buf)
		src.Close()
		if err != nil {
			return fail(fmt.Errorf("lz4arc: save entry %q: %w", e.name, err))
		}
		e.compSize = compSize
		pos += compSize

		a.emit(archive.Event{Kind: archive.EntrySaveEnd, EntryName: e.name})
	}

	wide, err := a.resolveVariant(mode)
	if err != nil {
		return fail(err)
	}

	tableOff := pos
	if err := writeTable(tmp, a.entries, wide); err != nil {
		return fail(fmt.Errorf("lz4arc: write table: %w", err))
	}
	if err := writeFooter(tmp, wide, tableOff); err != nil {
		return fail(fmt.Errorf("lz4arc: write footer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("lz4arc: sync: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("lz4arc: close: %w", err)
	}

	// Frames sourced from the old file are fully consumed; replace it.
	if a.file != nil {
		a.file.Close()
		a.file = nil
	}
	if err := os.Rename(tmpPath, a.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("lz4arc: rename into place: %w", err)
	}

	f, err := os.Open(a.path)
	if err != nil {
		return fmt.Errorf("lz4arc: reopen %s: %w", a.path, err)
	}
	a.file = f
	if err := a.loadTable(); err != nil {
		return err
	}

	a.emit(archive.Event{Kind: archive.SaveCompleted})
	return nil
}

// entrySource returns a reader over the entry's uncompressed content:
// the pending ContentSource for new entries, or a decompressing reader
// over the existing frame for entries carried across from the old file.
func (a *Archive) entrySource(e *entry) (io.ReadCloser, error) {
	if e.src != nil {
		rc, err := e.src.Open()
		if err != nil {
			return nil, fmt.Errorf("lz4arc: open source for %q: %w", e.name, err)
		}
		return rc, nil
	}
	if a.file == nil {
		return nil, fmt.Errorf("lz4arc: entry %q has no content before first save", e.name)
	}
	section := io.NewSectionReader(a.file, e.offset, e.compSize)
	return io.NopCloser(lz4.NewReader(section)), nil
}

// writeFrame compresses one entry into w, emitting byte progress along
// the way, and returns the compressed frame size.
func (a *Archive) writeFrame(w io.Writer, src io.Reader, e *entry, buf []byte) (int64, error) {
	cw := &countingWriter{w: w}
	zw := lz4.NewWriter(cw)

	var transferred int64
	reported := false
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := zw.Write(buf[:n]); werr != nil {
				zw.Close()
				return cw.n, werr
			}
			transferred += int64(n)
			reported = true
			a.emit(archive.Event{
				Kind:             archive.EntryBytesRead,
				EntryName:        e.name,
				BytesTransferred: transferred,
				TotalBytes:       e.origSize,
			})
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			zw.Close()
			return cw.n, rerr
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	// Zero-length entries still announce their (empty) byte range so the
	// monitor's entry bar resets.
	if !reported {
		a.emit(archive.Event{
			Kind:       archive.EntryBytesRead,
			EntryName:  e.name,
			TotalBytes: e.origSize,
		})
	}
	if transferred != e.origSize {
		return cw.n, fmt.Errorf("content size changed: expected %d bytes, read %d", e.origSize, transferred)
	}
	return cw.n, nil
}

// resolveVariant picks the table variant for the requested mode, or
// rejects the save when ModeNever cannot hold the content.
func (a *Archive) resolveVariant(mode archive.Mode) (bool, error) {
	limit := a.engine.opts.limit32()

	required := uint64(len(a.entries)) > limit
	for _, e := range a.entries {
		if uint64(e.origSize) > limit || uint64(e.compSize) > limit || uint64(e.offset) > limit {
			required = true
			break
		}
	}

	switch mode {
	case archive.ModeAlways:
		return true, nil
	case archive.ModeNever:
		if required {
			return false, fmt.Errorf("lz4arc: save with mode never: %w", archive.ErrLimitExceeded)
		}
		return false, nil
	default:
		return required, nil
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
