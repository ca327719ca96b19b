package lz4arc

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerMagic = "ZT4A"
	footerMagic = "ZT4E"
	version     = 1

	headerLen = 5  // magic + version byte
	footerLen = 13 // flags byte + table offset u64 + magic

	flagWideTable = 0x01
)

var byteOrder = binary.LittleEndian

// writeHeader writes the fixed container header.
func writeHeader(w io.Writer) error {
	buf := make([]byte, headerLen)
	copy(buf, headerMagic)
	buf[4] = version
	_, err := w.Write(buf)
	return err
}

// writeFooter writes the trailing flags, table offset and magic.
func writeFooter(w io.Writer, wide bool, tableOff int64) error {
	buf := make([]byte, footerLen)
	if wide {
		buf[0] = flagWideTable
	}
	byteOrder.PutUint64(buf[1:9], uint64(tableOff))
	copy(buf[9:], footerMagic)
	_, err := w.Write(buf)
	return err
}

// writeTable writes the entry table in the selected variant. Callers
// have already verified that every field fits when wide is false.
func writeTable(w io.Writer, entries []*entry, wide bool) error {
	if err := writeNum(w, uint64(len(entries)), wide); err != nil {
		return err
	}
	for _, e := range entries {
		name := []byte(e.name)
		if len(name) > 0xFFFF {
			return fmt.Errorf("lz4arc: entry name too long (%d bytes)", len(name))
		}
		var nameLen [2]byte
		byteOrder.PutUint16(nameLen[:], uint16(len(name)))
		if _, err := w.Write(nameLen[:]); err != nil {
			return err
		}
		if _, err := w.Write(name); err != nil {
			return err
		}
		for _, v := range []uint64{uint64(e.origSize), uint64(e.compSize), uint64(e.offset)} {
			if err := writeNum(w, v, wide); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeNum(w io.Writer, v uint64, wide bool) error {
	if wide {
		var buf [8]byte
		byteOrder.PutUint64(buf[:], v)
		_, err := w.Write(buf[:])
		return err
	}
	var buf [4]byte
	byteOrder.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

// loadTable reads the footer and entry table of a.file, populating
// a.entries and a.extUsed.
func (a *Archive) loadTable() error {
	info, err := a.file.Stat()
	if err != nil {
		return fmt.Errorf("lz4arc: stat: %w", err)
	}
	if info.Size() < headerLen+footerLen {
		return fmt.Errorf("lz4arc: %s: file too short to be a container", a.path)
	}

	header := make([]byte, headerLen)
	if _, err := a.file.ReadAt(header, 0); err != nil {
		return fmt.Errorf("lz4arc: read header: %w", err)
	}
	if string(header[:4]) != headerMagic {
		return fmt.Errorf("lz4arc: %s: bad magic", a.path)
	}
	if header[4] != version {
		return fmt.Errorf("lz4arc: %s: unsupported version %d", a.path, header[4])
	}

	footer := make([]byte, footerLen)
	if _, err := a.file.ReadAt(footer, info.Size()-footerLen); err != nil {
		return fmt.Errorf("lz4arc: read footer: %w", err)
	}
	if string(footer[9:]) != footerMagic {
		return fmt.Errorf("lz4arc: %s: bad footer magic", a.path)
	}
	wide := footer[0]&flagWideTable != 0
	tableOff := int64(byteOrder.Uint64(footer[1:9]))
	if tableOff < headerLen || tableOff >= info.Size()-footerLen {
		return fmt.Errorf("lz4arc: %s: table offset %d out of range", a.path, tableOff)
	}

	tableBytes := info.Size() - footerLen - tableOff
	r := io.NewSectionReader(a.file, tableOff, tableBytes)
	count, err := readNum(r, wide)
	if err != nil {
		return fmt.Errorf("lz4arc: read entry count: %w", err)
	}

	// The count is untrusted. Each entry occupies at least the name
	// length prefix plus three numeric fields; a count the table cannot
	// physically hold is corruption, not an allocation size.
	numSize := int64(4)
	if wide {
		numSize = 8
	}
	if maxEntries := uint64((tableBytes - numSize) / (2 + 3*numSize)); count > maxEntries {
		return fmt.Errorf("lz4arc: %s: entry count %d exceeds table capacity", a.path, count)
	}

	entries := make([]*entry, 0, count)
	for i := uint64(0); i < count; i++ {
		var nameLen [2]byte
		if _, err := io.ReadFull(r, nameLen[:]); err != nil {
			return fmt.Errorf("lz4arc: read entry %d: %w", i, err)
		}
		name := make([]byte, byteOrder.Uint16(nameLen[:]))
		if _, err := io.ReadFull(r, name); err != nil {
			return fmt.Errorf("lz4arc: read entry %d name: %w", i, err)
		}
		var fields [3]uint64
		for j := range fields {
			fields[j], err = readNum(r, wide)
			if err != nil {
				return fmt.Errorf("lz4arc: read entry %d fields: %w", i, err)
			}
		}
		entries = append(entries, &entry{
			name:     string(name),
			origSize: int64(fields[0]),
			compSize: int64(fields[1]),
			offset:   int64(fields[2]),
		})
	}

	a.entries = entries
	a.extUsed = wide
	return nil
}

func readNum(r io.Reader, wide bool) (uint64, error) {
	if wide {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return byteOrder.Uint64(buf[:]), nil
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return uint64(byteOrder.Uint32(buf[:])), nil
}
