package lz4arc

import (
	"fmt"
	"path"

	"github.com/rmarsh/ziptrial/internal/archive"
)

// Add implements archive.Archive. The source is not read until Save; it
// must remain reopenable until then.
func (a *Archive) Add(name string, src archive.ContentSource) error {
	if name == "" {
		return fmt.Errorf("lz4arc: empty entry name")
	}
	if _, existing := a.find(name); existing != nil {
		return fmt.Errorf("lz4arc: entry %q already present", name)
	}
	a.entries = append(a.entries, &entry{
		name:     name,
		origSize: src.Size(),
		src:      src,
	})
	return nil
}

// Rename implements archive.Archive.
func (a *Archive) Rename(oldName, newName string) error {
	if _, clash := a.find(newName); clash != nil {
		return fmt.Errorf("lz4arc: rename target %q already present", newName)
	}
	_, e := a.find(oldName)
	if e == nil {
		return fmt.Errorf("lz4arc: rename %q: %w", oldName, archive.ErrEntryNotFound)
	}
	e.name = newName
	return nil
}

// RemoveMatching implements archive.Archive. The glob is matched with
// path.Match against the entry's base name, so extension-class patterns
// like "*.dat" reach entries in subdirectories too.
func (a *Archive) RemoveMatching(glob string) (int, error) {
	kept := a.entries[:0]
	removed := 0
	for _, e := range a.entries {
		ok, err := path.Match(glob, path.Base(e.name))
		if err != nil {
			return removed, fmt.Errorf("lz4arc: remove matching %q: %w", glob, err)
		}
		if ok {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	a.entries = kept
	return removed, nil
}
