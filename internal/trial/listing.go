package trial

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// listingSlack pads the scan cap so legitimate headers and footers in a
// tool's output do not trip the guard.
const listingSlack = 64

// ParseListing scans an external listing tool's textual output for entry
// names: the last whitespace-separated field of every non-blank,
// non-comment line. Lines whose last field carries no dot or path
// separator cannot be entry names and are skipped, so headers and
// footers like "total 3 entries" do not turn into phantom entries. A
// hard iteration cap (a small multiple of the expected entry count)
// guards against malformed output; exceeding it is a fatal parse
// failure, never a silent truncation.
func ParseListing(r io.Reader, expectedEntries int) ([]string, error) {
	maxLines := expectedEntries*4 + listingSlack

	scanner := bufio.NewScanner(r)
	var names []string
	lines := 0
	for scanner.Scan() {
		lines++
		if lines > maxLines {
			return nil, fmt.Errorf("listing scan exceeded %d lines for %d expected entries: output malformed", maxLines, expectedEntries)
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		name := fields[len(fields)-1]
		if !strings.ContainsAny(name, "./") {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	return names, nil
}

// crossCheckListing runs the configured external lister over the
// artifact and verifies that every archive entry appears in its output.
// A missing lister binary is a fatal precondition failure.
func crossCheckListing(ctx context.Context, command []string, artifact string, want []string) error {
	if len(command) == 0 {
		return nil
	}
	bin := command[0]
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("required listing tool %q not found: %w", bin, err)
	}

	args := append(append([]string(nil), command[1:]...), artifact)
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("listing tool %q failed: %w", bin, err)
	}

	listed, err := ParseListing(&out, len(want))
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(listed))
	for _, name := range listed {
		seen[name] = true
	}
	for _, name := range want {
		if !seen[name] {
			return fmt.Errorf("entry %q missing from external listing", name)
		}
	}
	return nil
}
