package progress

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/rmarsh/ziptrial/internal/archive"
	"github.com/rmarsh/ziptrial/internal/telemetry"
	"github.com/rmarsh/ziptrial/internal/testutil"
)

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestBridge_SavePassGolden(t *testing.T) {
	var sink telemetry.Capture
	b := NewBridge(&sink)

	// One regular entry and one zero-length entry, so the golden file
	// pins both the normal byte translation and the empty-entry guard.
	testutil.Play(b, testutil.SavePass(map[string]int64{
		"a.bin": 4,
		"b.txt": 0,
	}))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "save_pass", []byte(strings.Join(sink.Lines(), "\n")+"\n"))
}

func TestBridge_ExtractPass(t *testing.T) {
	var sink telemetry.Capture
	b := NewBridge(&sink)

	testutil.Play(b, testutil.ExtractPass(map[string]int64{
		"data/one.bin": 10,
		"data/two.bin": 20,
	}))

	lines := sink.Lines()
	assert.Equal(t, "status Extracting archive (2 entries)", lines[0])
	assert.Contains(t, lines, "status Extracting data/one.bin")
	assert.Contains(t, lines, "status Extracting data/two.bin")
	assert.Equal(t, 2, countPrefix(lines, "pb 1 step"), "one step per entry")
	assert.Equal(t, "status Extract complete", lines[len(lines)-1])
}

func TestBridge_ArchiveMaxOncePerPass(t *testing.T) {
	var sink telemetry.Capture
	b := NewBridge(&sink)

	testutil.Play(b, testutil.SavePass(map[string]int64{"a": 1, "b": 1, "c": 1}))

	lines := sink.Lines()
	assert.Equal(t, 1, countPrefix(lines, "pb 1 max 3"), "bar 1 maximum announced once")
	assert.Equal(t, 3, countPrefix(lines, "pb 2 max"), "bar 2 maximum announced per entry")
}

func TestBridge_MaxReannouncedNextPass(t *testing.T) {
	var sink telemetry.Capture
	b := NewBridge(&sink)

	// The same bridge carried across two passes must not treat the
	// second pass's first entry as already announced.
	testutil.Play(b, testutil.SavePass(map[string]int64{"a": 1, "b": 1}))
	testutil.Play(b, testutil.SavePass(map[string]int64{"a": 1, "b": 1}))

	lines := sink.Lines()
	assert.Equal(t, 2, countPrefix(lines, "pb 1 max 2"))
}

func TestBridge_EntryBytesMonotonic(t *testing.T) {
	var sink telemetry.Capture
	b := NewBridge(&sink)

	events := []archive.Event{
		{Kind: archive.SaveStarted, EntriesTotal: 1},
		{Kind: archive.EntrySaveBegin, EntryName: "big.bin"},
		{Kind: archive.EntryBytesRead, EntryName: "big.bin", BytesTransferred: 256, TotalBytes: 1024},
		{Kind: archive.EntryBytesRead, EntryName: "big.bin", BytesTransferred: 512, TotalBytes: 1024},
		{Kind: archive.EntryBytesRead, EntryName: "big.bin", BytesTransferred: 1024, TotalBytes: 1024},
		{Kind: archive.EntrySaveEnd, EntryName: "big.bin"},
		{Kind: archive.SaveCompleted},
	}
	testutil.Play(b, events)

	lines := sink.Lines()
	assert.Equal(t, 1, countPrefix(lines, "pb 2 max 1024"), "bar 2 maximum set once per entry")

	var values []string
	for _, l := range lines {
		if strings.HasPrefix(l, "pb 2 value ") {
			values = append(values, l)
		}
	}
	assert.Equal(t, []string{"pb 2 value 256", "pb 2 value 512", "pb 2 value 1024"}, values)
	assert.Contains(t, lines, "status 25%")
	assert.Contains(t, lines, "status 50%")
	assert.Contains(t, lines, "status 100%")
}

func TestBridge_ZeroLengthEntry(t *testing.T) {
	var sink telemetry.Capture
	b := NewBridge(&sink)

	events := []archive.Event{
		{Kind: archive.SaveStarted, EntriesTotal: 1},
		{Kind: archive.EntrySaveBegin, EntryName: "empty.dat"},
		{Kind: archive.EntryBytesRead, EntryName: "empty.dat", BytesTransferred: 0, TotalBytes: 0},
		{Kind: archive.EntrySaveEnd, EntryName: "empty.dat"},
		{Kind: archive.SaveCompleted},
	}
	testutil.Play(b, events)

	lines := sink.Lines()
	assert.Contains(t, lines, "pb 2 max 0")
	assert.Contains(t, lines, "status 100%", "empty entries report as complete, never divide by zero")
}

func TestBridge_CompletionSequence(t *testing.T) {
	var sink telemetry.Capture
	b := NewBridge(&sink)

	testutil.Play(b, testutil.SavePass(map[string]int64{"x": 1}))

	lines := sink.Lines()
	n := len(lines)
	assert.Equal(t, "pb 1 max 1", lines[n-3])
	assert.Equal(t, "pb 1 value 1", lines[n-2])
	assert.Equal(t, "status Save complete", lines[n-1])
}

func TestNewBridge_NilSink(t *testing.T) {
	b := NewBridge(nil)
	testutil.Play(b, testutil.SavePass(map[string]int64{"a": 1}))
}
