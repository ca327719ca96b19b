package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarsh/ziptrial/internal/archive"
)

func TestNewRand_Deterministic(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestEventRecorder(t *testing.T) {
	var rec EventRecorder
	Play(&rec, []archive.Event{
		{Kind: archive.SaveStarted, EntriesTotal: 2},
		{Kind: archive.SaveCompleted},
	})

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, 2, events[0].EntriesTotal)
	assert.Equal(t, []archive.EventKind{archive.SaveStarted, archive.SaveCompleted}, rec.Kinds())

	// Events returns a copy.
	events[0].EntriesTotal = 99
	assert.Equal(t, 2, rec.Events()[0].EntriesTotal)
}

func TestSavePass_Shape(t *testing.T) {
	events := SavePass(map[string]int64{"b.bin": 10, "a.bin": 5})
	require.Len(t, events, 1+2*3+1)

	assert.Equal(t, archive.SaveStarted, events[0].Kind)
	assert.Equal(t, 2, events[0].EntriesTotal)
	// Entries are scripted in sorted order for stable assertions.
	assert.Equal(t, "a.bin", events[1].EntryName)
	assert.Equal(t, "b.bin", events[4].EntryName)
	assert.Equal(t, int64(5), events[2].TotalBytes)
	assert.Equal(t, archive.SaveCompleted, events[len(events)-1].Kind)
}

func TestExtractPass_Shape(t *testing.T) {
	events := ExtractPass(map[string]int64{"x.bin": 7})
	require.Len(t, events, 5)
	assert.Equal(t, archive.ExtractStarted, events[0].Kind)
	assert.Equal(t, archive.EntryExtractBegin, events[1].Kind)
	assert.Equal(t, archive.EntryBytesWritten, events[2].Kind)
	assert.Equal(t, archive.EntryExtractEnd, events[3].Kind)
	assert.Equal(t, archive.ExtractCompleted, events[4].Kind)
}
