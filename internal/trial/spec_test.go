package trial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmarsh/ziptrial/internal/archive"
	"github.com/rmarsh/ziptrial/internal/testutil"
)

func matrixConfig() *Config {
	return &Config{
		Name:         "matrix-test",
		Seed:         7,
		Modes:        []archive.Mode{archive.ModeAlways, archive.ModeNever, archive.ModeAsNecessary},
		Ops:          []Op{OpCreate, OpConvert, OpUpdate},
		MinEntries:   3,
		MaxEntries:   6,
		MinEntrySize: 16,
		MaxEntrySize: 256,
		Mutate:       true,
	}
}

func TestSpecName(t *testing.T) {
	create := Spec{Index: 0, Op: OpCreate, Outgoing: archive.ModeAlways}
	assert.Equal(t, "trial-00-create-always", create.Name())

	convert := Spec{Index: 7, Op: OpConvert, Incoming: archive.ModeNever, Outgoing: archive.ModeAsNecessary}
	assert.Equal(t, "trial-07-convert-never-to-asNecessary", convert.Name())

	update := Spec{Index: 12, Op: OpUpdate, Incoming: archive.ModeAsNecessary, Outgoing: archive.ModeNever}
	assert.Equal(t, "trial-12-update-asNecessary-to-never", update.Name())
}

func TestMatrix_Shape(t *testing.T) {
	cfg := matrixConfig()
	specs := Matrix(cfg, testutil.NewRand(cfg.Seed))

	// create crosses outgoing modes only; convert and update cross the
	// full incoming x outgoing product.
	require.Len(t, specs, 3+9+9)

	for i, s := range specs {
		assert.Equal(t, i, s.Index, "indices are sequential")
		assert.GreaterOrEqual(t, s.EntryCount, cfg.MinEntries)
		assert.LessOrEqual(t, s.EntryCount, cfg.MaxEntries)
		assert.False(t, s.Huge)
	}

	creates := specs[:3]
	for _, s := range creates {
		assert.Equal(t, OpCreate, s.Op)
		assert.False(t, s.Mutate)
	}

	for _, s := range specs[3:12] {
		assert.Equal(t, OpConvert, s.Op)
		assert.False(t, s.Mutate, "convert never mutates")
	}
	for _, s := range specs[12:] {
		assert.Equal(t, OpUpdate, s.Op)
		assert.True(t, s.Mutate)
	}
}

func TestMatrix_CoversModeProduct(t *testing.T) {
	cfg := matrixConfig()
	cfg.Ops = []Op{OpConvert}
	specs := Matrix(cfg, testutil.NewRand(cfg.Seed))
	require.Len(t, specs, 9)

	seen := make(map[[2]archive.Mode]bool)
	for _, s := range specs {
		seen[[2]archive.Mode{s.Incoming, s.Outgoing}] = true
	}
	assert.Len(t, seen, 9, "every incoming/outgoing pair appears exactly once")
}

func TestMatrix_Deterministic(t *testing.T) {
	cfg := matrixConfig()
	a := Matrix(cfg, testutil.NewRand(cfg.Seed))
	b := Matrix(cfg, testutil.NewRand(cfg.Seed))
	assert.Equal(t, a, b)
}

func TestMatrix_HugeVariant(t *testing.T) {
	cfg := matrixConfig()
	cfg.Huge = HugeConfig{Enabled: true, Entries: 5, EntrySize: 1 << 30}
	specs := Matrix(cfg, testutil.NewRand(cfg.Seed))

	last := specs[len(specs)-1]
	assert.True(t, last.Huge)
	assert.Equal(t, OpUpdate, last.Op)
	assert.Equal(t, archive.ModeAlways, last.Incoming)
	assert.Equal(t, archive.ModeAlways, last.Outgoing)
	assert.Equal(t, 5, last.EntryCount)
}

func TestMatrix_FixedEntryCount(t *testing.T) {
	cfg := matrixConfig()
	cfg.MinEntries = 4
	cfg.MaxEntries = 4
	for _, s := range Matrix(cfg, testutil.NewRand(1)) {
		assert.Equal(t, 4, s.EntryCount)
	}
}
