package trial

import (
	"fmt"
	"math/rand"

	"github.com/rmarsh/ziptrial/internal/archive"
)

// Op is the operation kind of one trial.
type Op string

const (
	// OpCreate builds a fresh archive and verifies it directly.
	OpCreate Op = "create"

	// OpConvert re-saves an existing archive under a second policy
	// without touching its entries.
	OpConvert Op = "convert"

	// OpUpdate mutates an existing archive (one rename, one
	// extension-class removal) before re-saving under a second policy.
	OpUpdate Op = "update"
)

// ParseOp validates the config spelling of an operation kind.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpCreate, OpConvert, OpUpdate:
		return Op(s), nil
	default:
		return "", fmt.Errorf("unknown operation %q (want create, convert or update)", s)
	}
}

// Spec is one immutable matrix cell. Incoming is the policy of the
// initial artifact; Outgoing is the policy of the final artifact. For
// create trials only Outgoing applies.
type Spec struct {
	Index      int
	Op         Op
	Incoming   archive.Mode
	Outgoing   archive.Mode
	EntryCount int
	Mutate     bool
	Huge       bool
}

// Name returns the scenario identifier announced on the telemetry
// channel and used in failure context.
func (s Spec) Name() string {
	if s.Op == OpCreate {
		return fmt.Sprintf("trial-%02d-create-%s", s.Index, s.Outgoing)
	}
	return fmt.Sprintf("trial-%02d-%s-%s-to-%s", s.Index, s.Op, s.Incoming, s.Outgoing)
}

// Matrix expands a config into the full trial list. Entry counts are
// drawn from rnd within the configured bounds, so the same seed yields
// the same matrix.
func Matrix(cfg *Config, rnd *rand.Rand) []Spec {
	var specs []Spec
	next := 0
	add := func(s Spec) {
		s.Index = next
		next++
		specs = append(specs, s)
	}

	entryCount := func() int {
		span := cfg.MaxEntries - cfg.MinEntries
		if span <= 0 {
			return cfg.MinEntries
		}
		return cfg.MinEntries + rnd.Intn(span+1)
	}

	for _, op := range cfg.Ops {
		switch op {
		case OpCreate:
			for _, out := range cfg.Modes {
				add(Spec{Op: op, Outgoing: out, EntryCount: entryCount()})
			}
		default:
			for _, in := range cfg.Modes {
				for _, out := range cfg.Modes {
					add(Spec{
						Op:         op,
						Incoming:   in,
						Outgoing:   out,
						EntryCount: entryCount(),
						Mutate:     op == OpUpdate && cfg.Mutate,
					})
				}
			}
		}
	}

	if cfg.Huge.Enabled {
		add(Spec{
			Op:         OpUpdate,
			Incoming:   archive.ModeAlways,
			Outgoing:   archive.ModeAlways,
			EntryCount: cfg.Huge.Entries,
			Mutate:     cfg.Mutate,
			Huge:       true,
		})
	}

	return specs
}
