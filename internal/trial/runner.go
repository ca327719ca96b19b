package trial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rmarsh/ziptrial/internal/archive"
	"github.com/rmarsh/ziptrial/internal/checksum"
	"github.com/rmarsh/ziptrial/internal/progress"
	"github.com/rmarsh/ziptrial/internal/telemetry"
	"github.com/rmarsh/ziptrial/internal/verifier"
)

// Runner executes a trial matrix against an archive engine. Trials run
// strictly sequentially; a Runner is not safe for concurrent use.
type Runner struct {
	// Engine is the archive engine under test.
	Engine archive.Engine

	// Sink receives telemetry lines. Nil disables telemetry.
	Sink telemetry.Sink

	// Logger defaults to a discard logger.
	Logger *slog.Logger

	// WorkDir holds transient artifacts, removed per trial unless
	// KeepArtifacts is set.
	WorkDir string

	// KeepArtifacts leaves archives and checksum databases on disk for
	// post-mortem inspection of failed runs.
	KeepArtifacts bool

	// Limit32 is the boundary huge trials must prove they crossed.
	// Defaults to math.MaxUint32.
	Limit32 uint64
}

func (r *Runner) sink() telemetry.Sink {
	if r.Sink == nil {
		return telemetry.Nop{}
	}
	return r.Sink
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

func (r *Runner) limit32() uint64 {
	if r.Limit32 == 0 {
		return math.MaxUint32
	}
	return r.Limit32
}

// RunMatrix generates the matrix for cfg and executes every trial.
// Trial failures are collected in the report rather than returned; the
// error return covers harness-level problems (bad configuration,
// unusable work directory). A checksum mismatch stops the run after the
// failing trial, since later trials may depend on the same artifact
// pipeline.
func (r *Runner) RunMatrix(ctx context.Context, cfg *Config) (*Report, error) {
	if r.Engine == nil {
		return nil, fmt.Errorf("run matrix: no engine configured")
	}
	if r.WorkDir == "" {
		return nil, fmt.Errorf("run matrix: no work directory configured")
	}
	if err := os.MkdirAll(r.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("run matrix: work directory: %w", err)
	}
	if len(cfg.Lister) > 0 {
		if _, err := exec.LookPath(cfg.Lister[0]); err != nil {
			return nil, fmt.Errorf("run matrix: required listing tool %q not found: %w", cfg.Lister[0], err)
		}
	}

	rnd := rand.New(rand.NewSource(cfg.Seed))
	specs := Matrix(cfg, rnd)
	logger := r.logger()
	logger.Info("matrix generated", "config", cfg.Name, "trials", len(specs), "seed", cfg.Seed)

	report := NewReport(cfg.Name)
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run matrix: %w", err)
		}

		tr := r.runTrial(ctx, cfg, spec, rnd)
		report.Add(tr)
		if tr.Pass {
			logger.Info("trial passed", "trial", tr.Name, "entries", tr.Entries, "bytes", tr.Bytes)
			continue
		}
		logger.Error("trial failed", "trial", tr.Name, "error", tr.Error)

		// Later trials may reuse the artifact pipeline a corrupted
		// round trip came from; stop rather than cascade.
		if tr.mismatch {
			logger.Error("checksum verification failed, aborting dependent trials")
			break
		}
	}
	return report, nil
}

// runTrial executes one matrix cell and never panics across the
// boundary; all failures land in the TrialResult.
func (r *Runner) runTrial(ctx context.Context, cfg *Config, spec Spec, rnd *rand.Rand) TrialResult {
	name := spec.Name()
	r.sink().SendLine(telemetry.TestLine(name))
	r.logger().Info("trial starting", "trial", name, "op", string(spec.Op),
		"incoming", spec.Incoming.String(), "outgoing", spec.Outgoing.String(),
		"entries", spec.EntryCount)

	tr := TrialResult{Spec: spec, Name: name}
	entries, bytes, err := r.execute(ctx, cfg, spec, name, rnd)
	tr.Entries = entries
	tr.Bytes = bytes
	if err != nil {
		tr.Error = err.Error()
		var mm *checksum.Mismatch
		tr.mismatch = errors.As(err, &mm)
		return tr
	}
	tr.Pass = true
	return tr
}

func (r *Runner) execute(ctx context.Context, cfg *Config, spec Spec, name string, rnd *rand.Rand) (entries int, bytes int64, err error) {
	reg, err := r.openRegistry(name)
	if err != nil {
		return 0, 0, err
	}
	defer reg.Close()

	artifact := filepath.Join(r.WorkDir, fmt.Sprintf("%s-%s.zt4", name, uuid.NewString()[:8]))
	if !r.KeepArtifacts {
		defer os.Remove(artifact)
	}

	arc, err := r.Engine.Create(artifact)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: create archive: %w", name, err)
	}
	// arc is swapped on each reopen; close whichever handle is current.
	defer func() {
		if arc != nil {
			arc.Close()
		}
	}()

	// Setup: populate entries and record checksums from the same
	// sources the archive will stream.
	population := populate(spec, cfg, rnd)
	for _, e := range population {
		canonical := checksum.CanonicalName(e.name)
		if err := reg.Record(ctx, canonical, e.content); err != nil {
			return 0, 0, fmt.Errorf("%s: %w", name, err)
		}
		if err := arc.Add(canonical, e.content); err != nil {
			return 0, 0, fmt.Errorf("%s: add %q: %w", name, canonical, err)
		}
	}

	bridge := progress.NewBridge(r.sink())

	firstMode := spec.Outgoing
	if spec.Op != OpCreate {
		firstMode = spec.Incoming
	}
	if err := r.savePass(arc, bridge, firstMode); err != nil {
		return 0, 0, fmt.Errorf("%s: initial save: %w", name, err)
	}
	if err := assertPolicy(name, arc, firstMode); err != nil {
		return 0, 0, err
	}

	if spec.Op != OpCreate {
		if arc, err = r.reopen(arc, artifact); err != nil {
			return 0, 0, fmt.Errorf("%s: reopen for %s: %w", name, spec.Op, err)
		}

		if spec.Huge {
			if err := r.verifyHuge(name, arc, bridge, "before update"); err != nil {
				return 0, 0, err
			}
		}

		if spec.Mutate {
			if err := r.mutate(ctx, name, arc, reg, rnd); err != nil {
				return 0, 0, err
			}
		}

		if err := r.savePass(arc, bridge, spec.Outgoing); err != nil {
			return 0, 0, fmt.Errorf("%s: second save: %w", name, err)
		}
		if err := assertPolicy(name, arc, spec.Outgoing); err != nil {
			return 0, 0, err
		}

		if spec.Huge {
			if err := r.verifyHuge(name, arc, bridge, "after update"); err != nil {
				return 0, 0, err
			}
		}
	}

	// Final reopen and verification.
	if arc, err = r.reopen(arc, artifact); err != nil {
		return 0, 0, fmt.Errorf("%s: final reopen: %w", name, err)
	}

	surviving := arc.Entries()
	recorded, err := reg.Len(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", name, err)
	}
	if len(surviving) != recorded {
		return 0, 0, &AssertionError{
			Trial:    name,
			Subject:  "entry count",
			Expected: fmt.Sprintf("%d entries", recorded),
			Actual:   fmt.Sprintf("%d entries", len(surviving)),
		}
	}

	entries, bytes, err = r.extractAndVerify(ctx, arc, reg, bridge)
	if err != nil {
		return entries, bytes, fmt.Errorf("%s: %w", name, err)
	}

	if err := crossCheckListing(ctx, cfg.Lister, artifact, surviving); err != nil {
		return entries, bytes, fmt.Errorf("%s: %w", name, err)
	}

	return entries, bytes, nil
}

// savePass runs one save with the bridge subscribed for its duration,
// so a later pass on the same archive is not translated twice.
func (r *Runner) savePass(arc archive.Archive, bridge *progress.Bridge, mode archive.Mode) error {
	unsubscribe := arc.Subscribe(bridge)
	defer unsubscribe()
	return arc.Save(mode)
}

// reopen closes the current handle and reopens the persisted artifact.
func (r *Runner) reopen(arc archive.Archive, artifact string) (archive.Archive, error) {
	if err := arc.Close(); err != nil {
		return arc, fmt.Errorf("close before reopen: %w", err)
	}
	return r.Engine.Open(artifact)
}

// mutate renames one entry and removes one extension class, mirroring
// both operations into the registry so verification only consults
// surviving names.
func (r *Runner) mutate(ctx context.Context, name string, arc archive.Archive, reg *checksum.Registry, rnd *rand.Rand) error {
	removal := pickRemovalClass(rnd)

	// Rename an entry the removal pass will not take away. The ".keep"
	// suffix moves it out of every extension class.
	var renamed string
	for _, entry := range arc.Entries() {
		if ok, _ := path.Match(removal, path.Base(entry)); !ok {
			renamed = entry
			break
		}
	}
	if renamed != "" {
		newName := renamed + ".keep"
		if err := arc.Rename(renamed, newName); err != nil {
			return fmt.Errorf("%s: rename: %w", name, err)
		}
		if err := reg.Rename(ctx, renamed, newName); err != nil {
			return fmt.Errorf("%s: registry rename: %w", name, err)
		}
		r.logger().Debug("entry renamed", "trial", name, "from", renamed, "to", newName)
	}

	removedArc, err := arc.RemoveMatching(removal)
	if err != nil {
		return fmt.Errorf("%s: remove %s: %w", name, removal, err)
	}
	removedReg, err := reg.RemoveMatching(ctx, removal)
	if err != nil {
		return fmt.Errorf("%s: registry remove %s: %w", name, removal, err)
	}
	if removedArc != removedReg {
		return &AssertionError{
			Trial:    name,
			Subject:  fmt.Sprintf("removal class %s", removal),
			Expected: fmt.Sprintf("%d removals in archive and registry", removedArc),
			Actual:   fmt.Sprintf("%d registry removals", removedReg),
		}
	}
	r.logger().Debug("entries removed", "trial", name, "class", removal, "count", removedArc)
	return nil
}

// extractAndVerify streams every surviving entry through a digest
// writer and compares against the registry. The extract pass events
// flow through the bridge; pass boundaries are emitted here since the
// engine only knows individual extractions.
func (r *Runner) extractAndVerify(ctx context.Context, arc archive.Archive, reg *checksum.Registry, bridge *progress.Bridge) (int, int64, error) {
	unsubscribe := arc.Subscribe(bridge)
	defer unsubscribe()

	names := arc.Entries()
	bridge.OnArchiveEvent(archive.Event{Kind: archive.ExtractStarted, EntriesTotal: len(names)})

	var total int64
	for i, entry := range names {
		w := checksum.NewWriter()
		if err := arc.Extract(entry, w); err != nil {
			return i, total, fmt.Errorf("extract %q: %w", entry, err)
		}
		total += w.Bytes()

		expected, err := reg.Expected(ctx, entry)
		if err != nil {
			return i, total, err
		}
		if actual := w.Sum(); actual != expected {
			return i, total, &checksum.Mismatch{Name: entry, Expected: expected, Actual: actual}
		}
	}

	bridge.OnArchiveEvent(archive.Event{Kind: archive.ExtractCompleted})
	return len(names), total, nil
}

// verifyHuge runs the large-archive verifier over the artifact and
// asserts the on-disk size actually crossed the 32-bit boundary,
// proving the size-extension mode was exercised rather than assumed.
func (r *Runner) verifyHuge(name string, arc archive.Archive, bridge *progress.Bridge, when string) error {
	v := &verifier.Verifier{Observer: bridge}
	res, err := v.Verify(arc)
	if err != nil {
		return fmt.Errorf("%s: huge verification %s: %w", name, when, err)
	}
	r.logger().Info("huge archive verified", "trial", name, "when", when,
		"entries", res.Entries, "bytes", res.Bytes)

	size, err := arc.FileSize()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if uint64(size) <= r.limit32() {
		return &AssertionError{
			Trial:    name,
			Subject:  fmt.Sprintf("artifact size %s", when),
			Expected: fmt.Sprintf("> %d bytes", r.limit32()),
			Actual:   fmt.Sprintf("%d bytes", size),
		}
	}
	return nil
}

func (r *Runner) openRegistry(name string) (*checksum.Registry, error) {
	if r.KeepArtifacts {
		return checksum.Open(filepath.Join(r.WorkDir, name+".checksums.db"))
	}
	return checksum.Open(":memory:")
}
