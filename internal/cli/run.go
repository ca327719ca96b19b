package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmarsh/ziptrial/internal/lz4arc"
	"github.com/rmarsh/ziptrial/internal/telemetry"
	"github.com/rmarsh/ziptrial/internal/trial"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Channel       string
	WorkDir       string
	KeepArtifacts bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Execute the trial matrix described by a config file",
		Long: `Execute every trial in the matrix config: create, convert and update
operations crossed with size-extension policies, each verified by
checksum round trip.

With --channel, progress is mirrored to a monitor listening on the
named channel; the monitor's absence never affects trial outcome.

Example:
  ziptrial run matrix.yaml
  ziptrial run matrix.yaml --channel ziptrial-monitor --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "", "telemetry channel name (empty disables telemetry)")
	cmd.Flags().StringVar(&opts.WorkDir, "work-dir", "", "directory for transient artifacts (default: a temp dir)")
	cmd.Flags().BoolVar(&opts.KeepArtifacts, "keep-artifacts", false, "keep archives and checksum databases after the run")

	return cmd
}

func runMatrix(cmd *cobra.Command, opts *RunOptions, configPath string) error {
	logger := opts.Logger()

	cfg, err := trial.LoadConfig(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "ziptrial-*")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create work directory", err)
		}
		if !opts.KeepArtifacts {
			defer os.RemoveAll(workDir)
		}
	}

	// The channel is torn down on every exit path, so the monitor
	// always receives its stop message even when a trial fails.
	var sink telemetry.Sink = telemetry.Nop{}
	if opts.Channel != "" {
		ch := telemetry.Open(opts.Channel, logger)
		defer ch.Close()
		sink = ch
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runner := &trial.Runner{
		Engine:        lz4arc.New(lz4arc.Options{}),
		Sink:          sink,
		Logger:        logger,
		WorkDir:       workDir,
		KeepArtifacts: opts.KeepArtifacts,
	}

	report, err := runner.RunMatrix(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "matrix run aborted", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode report", err)
		}
	} else {
		if err := formatter.Success(report.Summary()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
		for _, tr := range report.Failed() {
			formatter.Error(tr.Name+": "+tr.Error, nil)
		}
	}

	if !report.Pass {
		return NewExitError(ExitFailure, "one or more trials failed")
	}
	return nil
}
