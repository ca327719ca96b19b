package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmarsh/ziptrial/internal/lz4arc"
	"github.com/rmarsh/ziptrial/internal/progress"
	"github.com/rmarsh/ziptrial/internal/telemetry"
	"github.com/rmarsh/ziptrial/internal/verifier"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Channel string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <archive>",
		Short: "Stream-verify every entry of an archive",
		Long: `Extract every entry of the archive into a discarding sink, forcing
the engine to fully decode each one. Nothing is written to disk and
memory stays bounded regardless of archive size. The first entry that
fails to decode aborts the verification.

Example:
  ziptrial verify big-artifact.zt4
  ziptrial verify big-artifact.zt4 --channel ziptrial-monitor`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "", "telemetry channel name (empty disables telemetry)")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *VerifyOptions, artifact string) error {
	logger := opts.Logger()

	var sink telemetry.Sink = telemetry.Nop{}
	if opts.Channel != "" {
		ch := telemetry.Open(opts.Channel, logger)
		defer ch.Close()
		sink = ch
	}

	engine := lz4arc.New(lz4arc.Options{})
	arc, err := engine.Open(artifact)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer arc.Close()

	sink.SendLine(telemetry.TestLine("verify " + artifact))

	v := &verifier.Verifier{Observer: progress.NewBridge(sink)}
	res, err := v.Verify(arc)
	if err != nil {
		return WrapExitError(ExitFailure, "verification failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(res)
	}
	return formatter.Success(fmt.Sprintf("%s: %d entries, %d bytes decoded", artifact, res.Entries, res.Bytes))
}
