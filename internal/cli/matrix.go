package cli

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/rmarsh/ziptrial/internal/trial"
)

// MatrixOptions holds flags for the matrix command.
type MatrixOptions struct {
	*RootOptions
}

// NewMatrixCommand creates the matrix command, a dry run that prints
// the trials a config would execute.
func NewMatrixCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatrixOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "matrix <config.yaml>",
		Short: "Print the trial matrix without executing it",
		Long: `Expand the config into its trial matrix and print one line per
trial. Useful for checking what a seed generates before spending the
time (and disk) of a full run.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printMatrix(cmd, opts, args[0])
		},
	}

	return cmd
}

// matrixRow is the JSON shape of one printed trial.
type matrixRow struct {
	Name     string `json:"name"`
	Op       string `json:"op"`
	Incoming string `json:"incoming"`
	Outgoing string `json:"outgoing"`
	Entries  int    `json:"entries"`
	Mutate   bool   `json:"mutate"`
	Huge     bool   `json:"huge"`
}

func printMatrix(cmd *cobra.Command, opts *MatrixOptions, configPath string) error {
	cfg, err := trial.LoadConfig(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	specs := trial.Matrix(cfg, rand.New(rand.NewSource(cfg.Seed)))

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		rows := make([]matrixRow, len(specs))
		for i, s := range specs {
			rows[i] = matrixRow{
				Name:     s.Name(),
				Op:       string(s.Op),
				Incoming: s.Incoming.String(),
				Outgoing: s.Outgoing.String(),
				Entries:  s.EntryCount,
				Mutate:   s.Mutate,
				Huge:     s.Huge,
			}
		}
		return formatter.Success(rows)
	}

	for _, s := range specs {
		line := fmt.Sprintf("%-40s %-8s entries=%d", s.Name(), s.Op, s.EntryCount)
		if s.Mutate {
			line += " mutate"
		}
		if s.Huge {
			line += " huge"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d trials\n", len(specs))
	return nil
}
