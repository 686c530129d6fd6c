package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/querygen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Ledger string
	Output string // filter by artifact path
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recorded generator runs",
		Long:          `List the runs in a SQLite ledger in seq order, optionally for one artifact.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "SQLite run ledger path (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "only runs for this artifact path")
	cmd.MarkFlagRequired("ledger")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Open would create an empty ledger; a typo should be reported instead.
	if _, err := os.Stat(opts.Ledger); errors.Is(err, fs.ErrNotExist) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("ledger not found: %s", opts.Ledger), nil)
	}

	st, err := store.Open(opts.Ledger)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeLedger, "opening ledger", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, opts.Output)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeLedger, "reading ledger", err)
	}
	if runs == nil {
		runs = []store.Run{}
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "#%d %s %s %d case(s) %d block(s) v%s\n",
			run.Seq, run.ArtifactPath, shortHash(run.ArtifactHash),
			run.CaseCount, run.BlockCount, run.GeneratorVersion)
		formatter.VerboseLog("  id=%s catalog=%s", run.ID, run.CatalogHash)
	}
	return nil
}

// shortHash trims a hex digest for table output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
