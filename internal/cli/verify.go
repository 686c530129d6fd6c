package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/querygen/internal/config"
	"github.com/roach88/querygen/internal/ir"
	"github.com/roach88/querygen/internal/store"
)

// Verify statuses.
const (
	VerifyUpToDate = "up_to_date"
	VerifyMissing  = "missing"
	VerifyDrift    = "drift"
)

// Drift causes, known only when a ledger records the previous run.
const (
	CauseEdited           = "edited"            // file differs from what the last run wrote
	CauseGeneratorChanged = "generator_changed" // file is what the last run wrote, output changed since
	CauseUnknown          = "unknown"
)

// VerifyResult is the payload of the verify command.
type VerifyResult struct {
	Output       string `json:"output"`
	Status       string `json:"status"`
	Cause        string `json:"cause,omitempty"`
	ExpectedHash string `json:"expected_hash"`
	ActualHash   string `json:"actual_hash,omitempty"`
	RecordedHash string `json:"recorded_hash,omitempty"`
	// CasesChanged is set when the enumerated cases differ from the last
	// recorded run. Nil without a ledger record carrying a case set hash.
	CasesChanged *bool `json:"cases_changed,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the artifact matches the generator output",
		Long: `Regenerate in memory and compare byte-for-byte with the artifact on disk.

Exits 1 when the file is missing or differs. With --ledger the last recorded
run tells a hand edit apart from a generator change.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts)
		},
	}

	bindGenerateFlags(cmd, opts)
	return cmd
}

func runVerify(cmd *cobra.Command, opts *GenerateOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := opts.logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "loading config", err)
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeCatalog, "loading catalog", err)
	}
	art, err := produce(ctx, cfg, cat, logger)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGenerate, "rendering templates", err)
	}

	result := VerifyResult{Output: cfg.Output, ExpectedHash: art.Hash}

	current, err := os.ReadFile(cfg.Output)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = VerifyMissing
	case err != nil:
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "reading artifact", err)
	default:
		result.ActualHash = ir.ArtifactHash(current)
		if result.ActualHash == result.ExpectedHash {
			result.Status = VerifyUpToDate
		} else {
			result.Status = VerifyDrift
		}
	}

	if result.Status == VerifyDrift {
		result.Cause = CauseUnknown
		if cfg.Ledger != "" {
			recorded, ok, err := lastRecordedRun(ctx, cfg)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeLedger, "reading ledger", err)
			}
			if ok {
				result.RecordedHash = recorded.ArtifactHash
				result.Cause = classifyDrift(result.ActualHash, recorded.ArtifactHash)
				changed, err := casesChanged(art.Cases, recorded)
				if err != nil {
					return formatter.fail(ExitCommandError, ErrCodeGenerate, "hashing cases", err)
				}
				result.CasesChanged = changed
			}
		}
	}

	logger.Info("artifact verified",
		zap.String("path", result.Output),
		zap.String("status", result.Status),
		zap.String("cause", result.Cause),
		zap.Boolp("cases_changed", result.CasesChanged),
	)

	if err := reportVerify(formatter, result); err != nil {
		return err
	}
	if result.Status != VerifyUpToDate {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s is %s", ErrCodeDrift, result.Output, result.Status))
	}
	return nil
}

// classifyDrift compares the file on disk with what the last run recorded.
func classifyDrift(actual, recorded string) string {
	if actual == recorded {
		return CauseGeneratorChanged
	}
	return CauseEdited
}

// casesChanged compares the current enumeration with the one recorded in run.
// Runs recorded before the case set hash existed yield nil.
func casesChanged(cases []ir.GenerationCase, run store.Run) (*bool, error) {
	if run.CaseSetHash == "" {
		return nil, nil
	}
	current, err := ir.CaseSetHash(cases)
	if err != nil {
		return nil, err
	}
	changed := current != run.CaseSetHash
	return &changed, nil
}

func lastRecordedRun(ctx context.Context, cfg config.Config) (store.Run, bool, error) {
	if _, err := os.Stat(cfg.Ledger); errors.Is(err, fs.ErrNotExist) {
		return store.Run{}, false, nil
	}
	st, err := store.Open(cfg.Ledger)
	if err != nil {
		return store.Run{}, false, err
	}
	defer st.Close()

	return st.LatestRun(ctx, cfg.Output)
}

func reportVerify(formatter *OutputFormatter, result VerifyResult) error {
	if formatter.Format == "json" {
		if result.Status == VerifyUpToDate {
			return formatter.Success(result)
		}
		return formatter.Error(ErrCodeDrift, fmt.Sprintf("%s is %s", result.Output, result.Status), result)
	}

	switch result.Status {
	case VerifyUpToDate:
		fmt.Fprintf(formatter.Writer, "✓ %s is up to date\n", result.Output)
	case VerifyMissing:
		fmt.Fprintf(formatter.Writer, "✗ %s does not exist\n", result.Output)
	default:
		fmt.Fprintf(formatter.Writer, "✗ %s differs from generator output\n", result.Output)
		switch result.Cause {
		case CauseEdited:
			fmt.Fprintln(formatter.Writer, "  The file was modified after the last recorded run.")
		case CauseGeneratorChanged:
			fmt.Fprintln(formatter.Writer, "  The file matches the last recorded run; the generator output changed.")
		}
		if result.CasesChanged != nil && *result.CasesChanged {
			fmt.Fprintln(formatter.Writer, "  The enumerated cases changed since the last recorded run.")
		}
	}
	formatter.VerboseLog("expected %s", result.ExpectedHash)
	if result.ActualHash != "" {
		formatter.VerboseLog("actual   %s", result.ActualHash)
	}
	return nil
}
