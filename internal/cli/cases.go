package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querygen/internal/enumerate"
	"github.com/roach88/querygen/internal/ir"
)

// CaseInfo describes one enumerated case and the helpers it produces.
type CaseInfo struct {
	Key             string   `json:"key"`
	Tags            int      `json:"tags"`
	Shared          int      `json:"shared"`
	Whereable       int      `json:"whereable"`
	FilterThreshold int      `json:"filter_threshold"`
	Types           []string `json:"types"`
	Helpers         []string `json:"helpers"`
}

// CasesResult is the payload of the cases command.
type CasesResult struct {
	Bounds ir.Bounds  `json:"bounds"`
	Count  int        `json:"count"`
	Blocks int        `json:"blocks"`
	Cases  []CaseInfo `json:"cases"`
}

// NewCasesCommand creates the cases command.
func NewCasesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List the enumerated generation cases",
		Long: `List every generation case in enumeration order with the helper
functions the catalog renders for it. Nothing is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCases(cmd, opts)
		},
	}

	bindSourceFlags(cmd, opts)
	return cmd
}

func runCases(cmd *cobra.Command, opts *GenerateOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "loading config", err)
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeCatalog, "loading catalog", err)
	}

	result := CasesResult{Bounds: cfg.Bounds}
	for _, c := range enumerate.Cases(cfg.Bounds) {
		info := CaseInfo{
			Key:             c.Key(),
			Tags:            c.Tags,
			Shared:          c.Shared,
			Whereable:       c.Whereable,
			FilterThreshold: c.FilterThreshold,
		}
		for _, ref := range c.Types() {
			info.Types = append(info.Types, ref.Name())
		}
		for _, t := range cat.Applicable(c) {
			info.Helpers = append(info.Helpers, t.FuncName(c))
		}
		result.Blocks += len(info.Helpers)
		result.Cases = append(result.Cases, info)
	}
	result.Count = len(result.Cases)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%d case(s), %d block(s) (max tags %d, max shared %d)\n\n",
		result.Count, result.Blocks, cfg.Bounds.MaxTags, cfg.Bounds.MaxShared)
	for _, info := range result.Cases {
		fmt.Fprintf(formatter.Writer, "%s: %d helper(s)\n", info.Key, len(info.Helpers))
		if formatter.Verbose {
			for _, h := range info.Helpers {
				fmt.Fprintf(formatter.Writer, "  %s\n", h)
			}
		}
	}
	return nil
}
