package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/querygen/internal/artifact"
	"github.com/roach88/querygen/internal/assemble"
	"github.com/roach88/querygen/internal/catalog"
	"github.com/roach88/querygen/internal/config"
	"github.com/roach88/querygen/internal/ir"
	"github.com/roach88/querygen/internal/store"
)

// GenerateOptions holds flags shared by generate, verify and cases.
// Flags override the config file only when set on the command line.
type GenerateOptions struct {
	*RootOptions
	ConfigPath   string
	Output       string
	Package      string
	EngineImport string
	Bare         bool
	Catalog      string
	Workers      int
	Ledger       string
	MaxTags      int
	MaxShared    int
}

// GenerateResult is the payload reported after a successful generate.
type GenerateResult struct {
	Output      string `json:"output"`
	Cases       int    `json:"cases"`
	Blocks      int    `json:"blocks"`
	Hash        string `json:"hash"`
	CatalogHash string `json:"catalog_hash"`
	Unchanged   bool   `json:"unchanged"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the query helper file",
		Long: `Enumerate every generation case, render the applicable catalog
templates and write the artifact atomically.

Settings come from --config (YAML) and are overridden by explicit flags.
With --ledger the run is recorded in a SQLite ledger.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	bindGenerateFlags(cmd, opts)
	return cmd
}

// bindSourceFlags binds the flags that decide what is generated.
func bindSourceFlags(cmd *cobra.Command, opts *GenerateOptions) {
	defaults := config.Default()
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog replacing the built-in templates")
	cmd.Flags().IntVar(&opts.MaxTags, "max-tags", defaults.Bounds.MaxTags, "largest tag-type count")
	cmd.Flags().IntVar(&opts.MaxShared, "max-shared", defaults.Bounds.MaxShared, "largest shared-type count")
}

// bindGenerateFlags binds the source flags plus where and how the artifact is written.
func bindGenerateFlags(cmd *cobra.Command, opts *GenerateOptions) {
	defaults := config.Default()
	bindSourceFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", defaults.Output, "artifact path")
	cmd.Flags().StringVar(&opts.Package, "package", defaults.Package, "package clause of the generated file")
	cmd.Flags().StringVar(&opts.EngineImport, "engine-import", defaults.EngineImport, "import path of the engine contract")
	cmd.Flags().BoolVar(&opts.Bare, "bare", false, "omit the package header")
	cmd.Flags().IntVar(&opts.Workers, "workers", defaults.Workers, "render cases on this many goroutines")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "SQLite run ledger path")
}

// resolveConfig loads the config file (or defaults) and applies explicit flags.
func resolveConfig(cmd *cobra.Command, opts *GenerateOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = opts.Output
	}
	if flags.Changed("package") {
		cfg.Package = opts.Package
	}
	if flags.Changed("engine-import") {
		cfg.EngineImport = opts.EngineImport
	}
	if flags.Changed("bare") {
		cfg.Bare = opts.Bare
	}
	if flags.Changed("catalog") {
		cfg.Catalog = opts.Catalog
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("ledger") {
		cfg.Ledger = opts.Ledger
	}
	if flags.Changed("max-tags") {
		cfg.Bounds.MaxTags = opts.MaxTags
	}
	if flags.Changed("max-shared") {
		cfg.Bounds.MaxShared = opts.MaxShared
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadCatalog returns the built-in catalog or the one named by cfg.
func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.Catalog)
}

// produce renders the artifact described by cfg without writing it.
func produce(ctx context.Context, cfg config.Config, cat *catalog.Catalog, logger *zap.Logger) (*assemble.Artifact, error) {
	gen := assemble.New(cat,
		assemble.WithBounds(cfg.Bounds),
		assemble.WithHeader(cfg.Header()),
		assemble.WithLogger(logger),
	)
	return gen.GenerateParallel(ctx, cfg.Workers)
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
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
	formatter.VerboseLog("Catalog: %d template(s), hash %s", len(cat.Templates()), cat.Hash())

	art, err := produce(ctx, cfg, cat, logger)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGenerate, "rendering templates", err)
	}
	formatter.VerboseLog("Rendered %d block(s) for %d case(s)", len(art.Blocks), len(art.Cases))

	unchanged, err := artifact.Matches(cfg.Output, art.Bytes)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "reading existing artifact", err)
	}
	if !unchanged {
		if err := artifact.WriteFile(cfg.Output, art.Bytes, artifact.DefaultPerm); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing %s", cfg.Output), err)
		}
	}
	logger.Info("artifact generated",
		zap.String("path", cfg.Output),
		zap.String("hash", art.Hash),
		zap.Bool("unchanged", unchanged),
	)

	var runID string
	if cfg.Ledger != "" {
		run, err := recordRun(ctx, cfg, art)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeLedger, "recording run", err)
		}
		runID = run.ID
		formatter.VerboseLog("Recorded run %s (seq %d) in %s", run.ID, run.Seq, cfg.Ledger)
	}

	result := GenerateResult{
		Output:      cfg.Output,
		Cases:       len(art.Cases),
		Blocks:      len(art.Blocks),
		Hash:        art.Hash,
		CatalogHash: art.CatalogHash,
		Unchanged:   unchanged,
	}
	if formatter.Format == "json" {
		return formatter.SuccessWithRun(result, runID)
	}

	fmt.Fprintf(formatter.Writer, "✓ Generated %d block(s) for %d case(s)\n", result.Blocks, result.Cases)
	if unchanged {
		fmt.Fprintf(formatter.Writer, "%s is up to date\n", result.Output)
	} else {
		fmt.Fprintf(formatter.Writer, "Wrote %s\n", result.Output)
	}
	fmt.Fprintf(formatter.Writer, "Hash: %s\n", result.Hash)
	return nil
}

func recordRun(ctx context.Context, cfg config.Config, art *assemble.Artifact) (store.Run, error) {
	casesHash, err := ir.CaseSetHash(art.Cases)
	if err != nil {
		return store.Run{}, err
	}
	st, err := store.Open(cfg.Ledger)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()

	return st.RecordRun(ctx, store.RunRecord{
		ArtifactPath:     cfg.Output,
		ArtifactHash:     art.Hash,
		CatalogHash:      art.CatalogHash,
		CaseSetHash:      casesHash,
		CaseCount:        len(art.Cases),
		BlockCount:       len(art.Blocks),
		GeneratorVersion: ir.GeneratorVersion,
	})
}
