package cli

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/dashboard"
	"perfdash/internal/platform/config"
)

// pipelineFlags override the environment for the offline commands.
type pipelineFlags struct {
	policy    string
	year      int
	rules     string
	dimension string
	base      string
	leaders   bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.policy, "policy", "", "category policy: lenient, missing or strict (default from CATEGORY_POLICY)")
	cmd.Flags().IntVar(&f.year, "year", 0, "pin the score and category year (default: most recent)")
	cmd.Flags().StringVar(&f.rules, "rules", "", "YAML business rules file (default from RULES_FILE)")
	cmd.Flags().StringVarP(&f.dimension, "dimension", "d", string(analytics.DimensionDirection), "grouping: direction, area, sub_area or evaluator")
	cmd.Flags().StringVar(&f.base, "base", "", "percentage base: group or categorized (default from PERCENT_BASE)")
	cmd.Flags().BoolVar(&f.leaders, "leaders", false, "only rows whose role matches a leadership keyword")
}

// options merges the flags onto cfg and resolves the grouping parameters.
func (f *pipelineFlags) options(cfg config.Config) (config.Config, analytics.Dimension, analytics.PercentBase, error) {
	if f.policy != "" {
		cfg.CategoryPolicy = f.policy
	}
	if f.year != 0 {
		cfg.ScoreYear = f.year
	}
	if f.rules != "" {
		cfg.RulesFile = f.rules
	}
	if f.base != "" {
		cfg.PercentBase = f.base
	}
	dim, err := analytics.ParseDimension(f.dimension)
	if err != nil {
		return cfg, "", "", errors.Wrap(err, "invalid --dimension")
	}
	base, err := analytics.ParsePercentBase(cfg.PercentBase)
	if err != nil {
		return cfg, "", "", errors.Wrap(err, "invalid --base")
	}
	return cfg, dim, base, nil
}

// loadFile runs one file through the load and normalize pipeline.
func loadFile(ctx context.Context, cfg config.Config, path string) (*dashboard.Service, *dashboard.Dataset, error) {
	normalize, err := cfg.NormalizeOptions()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build normalizer options")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read %s", path)
	}
	svc := dashboard.New(dashboard.Options{CacheSize: 1, Normalize: normalize})
	ds, _, err := svc.Load(ctx, path, data)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return svc, ds, nil
}

// NewRootCommand builds the perfdash command tree. Output goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "perfdash",
		Short: "Performance review dashboard",
		Long: `perfdash loads performance-review exports (delimited text or xlsx), normalizes
them onto a canonical schema and serves grouped statistics, rankings and
competency comparisons over HTTP.

The summarize and export commands run the same pipeline offline on one file.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newServeCommand(), newSummarizeCommand(), newExportCommand())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
