package cli

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/dashboard"
	"perfdash/internal/platform/config"
)

func newSummarizeCommand() *cobra.Command {
	var (
		flags pipelineFlags
		top   int
	)
	cmd := &cobra.Command{
		Use:   "summarize FILE",
		Short: "Print the dashboard summary of one file as JSON",
		Long: `Loads FILE, normalizes it and prints the KPI block, per-group statistics and
the category distribution for the chosen grouping dimension.

Examples:
  perfdash summarize evaluaciones.csv
  perfdash summarize evaluaciones.xlsx --dimension area --base categorized --top 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dim, base, err := flags.options(config.Load())
			if err != nil {
				return err
			}
			svc, ds, err := loadFile(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			keywords := svc.Rules().LeadershipKeywords
			filter := analytics.Filter{LeadersOnly: flags.leaders, Keywords: keywords}
			records := filter.Apply(ds.Table.Records)

			out := struct {
				dashboard.Summary
				Top    []dashboard.RankingRow `json:"top,omitempty"`
				Bottom []dashboard.RankingRow `json:"bottom,omitempty"`
			}{Summary: dashboard.BuildSummary(ds, records, dim, base, keywords)}
			if top > 0 {
				out.Top = dashboard.Ranking(records, analytics.RankTop, top)
				out.Bottom = dashboard.Ranking(records, analytics.RankBottom, top)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return errors.Wrap(err, "failed to write summary")
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&top, "top", 0, "also print the top and bottom N records")
	return cmd
}
