package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"perfdash/internal/domain/analytics"
	"perfdash/internal/domain/export"
	"perfdash/internal/platform/config"
)

func newExportCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		format string
		view   string
		output string
		order      string
		n          int
		group      string
		individual string
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write records, groups, distribution or a ranking as csv, xlsx or pdf",
		Long: `Loads FILE, normalizes it and writes one export next to it, or to --output.

Examples:
  perfdash export evaluaciones.csv --format xlsx
  perfdash export evaluaciones.csv --format pdf --order bottom -n 20
  perfdash export evaluaciones.csv --view groups --dimension area -o grupos.csv
  perfdash export evaluaciones.csv --view comparison --dimension area --group UCI --individual Ana`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			cfg, dim, base, err := flags.options(cfg)
			if err != nil {
				return err
			}
			outFormat, err := export.ParseFormat(format)
			if err != nil {
				return errors.Wrap(err, "invalid --format")
			}
			outView, err := export.ParseView(view, outFormat)
			if err != nil {
				return errors.Wrap(err, "invalid --view")
			}
			rankOrder := analytics.RankOrder(strings.ToLower(strings.TrimSpace(order)))
			if rankOrder != analytics.RankTop && rankOrder != analytics.RankBottom {
				return errors.Errorf("invalid --order %q: must be top or bottom", order)
			}
			if n <= 0 {
				n = cfg.RankingDefaultN
			}

			svc, ds, err := loadFile(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			filter := analytics.Filter{LeadersOnly: flags.leaders, Keywords: svc.Rules().LeadershipKeywords}
			req := export.Request{
				Title:        "Ranking de evaluaciones: " + filepath.Base(ds.Name),
				Table:        ds.Table,
				Records:      filter.Apply(ds.Table.Records),
				Dimension:    dim,
				Base:         base,
				Order:        rankOrder,
				N:            n,
				Competencies: ds.Table.Competencies,
			}
			if group != "" {
				req.Group = analytics.ByGroup(dim, group)
			}
			if individual != "" {
				req.Individual = analytics.ByPerson(individual)
			}

			var buf bytes.Buffer
			if err := export.Render(&buf, outFormat, outView, req, time.Now()); err != nil {
				return errors.Wrap(err, "failed to render export")
			}
			if output == "" {
				output = filepath.Join(filepath.Dir(args[0]), export.FileName(ds.Name, outView, outFormat))
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, buf.Len())
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv, xlsx or pdf")
	cmd.Flags().StringVar(&view, "view", "", "records, ranking, groups, distribution, comparison or all (default depends on format)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: next to FILE)")
	cmd.Flags().StringVar(&order, "order", string(analytics.RankTop), "ranking order: top or bottom")
	cmd.Flags().IntVarP(&n, "size", "n", 0, "ranking size (default from RANKING_DEFAULT_N)")
	cmd.Flags().StringVar(&group, "group", "", "comparison group: one value of --dimension")
	cmd.Flags().StringVar(&individual, "individual", "", "comparison individual: an evaluated person's name")
	return cmd
}
