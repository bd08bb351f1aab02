package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/fundview-dev/fundview/internal/aggregate"
	"github.com/fundview-dev/fundview/internal/export"
	"github.com/fundview-dev/fundview/internal/filter"
	"github.com/fundview-dev/fundview/internal/model"
)

func newSummaryCommand(opts *globalOptions) *cobra.Command {
	var flags selectionFlags
	var groupBy string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print per-group aggregates of the selected rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			sel, err := flags.selection(cfg)
			if err != nil {
				return err
			}
			if groupBy == "" {
				groupBy = cfg.Aggregation.GroupBy
			}

			snap, err := loadOnce(cmd.Context(), cfg, logger, newLoader(cfg, logger, flags.source(cfg)))
			if err != nil {
				return err
			}
			if !model.IsField(groupBy) && !slices.Contains(snap.ExtraColumns, groupBy) {
				return fmt.Errorf("unknown group-by field %q", groupBy)
			}

			spec := cfg.AggregationSpec()
			visible := filter.Apply(snap.Rows, sel.Predicate())
			res := aggregate.Aggregate(visible, groupBy, spec)
			return export.WriteSummary(cmd.OutOrStdout(), res, aggregate.Totals(visible, spec), spec)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&groupBy, "group-by", "", "field to group by (default: the configured group_by)")

	return cmd
}
