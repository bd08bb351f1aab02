package commands

import (
	"github.com/spf13/cobra"

	"github.com/fundview-dev/fundview/internal/export"
	"github.com/fundview-dev/fundview/internal/filter"
)

func newRowsCommand(opts *globalOptions) *cobra.Command {
	var flags selectionFlags

	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Print the selected rows as CSV",
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

			snap, err := loadOnce(cmd.Context(), cfg, logger, newLoader(cfg, logger, flags.source(cfg)))
			if err != nil {
				return err
			}

			visible := filter.Apply(snap.Rows, sel.Predicate())
			return export.WriteRows(cmd.OutOrStdout(), visible, snap.ExtraColumns)
		},
	}
	flags.register(cmd)

	return cmd
}
