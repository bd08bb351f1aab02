package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFundsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "funds",
		Short: "List the configured funds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tDEFAULT")
			for _, f := range cfg.Funds {
				def := ""
				if strings.EqualFold(f.Key, cfg.DefaultFund) || f.Name == cfg.DefaultFund {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Key, f.Name, def)
			}
			return tw.Flush()
		},
	}
}
