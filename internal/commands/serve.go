package commands

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fundview-dev/fundview/internal/api"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string
	var feedSource string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if feedSource == "" {
				feedSource = cfg.Feed.Source
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			loader := newLoader(cfg, logger, feedSource)
			// The API answers 503 until a reload succeeds.
			if _, err := loadOnce(ctx, cfg, logger, loader); err != nil {
				logger.Warn("initial feed load failed", slog.String("error", err.Error()))
			}

			var historyPath string
			if cfg.History.Enabled {
				historyPath = cfg.History.Path
			}
			srv := api.New(cfg, loader, api.Options{Logger: logger, HistoryPath: historyPath})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: the configured server.addr)")
	cmd.Flags().StringVar(&feedSource, "feed", "", "feed URL or file (default: the configured source)")

	return cmd
}
