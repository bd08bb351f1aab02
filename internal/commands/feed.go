package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fundview-dev/fundview/internal/config"
	"github.com/fundview-dev/fundview/internal/feed"
	"github.com/fundview-dev/fundview/internal/filter"
	"github.com/fundview-dev/fundview/internal/loadlog"
	"github.com/fundview-dev/fundview/internal/parse"
)

// selectionFlags are the row selection flags of rows and summary.
type selectionFlags struct {
	fund        string
	allFunds    bool
	ratingAbove string
	quick       string
	feed        string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fund, "fund", "", "fund key or name (default: the configured default fund)")
	cmd.Flags().BoolVar(&f.allFunds, "all-funds", false, "select rows of every fund")
	cmd.Flags().StringVar(&f.ratingAbove, "rating-above", "", "only rows rated strictly above this number")
	cmd.Flags().StringVar(&f.quick, "quick", "", "whitespace-separated terms that must all appear in a row")
	cmd.Flags().StringVar(&f.feed, "feed", "", "feed URL or file (default: the configured source)")
	cmd.MarkFlagsMutuallyExclusive("fund", "all-funds")
}

func (f *selectionFlags) selection(cfg *config.Config) (filter.Selection, error) {
	fund := cfg.DefaultFund
	switch {
	case f.allFunds:
		fund = ""
	case f.fund != "":
		fund = f.fund
	}
	sel := filter.NewSelection(cfg.FundName(fund))

	if f.ratingAbove != "" {
		threshold, ok := parse.Rating(f.ratingAbove).Get()
		if !ok {
			return sel, fmt.Errorf("invalid --rating-above %q", f.ratingAbove)
		}
		sel = sel.WithRatingAbove(threshold)
	}
	return sel.WithQuickFilter(filter.SplitQuickFilter(f.quick)...), nil
}

func (f *selectionFlags) source(cfg *config.Config) string {
	if f.feed != "" {
		return f.feed
	}
	return cfg.Feed.Source
}

func newLoader(cfg *config.Config, logger *slog.Logger, source string) *feed.Loader {
	return feed.NewLoader(source, feed.Options{
		Client:     &http.Client{Timeout: cfg.Feed.Timeout},
		DateLayout: cfg.Feed.DateLayout,
		Logger:     logger,
	})
}

// loadOnce runs a single feed load and records it in the load history.
func loadOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger, loader *feed.Loader) (*feed.Snapshot, error) {
	snap, err := loader.Load(ctx)
	recordLoad(cfg, logger, loader.Source(), snap, err)
	if err != nil {
		return nil, fmt.Errorf("loading feed: %w", err)
	}
	return snap, nil
}

func recordLoad(cfg *config.Config, logger *slog.Logger, source string, snap *feed.Snapshot, loadErr error) {
	if !cfg.History.Enabled {
		return
	}
	entry := loadlog.EntryFor(source, snap, loadErr, time.Now())
	if err := loadlog.Append(cfg.History.Path, []loadlog.Entry{entry}); err != nil {
		logger.Warn("recording load history failed", slog.String("error", err.Error()))
	}
}
