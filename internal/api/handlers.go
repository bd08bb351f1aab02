package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	"github.com/fundview-dev/fundview/internal/aggregate"
	"github.com/fundview-dev/fundview/internal/filter"
	"github.com/fundview-dev/fundview/internal/model"
	"github.com/fundview-dev/fundview/internal/parse"
)

type healthResponse struct {
	Status   string        `json:"status"`
	Snapshot *snapshotView `json:"snapshot"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:   "ok",
		Snapshot: newSnapshotView(s.loader.Current()),
	})
}

type fundView struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Rows *int   `json:"rows"` // null before the first load
}

func (s *Server) funds(w http.ResponseWriter, r *http.Request) {
	snap := s.loader.Current()
	out := make([]fundView, len(s.cfg.Funds))
	for i, f := range s.cfg.Funds {
		out[i] = fundView{Key: f.Key, Name: f.Name}
		if snap != nil {
			n := len(filter.Apply(snap.Rows, filter.NewSelection(f.Name).Predicate()))
			out[i].Rows = &n
		}
	}
	render.JSON(w, r, out)
}

type rowsResponse struct {
	Generation uint64    `json:"generation"`
	Filters    []string  `json:"filters"`
	Rows       []rowView `json:"rows"`
}

func (s *Server) rows(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	snap := s.loader.Current()
	visible := filter.Apply(snap.Rows, sel.Predicate())

	resp := rowsResponse{
		Generation: snap.Generation,
		Filters:    criteriaStrings(sel.Criteria()),
		Rows:       make([]rowView, len(visible)),
	}
	for i, row := range visible {
		resp.Rows[i] = newRowView(row)
	}
	render.JSON(w, r, resp)
}

type summaryResponse struct {
	Generation uint64      `json:"generation"`
	GroupBy    string      `json:"group_by"`
	Filters    []string    `json:"filters"`
	Groups     []groupView `json:"groups"`
	Totals     groupView   `json:"totals"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	snap := s.loader.Current()

	groupBy := s.cfg.Aggregation.GroupBy
	if q := r.URL.Query().Get("group_by"); q != "" {
		groupBy = q
	}
	if !model.IsField(groupBy) && !slices.Contains(snap.ExtraColumns, groupBy) {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("unknown group_by field %q", groupBy))
		return
	}

	spec := s.cfg.AggregationSpec()
	visible := filter.Apply(snap.Rows, sel.Predicate())
	res := aggregate.Aggregate(visible, groupBy, spec)

	resp := summaryResponse{
		Generation: snap.Generation,
		GroupBy:    groupBy,
		Filters:    criteriaStrings(sel.Criteria()),
		Groups:     make([]groupView, len(res.Groups)),
		Totals:     newGroupView(aggregate.Totals(visible, spec), spec, false),
	}
	for i, g := range res.Groups {
		resp.Groups[i] = newGroupView(g, spec, true)
	}
	render.JSON(w, r, resp)
}

type reloadResponse struct {
	Snapshot  *snapshotView `json:"snapshot"`
	Published bool          `json:"published"`
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loader.Load(r.Context())
	s.recordLoad(r.Context(), snap, err)
	if err != nil {
		s.fail(w, r, http.StatusBadGateway, fmt.Errorf("reloading feed: %w", err))
		return
	}
	published := s.loader.Current() == snap
	s.logger.InfoContext(r.Context(), "feed reloaded",
		slog.Uint64("generation", snap.Generation),
		slog.Bool("published", published))
	render.JSON(w, r, reloadResponse{Snapshot: newSnapshotView(snap), Published: published})
}

// selection builds the row filter from the fund, rating_above and q query
// parameters. A missing fund parameter selects the configured default fund;
// an empty one selects every fund.
func (s *Server) selection(r *http.Request) (filter.Selection, error) {
	q := r.URL.Query()

	fund := s.cfg.DefaultFund
	if q.Has("fund") {
		fund = q.Get("fund")
	}
	sel := filter.NewSelection(s.cfg.FundName(fund))

	if text := q.Get("rating_above"); text != "" {
		threshold, ok := parse.Rating(text).Get()
		if !ok {
			return sel, errors.New("rating_above must be a number")
		}
		sel = sel.WithRatingAbove(threshold)
	}
	return sel.WithQuickFilter(filter.SplitQuickFilter(q.Get("q"))...), nil
}

func criteriaStrings(criteria []filter.Criterion) []string {
	out := make([]string, len(criteria))
	for i, c := range criteria {
		out[i] = c.String()
	}
	return out
}
