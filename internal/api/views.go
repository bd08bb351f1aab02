package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundview-dev/fundview/internal/aggregate"
	"github.com/fundview-dev/fundview/internal/export"
	"github.com/fundview-dev/fundview/internal/feed"
	"github.com/fundview-dev/fundview/internal/model"
)

// rowView is a Row as JSON. NoValue fields are null.
type rowView struct {
	ID             *int              `json:"id"`
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	Fund           string            `json:"fund"`
	PayoutAmount   *decimal.Decimal  `json:"payoutAmount"`
	Rating         *decimal.Decimal  `json:"rating"`
	SubmissionDate *string           `json:"submissionDate"`
	Summary        string            `json:"summary"`
	Extra          map[string]string `json:"extra,omitempty"`
}

func newRowView(row model.Row) rowView {
	v := rowView{
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Fund:         row.Fund,
		PayoutAmount: optionalPtr(row.PayoutAmount),
		Rating:       optionalPtr(row.Rating),
		Summary:      row.Summary,
		ID:           optionalPtr(row.ID),
	}
	if row.SubmissionDate.Valid {
		d := row.SubmissionDate.V.Format(model.DateFormat)
		v.SubmissionDate = &d
	}
	if len(row.ExtraFields) > 0 {
		v.Extra = row.ExtraFields
	}
	return v
}

func optionalPtr[T any](o model.Optional[T]) *T {
	if !o.Valid {
		return nil
	}
	v := o.V
	return &v
}

type snapshotView struct {
	LoadID     uuid.UUID `json:"load_id"`
	Generation uint64    `json:"generation"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
	Rows       int       `json:"rows"`
	Digest     string    `json:"digest"`
}

func newSnapshotView(snap *feed.Snapshot) *snapshotView {
	if snap == nil {
		return nil
	}
	return &snapshotView{
		LoadID:     snap.ID,
		Generation: snap.Generation,
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
		Rows:       len(snap.Rows),
		Digest:     snap.Digest,
	}
}

type valueView struct {
	Function string           `json:"function"`
	Value    *decimal.Decimal `json:"value"`
	Display  string           `json:"display"`
}

type groupView struct {
	Key    *string              `json:"key"` // null for the NoValue group
	Rows   int                  `json:"rows"`
	Values map[string]valueView `json:"values"`
}

func newGroupView(g aggregate.Group, spec aggregate.Spec, keyed bool) groupView {
	v := groupView{Rows: g.Rows, Values: make(map[string]valueView, len(spec))}
	if keyed && g.HasKey {
		key := g.Key
		v.Key = &key
	}
	for field, fn := range spec {
		val := g.Value(field)
		v.Values[field] = valueView{
			Function: fn,
			Value:    optionalPtr(val),
			Display:  export.FormatAggregate(field, fn, val),
		}
	}
	return v
}
