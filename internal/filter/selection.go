package filter

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fundview-dev/fundview/internal/model"
)

// Selection is the user's current choice of fund, rating toggle and quick
// filter terms. Each change produces a new Selection.
type Selection struct {
	fund        string
	ratingAbove model.Optional[decimal.Decimal]
	terms       []string
}

// NewSelection creates a selection for one fund. An empty fund selects all.
func NewSelection(fund string) Selection {
	return Selection{fund: fund}
}

// Fund returns the selected fund name.
func (s Selection) Fund() string { return s.fund }

// RatingAbove returns the rating threshold, if the toggle is on.
func (s Selection) RatingAbove() model.Optional[decimal.Decimal] { return s.ratingAbove }

// Terms returns a copy of the quick filter terms.
func (s Selection) Terms() []string { return slices.Clone(s.terms) }

// WithFund returns a copy selecting another fund.
func (s Selection) WithFund(fund string) Selection {
	s.terms = slices.Clone(s.terms)
	s.fund = fund
	return s
}

// WithRatingAbove returns a copy with the rating toggle on.
func (s Selection) WithRatingAbove(threshold decimal.Decimal) Selection {
	s.terms = slices.Clone(s.terms)
	s.ratingAbove = model.Some(threshold)
	return s
}

// WithoutRatingAbove returns a copy with the rating toggle off.
func (s Selection) WithoutRatingAbove() Selection {
	s.terms = slices.Clone(s.terms)
	s.ratingAbove = model.Optional[decimal.Decimal]{}
	return s
}

// WithQuickFilter returns a copy with new quick filter terms.
func (s Selection) WithQuickFilter(terms ...string) Selection {
	s.terms = slices.Clone(terms)
	return s
}

// Criteria derives the active criteria.
func (s Selection) Criteria() []Criterion {
	var out []Criterion
	if s.fund != "" {
		out = append(out, Equals(model.FieldFund, s.fund))
	}
	if s.ratingAbove.Valid {
		out = append(out, GreaterThan(model.FieldRating, s.ratingAbove.V))
	}
	if len(s.terms) > 0 {
		out = append(out, QuickFilter(s.terms...))
	}
	return out
}

// Predicate composes the selection's criteria.
func (s Selection) Predicate() Predicate {
	return Compose(s.Criteria())
}
