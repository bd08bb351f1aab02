// Package filter composes independent row criteria into one predicate.
// Criteria combine by logical AND only.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fundview-dev/fundview/internal/model"
)

// Kind identifies the variant of a Criterion.
type Kind int

const (
	KindEquals Kind = iota + 1
	KindGreaterThan
	KindQuickFilter
)

func (k Kind) String() string {
	switch k {
	case KindEquals:
		return "equals"
	case KindGreaterThan:
		return "greaterThan"
	case KindQuickFilter:
		return "quickFilter"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// QuickFilterFields are the text fields searched by a quick filter.
var QuickFilterFields = []string{
	model.FieldFirstName,
	model.FieldLastName,
	model.FieldSummary,
	model.FieldFund,
}

// Criterion is one filter condition. Use the constructors; a Criterion is
// never modified after construction.
type Criterion struct {
	Kind      Kind
	Field     string
	Value     string
	Threshold decimal.Decimal
	Terms     []string
}

// Equals passes rows whose field, as text, is exactly value.
func Equals(field, value string) Criterion {
	return Criterion{Kind: KindEquals, Field: field, Value: value}
}

// GreaterThan passes rows whose numeric field is strictly above threshold.
func GreaterThan(field string, threshold decimal.Decimal) Criterion {
	return Criterion{Kind: KindGreaterThan, Field: field, Threshold: threshold}
}

// QuickFilter passes rows where every term appears, case-insensitively, in
// at least one of QuickFilterFields.
func QuickFilter(terms ...string) Criterion {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return Criterion{Kind: KindQuickFilter, Terms: lowered}
}

// Match evaluates the criterion against one row. Unknown fields and
// unknown kinds never pass.
func (c Criterion) Match(row model.Row) bool {
	switch c.Kind {
	case KindEquals:
		v, ok := row.Text(c.Field)
		return ok && v == c.Value
	case KindGreaterThan:
		n := row.Number(c.Field)
		return n.Valid && n.V.GreaterThan(c.Threshold)
	case KindQuickFilter:
		return matchTerms(row, c.Terms)
	}
	return false
}

func matchTerms(row model.Row, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	texts := make([]string, 0, len(QuickFilterFields))
	for _, f := range QuickFilterFields {
		v, _ := row.Text(f)
		texts = append(texts, strings.ToLower(v))
	}
	for _, term := range terms {
		if !slices.ContainsFunc(texts, func(s string) bool { return strings.Contains(s, term) }) {
			return false
		}
	}
	return true
}

func (c Criterion) String() string {
	switch c.Kind {
	case KindEquals:
		return fmt.Sprintf("%s == %q", c.Field, c.Value)
	case KindGreaterThan:
		return fmt.Sprintf("%s > %s", c.Field, c.Threshold)
	case KindQuickFilter:
		return fmt.Sprintf("quick %q", c.Terms)
	}
	return c.Kind.String()
}

// Predicate reports whether a row is visible.
type Predicate func(model.Row) bool

// Compose ANDs criteria into one predicate. The criteria and their terms are
// copied, so later changes by the caller do not affect the predicate.
func Compose(criteria []Criterion) Predicate {
	active := make([]Criterion, len(criteria))
	for i, c := range criteria {
		c.Terms = slices.Clone(c.Terms)
		active[i] = c
	}
	return func(row model.Row) bool {
		for _, c := range active {
			if !c.Match(row) {
				return false
			}
		}
		return true
	}
}

// Apply returns the rows that pass pred, in input order.
func Apply(rows []model.Row, pred Predicate) []model.Row {
	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// SplitQuickFilter splits quick filter input into whitespace-separated terms.
func SplitQuickFilter(input string) []string {
	return strings.Fields(input)
}
