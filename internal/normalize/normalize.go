package normalize

import (
	"errors"
	"fmt"

	"github.com/fundview-dev/fundview/internal/model"
	"github.com/fundview-dev/fundview/internal/parse"
)

// Feed column names.
const (
	ColID             = "ID"
	ColFirstName      = "First name"
	ColLastName       = "Last name"
	ColFund           = "Fund"
	ColPayoutAmount   = "Payout amount"
	ColRating         = "Rating"
	ColSubmissionDate = "Submission date"
	ColSummary        = "Summary"
)

// ErrNotRecordShaped is returned when the input contains something that is
// not a record at all.
var ErrNotRecordShaped = errors.New("feed is not record-shaped")

// IsKnownColumn reports whether a feed column maps to a canonical field.
func IsKnownColumn(col string) bool {
	switch col {
	case ColID, ColFirstName, ColLastName, ColFund, ColPayoutAmount, ColRating, ColSubmissionDate, ColSummary:
		return true
	}
	return false
}

// Normalizer maps raw feed records onto the canonical row schema.
type Normalizer struct {
	DateLayout string
}

// New creates a Normalizer. An empty layout means parse.DefaultDateLayout.
func New(dateLayout string) *Normalizer {
	if dateLayout == "" {
		dateLayout = parse.DefaultDateLayout
	}
	return &Normalizer{DateLayout: dateLayout}
}

// Normalize uses the default date layout.
func Normalize(records []model.RawRecord) ([]model.Row, error) {
	return New("").Normalize(records)
}

// Normalize converts records in order. Bad cells become NoValue; only a
// nil record fails the load, and then no rows are returned.
func (n *Normalizer) Normalize(records []model.RawRecord) ([]model.Row, error) {
	rows := make([]model.Row, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("record %d: %w", i+1, ErrNotRecordShaped)
		}
		rows = append(rows, n.Row(rec))
	}
	return rows, nil
}

// Row normalizes a single record.
func (n *Normalizer) Row(rec model.RawRecord) model.Row {
	row := model.Row{ExtraFields: make(map[string]string)}
	for col, val := range rec {
		switch col {
		case ColID:
			row.ID = parse.ID(val)
		case ColFirstName:
			row.FirstName = val
		case ColLastName:
			row.LastName = val
		case ColFund:
			row.Fund = val
		case ColPayoutAmount:
			row.PayoutAmount = parse.Currency(val)
		case ColRating:
			row.Rating = parse.Rating(val)
		case ColSubmissionDate:
			row.SubmissionDate = parse.DateLayout(val, n.layout())
		case ColSummary:
			row.Summary = val
		default:
			row.ExtraFields[col] = val
		}
	}
	return row
}

func (n *Normalizer) layout() string {
	if n.DateLayout == "" {
		return parse.DefaultDateLayout
	}
	return n.DateLayout
}
