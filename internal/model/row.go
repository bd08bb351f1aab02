package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical text form of a submission date.
const DateFormat = "2006-01-02"

// Canonical row field names.
const (
	FieldID             = "id"
	FieldFirstName      = "firstName"
	FieldLastName       = "lastName"
	FieldSummary        = "summary"
	FieldFund           = "fund"
	FieldPayoutAmount   = "payoutAmount"
	FieldRating         = "rating"
	FieldSubmissionDate = "submissionDate"
)

// Fields lists the canonical fields in export order.
var Fields = []string{
	FieldID,
	FieldFirstName,
	FieldLastName,
	FieldFund,
	FieldPayoutAmount,
	FieldRating,
	FieldSubmissionDate,
	FieldSummary,
}

// RawRecord is one feed row keyed by header name, before normalization.
type RawRecord map[string]string

// Row is a normalized submission record. Every canonical field is always
// present; fields that could not be parsed hold NoValue.
type Row struct {
	ID             Optional[int]
	FirstName      string
	LastName       string
	Summary        string
	Fund           string
	PayoutAmount   Optional[decimal.Decimal]
	Rating         Optional[decimal.Decimal]
	SubmissionDate Optional[time.Time] // UTC midnight
	ExtraFields    map[string]string
}

// IsField reports whether name is a canonical field.
func IsField(name string) bool {
	switch name {
	case FieldID, FieldFirstName, FieldLastName, FieldSummary, FieldFund,
		FieldPayoutAmount, FieldRating, FieldSubmissionDate:
		return true
	}
	return false
}

// Text returns the field coerced to a string. It reports false when the
// value is NoValue or the field does not exist. Extra fields are looked up
// by their raw column name.
func (r Row) Text(field string) (string, bool) {
	switch field {
	case FieldID:
		if !r.ID.Valid {
			return "", false
		}
		return strconv.Itoa(r.ID.V), true
	case FieldFirstName:
		return r.FirstName, true
	case FieldLastName:
		return r.LastName, true
	case FieldSummary:
		return r.Summary, true
	case FieldFund:
		return r.Fund, true
	case FieldPayoutAmount:
		return decimalText(r.PayoutAmount)
	case FieldRating:
		return decimalText(r.Rating)
	case FieldSubmissionDate:
		if !r.SubmissionDate.Valid {
			return "", false
		}
		return r.SubmissionDate.V.Format(DateFormat), true
	}
	v, ok := r.ExtraFields[field]
	return v, ok
}

// Number returns the numeric view of a field. Only id, payoutAmount and
// rating are numeric; every other field yields NoValue.
func (r Row) Number(field string) Optional[decimal.Decimal] {
	switch field {
	case FieldID:
		if !r.ID.Valid {
			return Optional[decimal.Decimal]{}
		}
		return Some(decimal.NewFromInt(int64(r.ID.V)))
	case FieldPayoutAmount:
		return r.PayoutAmount
	case FieldRating:
		return r.Rating
	}
	return Optional[decimal.Decimal]{}
}

func decimalText(d Optional[decimal.Decimal]) (string, bool) {
	if !d.Valid {
		return "", false
	}
	return d.V.String(), true
}
