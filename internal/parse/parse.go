// Package parse converts raw feed cells into typed values. Malformed input
// never produces an error; it degrades to NoValue.
package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundview-dev/fundview/internal/model"
)

// DefaultDateLayout is the submission date layout of the feed.
const DefaultDateLayout = "2006-01-02"

var currencyStripper = strings.NewReplacer("$", "", ",", "")

// Currency parses an amount like "$1,234.50". The currency symbol and
// grouping separators are removed before parsing.
func Currency(text string) model.Optional[decimal.Decimal] {
	return Decimal(currencyStripper.Replace(text))
}

// Rating parses a signed, possibly fractional, rating.
func Rating(text string) model.Optional[decimal.Decimal] {
	return Decimal(text)
}

// Decimal parses a plain decimal number.
func Decimal(text string) model.Optional[decimal.Decimal] {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.NoValue[decimal.Decimal]()
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return model.NoValue[decimal.Decimal]()
	}
	return model.Some(d)
}

// ID parses a base-10 integer identifier.
func ID(text string) model.Optional[int] {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return model.NoValue[int]()
	}
	return model.Some(n)
}

// Date parses a submission date in DefaultDateLayout.
func Date(text string) model.Optional[time.Time] {
	return DateLayout(text, DefaultDateLayout)
}

// DateLayout parses a date in the given layout. The feed carries no zone, so
// dates are taken as UTC midnight.
func DateLayout(text, layout string) model.Optional[time.Time] {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.NoValue[time.Time]()
	}
	t, err := time.ParseInLocation(layout, text, time.UTC)
	if err != nil {
		return model.NoValue[time.Time]()
	}
	return model.Some(t)
}
