package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fundview-dev/fundview/internal/model"
)

// Value is a single aggregate or input cell.
type Value = model.Optional[decimal.Decimal]

// Reducer folds the values of one field within one group into a summary.
// values holds one entry per row, NoValue included.
type Reducer interface {
	Name() string
	Reduce(values []Value) Value
}

var two = decimal.NewFromInt(2)

// present returns the valid values only.
func present(values []Value) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.V)
		}
	}
	return out
}

// Sum adds the valid values. A group with none is NoValue, not zero.
type Sum struct{}

func (Sum) Name() string { return "sum" }

func (Sum) Reduce(values []Value) Value {
	vals := present(values)
	if len(vals) == 0 {
		return Value{}
	}
	return model.Some(decimal.Sum(vals[0], vals[1:]...))
}

// Count is the number of rows in the group, whether or not the field has a
// value.
type Count struct{}

func (Count) Name() string { return "count" }

func (Count) Reduce(values []Value) Value {
	return model.Some(decimal.NewFromInt(int64(len(values))))
}

// Median is the order-statistic median of the valid values.
type Median struct{}

func (Median) Name() string { return "median" }

func (Median) Reduce(values []Value) Value {
	vals := present(values)
	if len(vals) == 0 {
		return Value{}
	}
	slices.SortFunc(vals, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return model.Some(vals[mid])
	}
	return model.Some(vals[mid-1].Add(vals[mid]).Div(two))
}

// Avg is the arithmetic mean of the valid values.
type Avg struct{}

func (Avg) Name() string { return "avg" }

func (Avg) Reduce(values []Value) Value {
	vals := present(values)
	if len(vals) == 0 {
		return Value{}
	}
	return model.Some(decimal.Avg(vals[0], vals[1:]...))
}

// Min is the smallest valid value.
type Min struct{}

func (Min) Name() string { return "min" }

func (Min) Reduce(values []Value) Value {
	vals := present(values)
	if len(vals) == 0 {
		return Value{}
	}
	return model.Some(decimal.Min(vals[0], vals[1:]...))
}

// Max is the largest valid value.
type Max struct{}

func (Max) Name() string { return "max" }

func (Max) Reduce(values []Value) Value {
	vals := present(values)
	if len(vals) == 0 {
		return Value{}
	}
	return model.Some(decimal.Max(vals[0], vals[1:]...))
}
