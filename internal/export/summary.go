package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fundview-dev/fundview/internal/aggregate"
	"github.com/fundview-dev/fundview/internal/model"
)

// NoValueLabel names the group of rows without a group key.
const NoValueLabel = "(no value)"

// WriteSummary writes an aligned table with one line per group and a final
// total line.
func WriteSummary(w io.Writer, res *aggregate.Result, totals aggregate.Group, spec aggregate.Spec) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fields := spec.Fields()

	header := []string{res.GroupBy, "rows"}
	for _, f := range fields {
		header = append(header, fmt.Sprintf("%s(%s)", strings.ToLower(spec[f]), f))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, g := range res.Groups {
		label := g.Key
		if !g.HasKey {
			label = NoValueLabel
		}
		if err := writeGroup(tw, label, g, fields, spec); err != nil {
			return err
		}
	}
	if err := writeGroup(tw, "TOTAL", totals, fields, spec); err != nil {
		return err
	}
	return tw.Flush()
}

func writeGroup(w io.Writer, label string, g aggregate.Group, fields []string, spec aggregate.Spec) error {
	cells := []string{label, fmt.Sprint(g.Rows)}
	for _, f := range fields {
		cells = append(cells, FormatAggregate(f, spec[f], g.Value(f)))
	}
	if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
		return fmt.Errorf("writing group %q: %w", label, err)
	}
	return nil
}

// FormatAggregate renders one aggregate: payout amounts as currency unless
// the function counts rows.
func FormatAggregate(field, fn string, v aggregate.Value) string {
	switch strings.ToLower(fn) {
	case "count", "size":
		return FormatNumber(v)
	}
	if field == model.FieldPayoutAmount {
		return FormatCurrency(v)
	}
	return FormatNumber(v)
}
