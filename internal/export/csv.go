package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fundview-dev/fundview/internal/model"
)

const (
	numFields    = 8
	colID        = 0
	colFirstName = 1
	colLastName  = 2
	colFund      = 3
	colPayout    = 4
	colRating    = 5
	colDate      = 6
	colSummary   = 7
)

// Header returns the CSV header: canonical fields followed by extra columns.
func Header(extraColumns []string) []string {
	header := make([]string, 0, numFields+len(extraColumns))
	header = append(header, model.Fields...)
	return append(header, extraColumns...)
}

// MarshalRow converts a Row to a CSV record. NoValue cells are empty.
func MarshalRow(row model.Row, extraColumns []string) []string {
	rec := make([]string, numFields+len(extraColumns))
	if row.ID.Valid {
		rec[colID] = strconv.Itoa(row.ID.V)
	}
	rec[colFirstName] = row.FirstName
	rec[colLastName] = row.LastName
	rec[colFund] = row.Fund
	if row.PayoutAmount.Valid {
		rec[colPayout] = row.PayoutAmount.V.String()
	}
	if row.Rating.Valid {
		rec[colRating] = row.Rating.V.String()
	}
	if row.SubmissionDate.Valid {
		rec[colDate] = row.SubmissionDate.V.Format(model.DateFormat)
	}
	rec[colSummary] = row.Summary

	for i, col := range extraColumns {
		rec[numFields+i] = row.ExtraFields[col]
	}
	return rec
}

// WriteRows writes rows to w (including header).
func WriteRows(w io.Writer, rows []model.Row, extraColumns []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header(extraColumns)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row, extraColumns)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
