package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fundview-dev/fundview/internal/model"
)

// ErrNoHeader is returned for a feed without a header row.
var ErrNoHeader = errors.New("feed has no header row")

const bom = "\ufeff"

// ReadRecords reads a comma-separated feed whose first row names the
// columns. Any malformed row fails the whole feed.
func ReadRecords(r io.Reader) ([]model.RawRecord, error) {
	_, records, err := ReadTable(r)
	return records, err
}

// ReadTable is ReadRecords that also returns the cleaned header in feed
// order.
func ReadTable(r io.Reader) ([]string, []model.RawRecord, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading feed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrNoHeader
	}

	header := Header(records[0])
	out := make([]model.RawRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		raw := make(model.RawRecord, len(header))
		for i, col := range header {
			raw[col] = rec[i]
		}
		out = append(out, raw)
	}
	return header, out, nil
}

// Header cleans header names: surrounding space and a leading byte order
// mark are dropped. A repeated name gets a numeric suffix ("Fund", "Fund_1")
// so that no column is lost; the first occurrence keeps the plain name.
func Header(cols []string) []string {
	out := make([]string, len(cols))
	taken := make(map[string]bool, len(cols))
	for i, c := range cols {
		if i == 0 {
			c = strings.TrimPrefix(c, bom)
		}
		out[i] = strings.TrimSpace(c)
		taken[out[i]] = false
	}
	for i, name := range out {
		if !taken[name] {
			taken[name] = true
			continue
		}
		unique := name
		for n := 1; ; n++ {
			unique = fmt.Sprintf("%s_%d", name, n)
			if _, exists := taken[unique]; !exists {
				break
			}
		}
		taken[unique] = true
		out[i] = unique
	}
	return out
}
