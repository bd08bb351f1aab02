// Package loadlog keeps an append-only CSV history of feed loads.
package loadlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fundview-dev/fundview/internal/feed"
)

// Status values recorded for a load.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Entry is one row in the load history.
type Entry struct {
	Timestamp time.Time
	LoadID    string
	Source    string
	Rows      int
	Digest    string
	Status    string
	Error     string
}

// EntryFor records the outcome of one feed load of source.
func EntryFor(source string, snap *feed.Snapshot, loadErr error, now time.Time) Entry {
	e := Entry{Timestamp: now, Source: source, Status: StatusOK}
	if loadErr != nil {
		e.Status = StatusFailed
		e.Error = loadErr.Error()
		return e
	}
	if snap != nil {
		e.LoadID = snap.ID.String()
		e.Rows = len(snap.Rows)
		e.Digest = snap.Digest
	}
	return e
}

// Header is the CSV header for load-history.csv.
const Header = "timestamp,load_id,source,rows,digest,status,error"

const (
	numFields    = 7
	colTimestamp = 0
	colLoadID    = 1
	colSource    = 2
	colRows      = 3
	colDigest    = 4
	colStatus    = 5
	colError     = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colLoadID] = e.LoadID
	row[colSource] = e.Source
	row[colRows] = strconv.Itoa(e.Rows)
	row[colDigest] = e.Digest
	row[colStatus] = e.Status
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	rows, err := strconv.Atoi(record[colRows])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing rows %q: %w", record[colRows], err)
	}

	return Entry{
		Timestamp: ts,
		LoadID:    record[colLoadID],
		Source:    record[colSource],
		Rows:      rows,
		Digest:    record[colDigest],
		Status:    record[colStatus],
		Error:     record[colError],
	}, nil
}

// Append writes entries to path, creating the parent directory, the file and
// the header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening load history: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("inspecting load history: %w", err)
	}

	werr := writeEntries(f, entries, info.Size() == 0)
	if cerr := f.Close(); werr == nil && cerr != nil {
		werr = fmt.Errorf("closing load history: %w", cerr)
	}
	return werr
}

// Write prints entries as CSV, including the header.
func Write(w io.Writer, entries []Entry) error {
	return writeEntries(w, entries, true)
}

func writeEntries(w io.Writer, entries []Entry, withHeader bool) error {
	cw := csv.NewWriter(w)
	if withHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries in path, oldest first. A missing file has no
// entries.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening load history: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a load history stream. The header row must match Header.
func Decode(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.ReuseRecord = true

	var entries []Entry
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading load history CSV: %w", err)
		}
		if line == 1 {
			if strings.Join(rec, ",") != Header {
				return nil, fmt.Errorf("unexpected load history header %q", strings.Join(rec, ","))
			}
			continue
		}
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		entries = append(entries, e)
	}
}
