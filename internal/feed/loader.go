package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/fundview-dev/fundview/internal/model"
	"github.com/fundview-dev/fundview/internal/normalize"
)

// Snapshot is one completed feed load. It is never modified after it is
// returned.
type Snapshot struct {
	ID           uuid.UUID
	Generation   uint64
	Source       string
	LoadedAt     time.Time
	Columns      []string // feed header in feed order
	ExtraColumns []string // header columns not mapped to a canonical field
	Rows         []model.Row
	Digest       string // xxhash64 of the raw feed bytes
}

// Options configures a Loader.
type Options struct {
	Client     *http.Client
	DateLayout string
	Logger     *slog.Logger
}

// Loader fetches and normalizes the feed and keeps the latest snapshot.
// Loads may overlap; a completed load is published only if no newer load
// has been published already.
type Loader struct {
	source     string
	client     *http.Client
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.Mutex
	next      uint64
	published uint64
	current   *Snapshot
}

// NewLoader creates a Loader for a URL or file path.
func NewLoader(source string, opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source:     source,
		client:     opts.Client,
		normalizer: normalize.New(opts.DateLayout),
		logger:     logger.With(slog.String("component", "feed")),
		now:        time.Now,
	}
}

// Source returns the feed location.
func (l *Loader) Source() string {
	return l.source
}

// Current returns the published snapshot, or nil before the first
// successful load.
func (l *Loader) Current() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Load runs one load. A failed load leaves the published snapshot in place
// and is not retried.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	l.next++
	gen := l.next
	l.mu.Unlock()

	start := l.now()
	snap, err := l.read(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "feed load failed",
			slog.Uint64("generation", gen),
			slog.String("source", l.source),
			slog.String("error", err.Error()))
		return nil, err
	}
	snap.Generation = gen
	snap.LoadedAt = l.now().UTC()

	if !l.publish(snap) {
		l.logger.InfoContext(ctx, "discarding superseded feed load",
			slog.Uint64("generation", gen))
		return snap, nil
	}

	l.logger.InfoContext(ctx, "feed loaded",
		slog.Uint64("generation", gen),
		slog.String("load_id", snap.ID.String()),
		slog.Int("rows", len(snap.Rows)),
		slog.String("digest", snap.Digest),
		slog.Duration("elapsed", l.now().Sub(start)))
	return snap, nil
}

func (l *Loader) publish(snap *Snapshot) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if snap.Generation < l.published {
		return false
	}
	l.published = snap.Generation
	l.current = snap
	return true
}

func (l *Loader) read(ctx context.Context) (*Snapshot, error) {
	rc, err := Open(ctx, l.client, l.source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	h := xxhash.New()
	header, records, err := ReadTable(io.TeeReader(rc, h))
	if err != nil {
		return nil, err
	}

	rows, err := l.normalizer.Normalize(records)
	if err != nil {
		return nil, fmt.Errorf("normalizing feed: %w", err)
	}

	return &Snapshot{
		ID:           uuid.New(),
		Source:       l.source,
		Columns:      header,
		ExtraColumns: extraColumns(header),
		Rows:         rows,
		Digest:       fmt.Sprintf("%016x", h.Sum64()),
	}, nil
}

func extraColumns(header []string) []string {
	var extra []string
	for _, col := range header {
		if !normalize.IsKnownColumn(col) {
			extra = append(extra, col)
		}
	}
	return extra
}
