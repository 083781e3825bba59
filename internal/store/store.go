// Package store holds the filter selection and the latest catalog page,
// and keeps the derived view state (option lists, capped rows, selection)
// consistent with them.
package store

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/goreef/internal/catalog"
	"github.com/dbsmedya/goreef/internal/logger"
	"github.com/dbsmedya/goreef/internal/types"
)

const (
	DefaultPageSize   = 200
	DefaultDisplayCap = 50
)

// Fetcher loads one page of catalog records. *catalog.Client implements it.
type Fetcher interface {
	FetchRecords(ctx context.Context, filters types.FilterSet, limit int) (*catalog.QueryResult, error)
}

// State is a point-in-time copy of the store for presentation layers.
type State struct {
	Filters      types.FilterSet
	Rows         []types.Record
	Total        int64
	Options      *OptionLists
	Filtered     []types.Record
	Loading      bool
	Error        string
	Selected     types.Record
	RecenterTick uint64
}

// Option returns the option list stored under key, or nil.
func (st State) Option(key string) []string {
	v, _ := st.Options.Get(key)
	return v
}

// request marks the single in-flight fetch.
type request struct {
	id      uuid.UUID
	gen     uint64
	filters types.FilterSet
	started time.Time
}

// Store owns the FilterSet, the fetched rows and everything derived from them.
// It is safe for concurrent use; at most one fetch is in flight at any time.
type Store struct {
	fetcher    Fetcher
	logger     *logger.Logger
	pageSize   int
	displayCap int

	mu       sync.Mutex
	filters  types.FilterSet
	gen      uint64 // bumped on every filter change
	rows     []types.Record
	total    int64
	options  *OptionLists
	filtered []types.Record
	err      string
	selected types.Record
	recenter uint64
	inflight *request
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithPageSize sets the number of rows requested per fetch.
func WithPageSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithDisplayCap sets how many rows are exposed in Filtered.
func WithDisplayCap(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.displayCap = n
		}
	}
}

// WithFilters sets the initial FilterSet.
func WithFilters(fs types.FilterSet) StoreOption {
	return func(s *Store) { s.filters = fs.Clone() }
}

// New creates an idle Store with no rows.
func New(fetcher Fetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher:    fetcher,
		logger:     logger.NewNop(),
		pageSize:   DefaultPageSize,
		displayCap: DefaultDisplayCap,
		rows:       []types.Record{},
		filtered:   []types.Record{},
		options:    buildOptions(nil),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LoadData fetches rows for the current filters. It is a no-op while
// another fetch is in flight; the skipped caller is not notified.
// Failures are recorded in the Error field, never returned.
func (s *Store) LoadData(ctx context.Context) {
	s.mu.Lock()
	if s.inflight != nil {
		id := s.inflight.id
		s.mu.Unlock()
		s.logger.Debugw("load skipped, fetch in flight", "inflight", id.String())
		return
	}
	req := s.begin()
	s.mu.Unlock()

	s.run(ctx, req)
}

// ApplyFilters merges change into the FilterSet and reloads.
// When a fetch is already in flight the change is only merged; that fetch
// notices the newer filters on completion, drops its stale result and
// fetches once more, so several changes during one flight coalesce.
// If ctx is cancelled by then the stale result is dropped without a refetch.
func (s *Store) ApplyFilters(ctx context.Context, change types.FilterChange) {
	s.mu.Lock()
	merged := s.filters.Merge(change)
	if !reflect.DeepEqual(merged, s.filters) {
		s.filters = merged
		s.gen++
	}
	if s.inflight != nil {
		id := s.inflight.id
		s.mu.Unlock()
		s.logger.Debugw("filters merged, in-flight fetch will reload", "inflight", id.String())
		return
	}
	req := s.begin()
	s.mu.Unlock()

	s.run(ctx, req)
}

// begin marks a new fetch in flight. Callers hold s.mu.
func (s *Store) begin() *request {
	req := &request{
		id:      uuid.New(),
		gen:     s.gen,
		filters: s.filters.Clone(),
		started: time.Now(),
	}
	s.inflight = req
	s.err = ""
	return req
}

func (s *Store) run(ctx context.Context, req *request) {
	for {
		log := s.logger.WithRequest(req.id.String()).WithFilters(req.filters)
		log.Debugw("fetching records", "limit", s.pageSize)

		res, err := s.fetcher.FetchRecords(ctx, req.filters, s.pageSize)

		s.mu.Lock()
		if req.gen != s.gen {
			if ctx.Err() != nil {
				s.applyDisplayCap()
				s.inflight = nil
				s.mu.Unlock()
				log.Debug("filters changed during cancelled fetch, result dropped")
				return
			}
			req = s.begin()
			s.mu.Unlock()
			log.Debug("filters changed during fetch, discarding result")
			continue
		}
		s.finish(res, err)
		rows, errMsg := len(s.rows), s.err
		s.mu.Unlock()

		if err != nil {
			log.Warnw("fetch failed", "error", errMsg, "duration", time.Since(req.started))
		} else {
			log.Infow("fetch complete", "rows", rows, "duration", time.Since(req.started))
		}
		return
	}
}

// finish applies a fetch outcome and releases the in-flight slot. Callers hold s.mu.
func (s *Store) finish(res *catalog.QueryResult, err error) {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fmt.Sprintf("%T", err)
		}
		s.err = msg
	} else {
		if res == nil {
			res = &catalog.QueryResult{}
		}
		s.rows = res.Results
		if s.rows == nil {
			s.rows = []types.Record{}
		}
		s.total = res.Total
		s.options = buildOptions(s.rows)
	}
	s.applyDisplayCap()
	s.inflight = nil
}

// applyDisplayCap recomputes Filtered and drops a selection that fell out of it.
func (s *Store) applyDisplayCap() {
	n := min(len(s.rows), s.displayCap)
	s.filtered = slices.Clone(s.rows[:n])

	if s.selected != nil && !containsRecord(s.filtered, s.selected) {
		s.selected = nil
	}
}

func containsRecord(rows []types.Record, r types.Record) bool {
	for _, row := range rows {
		if reflect.DeepEqual(row, r) {
			return true
		}
	}
	return false
}

// Select sets the selection. Membership in Filtered is enforced on the next reload.
func (s *Store) Select(r types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = r
}

// ClearSelection drops the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// TriggerRecenter bumps the recenter counter watched by map-like views.
func (s *Store) TriggerRecenter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recenter++
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != nil
}

// Filters returns a copy of the current FilterSet.
func (s *Store) Filters() types.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// Err returns the message of the last failed fetch, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Snapshot returns a copy of the whole store state.
// Row slices are copied; the records themselves are shared and must not be mutated.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Filters:      s.filters.Clone(),
		Rows:         slices.Clone(s.rows),
		Total:        s.total,
		Options:      cloneOptions(s.options),
		Filtered:     slices.Clone(s.filtered),
		Loading:      s.inflight != nil,
		Error:        s.err,
		Selected:     s.selected,
		RecenterTick: s.recenter,
	}
}
