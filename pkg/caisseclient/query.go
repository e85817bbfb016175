package caisseclient

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"
)

// DefaultPageSize matches the store's default.
const DefaultPageSize = 10

// OperationLister is the part of Client that OperationsQuery needs.
type OperationLister interface {
	ListOperations(ctx context.Context, page int, filters OperationFilters) (*Page, error)
}

// Filters are the secondary filters a user edits before applying them.
type Filters struct {
	OperationType string
	// Date is a single day, YYYY-MM-DD. It is sent as the range [Date, Date+1 day].
	Date        string
	PerformedBy string
}

// QueryState is a consistent copy of an OperationsQuery's state.
type QueryState struct {
	Page       int
	CaisseID   *int64
	ShowAll    bool
	Filters    Filters
	Operations []Operation
	Count      int64
	TotalPages int
	Err        error
}

// OperationsQuery holds one filtered, paginated view of the ledger. Requests run
// outside the lock; a response that arrives after a newer request was issued is
// dropped.
type OperationsQuery struct {
	lister   OperationLister
	pageSize int
	logger   *slog.Logger

	mu       sync.Mutex
	seq      uint64
	caisseID *int64
	showAll  bool
	pending  Filters
	applied  Filters
	page     int
	ops      []Operation
	count    int64
	err      error

	version      uint64
	report       *Report
	reportKey    uint64
	reportMidday time.Time
}

// QueryOption configures an OperationsQuery.
type QueryOption func(*OperationsQuery)

// WithPageSize sets the page size sent with every request.
func WithPageSize(n int) QueryOption {
	return func(q *OperationsQuery) {
		if n > 0 {
			q.pageSize = n
		}
	}
}

// WithQueryLogger logs dropped responses and failures to l.
func WithQueryLogger(l *slog.Logger) QueryOption {
	return func(q *OperationsQuery) { q.logger = l }
}

func NewOperationsQuery(lister OperationLister, opts ...QueryOption) *OperationsQuery {
	q := &OperationsQuery{
		lister:   lister,
		pageSize: DefaultPageSize,
		logger:   slog.New(slog.DiscardHandler),
		page:     1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// SelectCaisse switches to another register (nil for none) and reloads page 1 without
// the secondary filters. Edited filters are kept for a later ApplyFilters.
func (q *OperationsQuery) SelectCaisse(ctx context.Context, caisseID *int64) error {
	q.mu.Lock()
	q.caisseID = caisseID
	q.applied = Filters{}
	q.mu.Unlock()
	return q.fetch(ctx, 1)
}

// SetShowAll toggles querying across every register, then reloads page 1 without the
// secondary filters.
func (q *OperationsQuery) SetShowAll(ctx context.Context, showAll bool) error {
	q.mu.Lock()
	q.showAll = showAll
	q.applied = Filters{}
	q.mu.Unlock()
	return q.fetch(ctx, 1)
}

// SetFilters records edited filters. Nothing is queried until ApplyFilters.
func (q *OperationsQuery) SetFilters(f Filters) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = f
}

// ApplyFilters validates the edited filters and queries page 1 with them.
func (q *OperationsQuery) ApplyFilters(ctx context.Context) error {
	q.mu.Lock()
	f := q.pending
	q.mu.Unlock()

	if _, err := f.toParams(); err != nil {
		q.fail(err)
		return err
	}

	q.mu.Lock()
	q.applied = f
	q.mu.Unlock()
	return q.fetch(ctx, 1)
}

// ResetFilters clears the secondary filters and queries page 1 with only the register
// filter.
func (q *OperationsQuery) ResetFilters(ctx context.Context) error {
	q.mu.Lock()
	q.pending = Filters{}
	q.applied = Filters{}
	q.mu.Unlock()
	return q.fetch(ctx, 1)
}

// GoToPage queries page with the applied filters.
func (q *OperationsQuery) GoToPage(ctx context.Context, page int) error {
	if page < 1 {
		err := validationError("page must be at least 1")
		q.fail(err)
		return err
	}
	return q.fetch(ctx, page)
}

// Reload re-queries the current page.
func (q *OperationsQuery) Reload(ctx context.Context) error {
	q.mu.Lock()
	page := q.page
	q.mu.Unlock()
	return q.fetch(ctx, page)
}

// Snapshot returns a copy of the current state.
func (q *OperationsQuery) Snapshot() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueryState{
		Page:       q.page,
		CaisseID:   q.caisseID,
		ShowAll:    q.showAll,
		Filters:    q.applied,
		Operations: append([]Operation(nil), q.ops...),
		Count:      q.count,
		TotalPages: totalPages(q.count, q.pageSize),
		Err:        q.err,
	}
}

// TotalPages is ceil(count / page size) for the held result.
func (q *OperationsQuery) TotalPages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return totalPages(q.count, q.pageSize)
}

// Report is WindowedReport over the held page. The result is reused until the held
// list changes or now falls on another day. Callers get their own copy of the map.
func (q *OperationsQuery) Report(now time.Time) Report {
	q.mu.Lock()
	defer q.mu.Unlock()
	day := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	if q.report == nil || q.reportKey != q.version || !q.reportMidday.Equal(day) {
		r := WindowedReport(q.ops, now)
		q.report = &r
		q.reportKey = q.version
		q.reportMidday = day
	}
	r := *q.report
	r.OperationsByType = maps.Clone(r.OperationsByType)
	return r
}

func (q *OperationsQuery) fetch(ctx context.Context, page int) error {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	params, err := q.applied.toParams()
	if err != nil {
		q.mu.Unlock()
		q.fail(err)
		return err
	}
	params.PageSize = q.pageSize
	if !q.showAll {
		if q.caisseID == nil {
			q.setResultLocked(page, nil, 0, nil)
			q.mu.Unlock()
			return nil
		}
		id := *q.caisseID
		params.Caisse = &id
	}
	q.mu.Unlock()

	result, err := q.lister.ListOperations(ctx, page, params)

	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.seq {
		q.logger.DebugContext(ctx, "Dropping stale operations response", slog.Uint64("seq", seq), slog.Uint64("latest", q.seq))
		return nil
	}
	if err != nil {
		q.logger.WarnContext(ctx, "Operations query failed", slog.Int("page", page), slog.String("error", err.Error()))
		q.setResultLocked(q.page, nil, 0, err)
		return err
	}
	q.setResultLocked(page, result.Results, result.Count, nil)
	return nil
}

// fail clears the held list and records err. It also invalidates in-flight requests.
func (q *OperationsQuery) fail(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	q.setResultLocked(q.page, nil, 0, err)
}

func (q *OperationsQuery) setResultLocked(page int, ops []Operation, count int64, err error) {
	q.page = page
	q.ops = ops
	q.count = count
	q.err = err
	q.version++
}

// toParams validates f and builds the request parameters it stands for.
func (f Filters) toParams() (OperationFilters, error) {
	var p OperationFilters
	if t := strings.TrimSpace(f.OperationType); t != "" {
		p.OperationType = strings.ToUpper(t)
	}
	if d := strings.TrimSpace(f.Date); d != "" {
		day, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return p, validationError("date must be YYYY-MM-DD")
		}
		p.StartDate = day.Format(time.DateOnly)
		p.EndDate = day.AddDate(0, 0, 1).Format(time.DateOnly)
	}
	p.Search = strings.TrimSpace(f.PerformedBy)
	return p, nil
}

func totalPages(count int64, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}
