package console

import (
	"context"
	"log/slog"
	"time"

	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
)

// Gateway is the knowledge-base backend as the console uses it.
type Gateway interface {
	ListUnreviewed(ctx context.Context) ([]kb.Segment, int, error)
	ListDocuments(ctx context.Context) ([]kb.Document, error)
	ListDocumentSegments(ctx context.Context, documentID string) ([]kb.Segment, int, error)
	GetReviewedSegment(ctx context.Context, segmentID string) (kb.Segment, error)
	UpdateSegment(ctx context.Context, req kb.UpdateRequest) error
	ApproveSegment(ctx context.Context, req kb.ApproveRequest) (string, error)
	DeleteSegment(ctx context.Context, req kb.DeleteRequest) error
	CheckDuplicates(ctx context.Context, threshold float64) (kb.DuplicateReport, error)
	TodayCount(ctx context.Context) (int, error)
	TotalReviewed(ctx context.Context) (int, error)
	MonthlyStats(ctx context.Context, year, month int) (map[string]int, error)
	DocumentCategories(ctx context.Context) ([]kb.Category, error)
}

// Journal records mutating backend calls.
type Journal interface {
	RecordAction(a storage.Action) error
}

type nopJournal struct{}

func (nopJournal) RecordAction(storage.Action) error { return nil }

type Options struct {
	Datasets           kb.Datasets
	PageSize           int
	FlushConcurrency   int
	CountConcurrency   int
	RecheckDelay       time.Duration
	DuplicateThreshold int
	Location           *time.Location
}

// Console implements every interaction of the review console. It holds no
// per-client data; each method acts on the State it is given.
type Console struct {
	gw      Gateway
	journal Journal
	opts    Options
	logger  *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func New(gw Gateway, journal Journal, opts Options, logger *slog.Logger) *Console {
	if journal == nil {
		journal = nopJournal{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	return &Console{
		gw:      gw,
		journal: journal,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// NewState returns a fresh session state sized by the console options.
func (c *Console) NewState() *State {
	return NewState(c.opts.PageSize, c.opts.DuplicateThreshold)
}

// Location is the display time zone.
func (c *Console) Location() *time.Location {
	return c.opts.Location
}

func (c *Console) record(a storage.Action) {
	if a.At.IsZero() {
		a.At = c.now()
	}
	if err := c.journal.RecordAction(a); err != nil {
		c.logger.Warn("journal write failed", "kind", a.Kind, "segment", a.SegmentID, "error", err)
	}
}

func outcome(err error) (string, string) {
	if err != nil {
		return storage.OutcomeFailed, err.Error()
	}
	return storage.OutcomeOK, ""
}

// Bootstrap performs the initial load of a new session. Every step fails
// independently and only notifies.
func (c *Console) Bootstrap(ctx context.Context, st *State) {
	c.LoadUnreviewed(ctx, st)
	c.LoadDocuments(ctx, st)
	c.LoadTodayStats(ctx, st)
	c.LoadReviewedTotal(ctx, st)
	c.LoadCategories(ctx, st)
	st.Bootstrapped = true
}

func (c *Console) LoadUnreviewed(ctx context.Context, st *State) {
	segs, _, err := c.gw.ListUnreviewed(ctx)
	if err != nil {
		st.Notify(ToastError, failureMessage(msgLoadFailed, err))
		return
	}
	st.Unreviewed = normalizeSegments(segs)
	st.Badges.Unreviewed = len(st.Unreviewed)
	c.logger.Debug("unreviewed loaded", "count", len(st.Unreviewed))
}

// LoadDocuments loads the reviewed document list and then fans out the
// per-document count fetches.
func (c *Console) LoadDocuments(ctx context.Context, st *State) {
	docs, err := c.gw.ListDocuments(ctx)
	if err != nil {
		st.Notify(ToastError, failureMessage(msgLoadDocumentsFailed, err))
		return
	}
	st.Documents = docs
	c.RefreshDocumentCounts(ctx, st)
}

// RefreshDocumentCounts fetches every document's segment count. A failed
// fetch only marks its own slot.
func (c *Console) RefreshDocumentCounts(ctx context.Context, st *State) {
	if len(st.Documents) == 0 {
		return
	}
	results := kb.CountDocuments(ctx, c.gw, st.Documents, c.opts.CountConcurrency)

	counts := make(map[string]CountSlot, len(results))
	failed := 0
	for id, r := range results {
		if r.Err != nil {
			counts[id] = CountSlot{Failed: true}
			failed++
			continue
		}
		counts[id] = CountSlot{Loaded: true, Total: r.Total}
	}
	st.DocCounts = counts
	if failed > 0 {
		c.logger.Warn("document counts incomplete", "documents", len(st.Documents), "failed", failed)
	}
}

func (c *Console) LoadTodayStats(ctx context.Context, st *State) {
	n, err := c.gw.TodayCount(ctx)
	if err != nil {
		c.logger.Warn("today count failed", "error", err)
		return
	}
	st.Badges.Today = n
}

func (c *Console) LoadReviewedTotal(ctx context.Context, st *State) {
	n, err := c.gw.TotalReviewed(ctx)
	if err != nil {
		c.logger.Warn("reviewed total failed", "error", err)
		return
	}
	st.Badges.Reviewed = n
}

func (c *Console) LoadCategories(ctx context.Context, st *State) {
	cats, err := c.gw.DocumentCategories(ctx)
	if err != nil {
		c.logger.Warn("categories failed", "error", err)
		return
	}
	st.Categories = cats
}

// SwitchTab changes tab. The reviewed tab always opens on the document grid.
func (c *Console) SwitchTab(ctx context.Context, st *State, tab Tab) {
	switch tab {
	case TabReviewed:
		st.Tab = TabReviewed
		st.CurrentDocument = nil
		st.Reviewed = nil
		clear(st.ReviewedDrafts)
		c.LoadDocuments(ctx, st)
	default:
		st.Tab = TabUnreviewed
	}
	c.logger.Debug("tab switched", "tab", st.Tab)
}

// OpenDocument shows the segments of one reviewed document.
func (c *Console) OpenDocument(ctx context.Context, st *State, documentID string) {
	doc, ok := st.document(documentID)
	if !ok {
		doc = kb.Document{ID: documentID, Name: documentID}
	}
	st.Tab = TabReviewed
	st.CurrentDocument = &doc
	st.ReviewedCursor = Cursor{Page: 1}
	st.Reviewed = nil
	clear(st.ReviewedDrafts)
	c.reloadCurrentDocument(ctx, st)
	st.ScrollTo = AreaReviewed
}

func (c *Console) reloadCurrentDocument(ctx context.Context, st *State) bool {
	if st.CurrentDocument == nil {
		return false
	}
	id := st.CurrentDocument.ID
	segs, total, err := c.gw.ListDocumentSegments(ctx, id)
	if err != nil {
		st.Notify(ToastError, failureMessage(msgLoadFailed, err))
		return false
	}
	st.Reviewed = normalizeSegments(segs)
	if total < len(segs) {
		total = len(segs)
	}
	st.DocCounts[id] = CountSlot{Loaded: true, Total: total}
	return true
}

// BackToDocuments leaves the open document for the grid.
func (c *Console) BackToDocuments(ctx context.Context, st *State) {
	st.CurrentDocument = nil
	st.Reviewed = nil
	clear(st.ReviewedDrafts)
	c.RefreshDocumentCounts(ctx, st)
	st.ScrollTo = AreaDocuments
}

// ToggleTheme flips between light and dark.
func (c *Console) ToggleTheme(st *State) {
	if st.Theme == ThemeDark {
		st.Theme = ThemeLight
		st.Notify(ToastSuccess, "已切换到明亮主题")
		return
	}
	st.Theme = ThemeDark
	st.Notify(ToastSuccess, "已切换到暗色主题")
}
