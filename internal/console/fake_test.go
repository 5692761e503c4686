package console

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
)

var testDatasets = kb.Datasets{Unreviewed: "ds-unreviewed", Reviewed: "ds-reviewed"}

// fakeGateway is an in-memory Gateway that records every mutating call.
type fakeGateway struct {
	mu sync.Mutex

	unreviewed  []kb.Segment
	documents   []kb.Document
	docSegments map[string][]kb.Segment
	categories  []kb.Category
	monthly     map[string]int
	report      kb.DuplicateReport
	reviewedSeg kb.Segment
	today       int
	total       int

	failUpdate map[string]error // by segment id
	approveErr error
	deleteErr  error
	listErr    error
	countErr   map[string]error
	monthlyErr error
	checkErr   error
	approveMsg string

	updates       []kb.UpdateRequest
	approvals     []kb.ApproveRequest
	deletes       []kb.DeleteRequest
	checks        []float64
	monthlyCalls  [][2]int
	todayCalls    int
	segmentsCalls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		docSegments: map[string][]kb.Segment{},
		failUpdate:  map[string]error{},
		countErr:    map[string]error{},
	}
}

func rejected(msg string) error {
	return &kb.RejectedError{Op: "test", Status: 200, Message: msg}
}

func (f *fakeGateway) ListUnreviewed(context.Context) ([]kb.Segment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	out := append([]kb.Segment(nil), f.unreviewed...)
	return out, len(out), nil
}

func (f *fakeGateway) ListDocuments(context.Context) ([]kb.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kb.Document(nil), f.documents...), nil
}

func (f *fakeGateway) ListDocumentSegments(_ context.Context, id string) ([]kb.Segment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.segmentsCalls = append(f.segmentsCalls, id)
	if err := f.countErr[id]; err != nil {
		return nil, 0, err
	}
	out := append([]kb.Segment(nil), f.docSegments[id]...)
	return out, len(out), nil
}

func (f *fakeGateway) GetReviewedSegment(_ context.Context, id string) (kb.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reviewedSeg.ID != id {
		return kb.Segment{}, rejected("分段不存在")
	}
	return f.reviewedSeg, nil
}

func (f *fakeGateway) UpdateSegment(_ context.Context, req kb.UpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	return f.failUpdate[req.SegmentID]
}

func (f *fakeGateway) ApproveSegment(_ context.Context, req kb.ApproveRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approvals = append(f.approvals, req)
	return f.approveMsg, f.approveErr
}

func (f *fakeGateway) DeleteSegment(_ context.Context, req kb.DeleteRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, req)
	return f.deleteErr
}

func (f *fakeGateway) CheckDuplicates(_ context.Context, threshold float64) (kb.DuplicateReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks = append(f.checks, threshold)
	return f.report, f.checkErr
}

func (f *fakeGateway) TodayCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todayCalls++
	return f.today, nil
}

func (f *fakeGateway) TotalReviewed(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total, nil
}

func (f *fakeGateway) MonthlyStats(_ context.Context, year, month int) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monthlyCalls = append(f.monthlyCalls, [2]int{year, month})
	if f.monthlyErr != nil {
		return nil, f.monthlyErr
	}
	return f.monthly, nil
}

func (f *fakeGateway) DocumentCategories(context.Context) ([]kb.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, nil
}

type memJournal struct {
	mu      sync.Mutex
	actions []storage.Action
	err     error
}

func (j *memJournal) RecordAction(a storage.Action) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.actions = append(j.actions, a)
	return j.err
}

func newTestConsole(gw *fakeGateway, j *memJournal) *Console {
	if j == nil {
		j = &memJournal{}
	}
	c := New(gw, j, Options{
		Datasets:           testDatasets,
		PageSize:           20,
		FlushConcurrency:   4,
		CountConcurrency:   2,
		DuplicateThreshold: 80,
		Location:           time.UTC,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.sleep = func(context.Context, time.Duration) {}
	return c
}

func lastToast(st *State) Toast {
	if len(st.Toasts) == 0 {
		return Toast{}
	}
	return st.Toasts[len(st.Toasts)-1]
}

var errNetwork = errors.New("dial tcp 127.0.0.1:5001: connection refused")
