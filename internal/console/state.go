package console

import (
	"github.com/kalambet/qareview/internal/kb"
)

// UnsetClassification marks a segment no reviewer has classified yet.
const UnsetClassification = "-"

type Tab string

const (
	TabUnreviewed Tab = "unreviewed"
	TabReviewed   Tab = "reviewed"
)

// Area names a renderable region of the console.
type Area string

const (
	AreaUnreviewed Area = "unreviewed"
	AreaDocuments  Area = "documents"
	AreaReviewed   Area = "reviewed"
	AreaDuplicates Area = "duplicates"
	AreaCalendar   Area = "calendar"
	AreaModal      Area = "modal"
	AreaToasts     Area = "toasts"
	AreaBadges     Area = "badges"
)

// Scope maps a list area to the persisted collection its segments live in.
func (a Area) Scope() kb.Scope {
	if a == AreaReviewed || a == AreaDuplicates {
		return kb.ScopeReviewed
	}
	return kb.ScopeUnreviewed
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme returns ThemeDark for "dark" and ThemeLight for anything else.
func ParseTheme(s string) Theme {
	if s == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

// CountSlot is the lazily fetched segment count of one reviewed document.
type CountSlot struct {
	Loaded bool
	Total  int
	Failed bool
}

type Badges struct {
	Unreviewed int
	Reviewed   int
	Today      int
}

// DuplicatesView holds the duplicate-check panel.
type DuplicatesView struct {
	Threshold int // percent, 0-100
	Report    *kb.DuplicateReport
	Err       string
}

// Draft is reviewed-area text that has not been saved successfully.
type Draft struct {
	Question string
	Answer   string
}

// State is everything one browser session sees. Renderers read it, controller
// methods on Console mutate it.
type State struct {
	Tab Tab

	Unreviewed       []kb.Segment
	UnreviewedCursor Cursor
	Edits            *EditTracker

	Documents       []kb.Document
	DocCounts       map[string]CountSlot
	CurrentDocument *kb.Document
	Reviewed        []kb.Segment
	ReviewedCursor  Cursor
	ReviewedDrafts  map[string]Draft

	Categories []kb.Category

	Pending Pending
	Modal   *Modal

	Calendar   Calendar
	Duplicates DuplicatesView
	Badges     Badges
	Theme      Theme

	Toasts   []Toast
	ScrollTo Area

	PageSize     int
	Bootstrapped bool
}

// NewState returns an empty state on the unreviewed tab.
func NewState(pageSize, duplicateThreshold int) *State {
	if pageSize < 1 {
		pageSize = 20
	}
	return &State{
		Tab:              TabUnreviewed,
		UnreviewedCursor: Cursor{Page: 1},
		ReviewedCursor:   Cursor{Page: 1},
		Edits:            NewEditTracker(),
		DocCounts:        make(map[string]CountSlot),
		ReviewedDrafts:   make(map[string]Draft),
		Pending:          NoPending{},
		Duplicates:       DuplicatesView{Threshold: duplicateThreshold},
		Theme:            ThemeLight,
		PageSize:         pageSize,
	}
}

// Notify queues a toast for the next render.
func (s *State) Notify(level ToastLevel, message string) {
	s.Toasts = append(s.Toasts, Toast{Level: level, Message: message})
}

// DrainToasts returns queued toasts and forgets them.
func (s *State) DrainToasts() []Toast {
	t := s.Toasts
	s.Toasts = nil
	return t
}

// OpenModal replaces any open modal.
func (s *State) OpenModal(m Modal) {
	s.Modal = &m
}

// CloseModal closes the modal and drops the pending action.
func (s *State) CloseModal() {
	s.Modal = nil
	s.Pending = NoPending{}
}

// ModalKind reports the open modal's kind, or "" when none is open.
func (s *State) ModalKind() ModalKind {
	if s.Modal == nil {
		return ""
	}
	return s.Modal.Kind
}

func (s *State) unreviewedIndex(id string) int {
	for i, seg := range s.Unreviewed {
		if seg.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) reviewedIndex(id string) int {
	for i, seg := range s.Reviewed {
		if seg.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) removeUnreviewed(id string) bool {
	i := s.unreviewedIndex(id)
	if i < 0 {
		return false
	}
	s.Unreviewed = append(s.Unreviewed[:i], s.Unreviewed[i+1:]...)
	return true
}

func (s *State) removeReviewed(id string) bool {
	i := s.reviewedIndex(id)
	if i < 0 {
		return false
	}
	s.Reviewed = append(s.Reviewed[:i], s.Reviewed[i+1:]...)
	return true
}

func (s *State) document(id string) (kb.Document, bool) {
	for _, d := range s.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return kb.Document{}, false
}

// CategoryID resolves a classification name to its target document id.
func (s *State) CategoryID(name string) (string, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c.ID, true
		}
	}
	return "", false
}

// ClassificationOf returns the classification of an unreviewed segment.
func (s *State) ClassificationOf(segmentID string) string {
	if i := s.unreviewedIndex(segmentID); i >= 0 {
		return s.Unreviewed[i].Classification
	}
	return UnsetClassification
}

// Row is one rendered card of a paginated list.
type Row struct {
	Index    int // 1-based position in the whole dataset
	Segment  kb.Segment
	Question string
	Answer   string
	Dirty    bool
}

// PageInfo describes the clamped page a list renders.
type PageInfo struct {
	Page       int
	TotalPages int
	Total      int
}

// UnreviewedPage returns the visible unreviewed rows with unsaved edits
// overlaid on the synced text.
func (s *State) UnreviewedPage() ([]Row, PageInfo) {
	start, end := Window(len(s.Unreviewed), s.PageSize, s.UnreviewedCursor.Page)
	rows := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		seg := s.Unreviewed[i]
		row := Row{Index: i + 1, Segment: seg, Question: seg.Question, Answer: seg.Answer}
		if e, ok := s.Edits.Get(seg.ID); ok {
			row.Question, row.Answer, row.Dirty = e.Question, e.Answer, true
		}
		rows = append(rows, row)
	}
	return rows, s.pageInfo(len(s.Unreviewed), s.UnreviewedCursor.Page)
}

// ReviewedPage returns the visible rows of the open document with failed
// save drafts overlaid.
func (s *State) ReviewedPage() ([]Row, PageInfo) {
	start, end := Window(len(s.Reviewed), s.PageSize, s.ReviewedCursor.Page)
	rows := make([]Row, 0, end-start)
	for i := start; i < end; i++ {
		seg := s.Reviewed[i]
		row := Row{Index: i + 1, Segment: seg, Question: seg.Question, Answer: seg.Answer}
		if d, ok := s.ReviewedDrafts[seg.ID]; ok {
			row.Question, row.Answer, row.Dirty = d.Question, d.Answer, true
		}
		rows = append(rows, row)
	}
	return rows, s.pageInfo(len(s.Reviewed), s.ReviewedCursor.Page)
}

func (s *State) pageInfo(n, page int) PageInfo {
	return PageInfo{
		Page:       ClampPage(page, n, s.PageSize),
		TotalPages: TotalPages(n, s.PageSize),
		Total:      n,
	}
}

func (s *State) cursor(area Area) *Cursor {
	if area == AreaReviewed {
		return &s.ReviewedCursor
	}
	return &s.UnreviewedCursor
}

func (s *State) datasetLen(area Area) int {
	if area == AreaReviewed {
		return len(s.Reviewed)
	}
	return len(s.Unreviewed)
}

func normalizeSegments(segs []kb.Segment) []kb.Segment {
	for i := range segs {
		if segs[i].Classification == "" {
			segs[i].Classification = UnsetClassification
		}
		segs[i].AddMethod = segs[i].AddMethod.Normalize()
	}
	return segs
}
