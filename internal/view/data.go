package view

import (
	"github.com/kalambet/qareview/internal/console"
	"github.com/kalambet/qareview/internal/kb"
)

type option struct {
	ID       string
	Name     string
	Icon     string
	Selected bool
}

type documentCard struct {
	kb.Document
	Icon  string
	Count console.CountSlot
}

type viewData struct {
	State  *console.State
	Active map[string]bool
	Toasts []console.Toast

	Unreviewed     []console.Row
	UnreviewedPage console.PageInfo
	Reviewed       []console.Row
	ReviewedPage   console.PageInfo
	Documents      []documentCard

	Options       []option
	DuplicateEdit console.PendingDuplicateEdit

	Weekdays      []string
	CalendarCells []console.CalendarCell
}

func (r *Renderer) data(st *console.State, drain bool) viewData {
	d := viewData{
		State:    st,
		Weekdays: console.WeekdayHeader,
	}
	if drain {
		d.Toasts = st.DrainToasts()
	}

	kind := st.ModalKind()
	d.Active = map[string]bool{
		string(console.AreaUnreviewed): st.Tab == console.TabUnreviewed,
		string(console.AreaDocuments):  st.Tab == console.TabReviewed && st.CurrentDocument == nil,
		string(console.AreaReviewed):   st.Tab == console.TabReviewed && st.CurrentDocument != nil,
		string(console.AreaDuplicates): kind == console.ModalDuplicates,
		string(console.AreaCalendar):   kind == console.ModalMonthlyStats,
		string(console.AreaModal):      true,
		string(console.AreaToasts):     true,
		string(console.AreaBadges):     true,
	}

	d.Unreviewed, d.UnreviewedPage = st.UnreviewedPage()
	d.Reviewed, d.ReviewedPage = st.ReviewedPage()

	for _, doc := range st.Documents {
		d.Documents = append(d.Documents, documentCard{
			Document: doc,
			Icon:     DocumentIcon(doc.Name),
			Count:    st.DocCounts[doc.ID],
		})
	}

	switch kind {
	case console.ModalClassification:
		current := st.ClassificationOf(st.Modal.SegmentID)
		for _, c := range st.Categories {
			d.Options = append(d.Options, option{ID: c.ID, Name: c.Name, Icon: DocumentIcon(c.Name), Selected: c.Name == current})
		}
	case console.ModalDocumentPicker:
		var target string
		if p, ok := st.Pending.(console.PendingApproval); ok {
			target = p.TargetDocumentID
		}
		for _, doc := range st.Documents {
			d.Options = append(d.Options, option{ID: doc.ID, Name: doc.Name, Icon: DocumentIcon(doc.Name), Selected: doc.ID == target})
		}
	case console.ModalDuplicateEdit:
		if p, ok := st.Pending.(console.PendingDuplicateEdit); ok {
			d.DuplicateEdit = p
		}
	case console.ModalMonthlyStats:
		d.CalendarCells = console.BuildCalendar(st.Calendar.Year, st.Calendar.Month, st.Calendar.Stats, r.now().In(r.loc))
	}
	return d
}
