package api

import (
	"context"
	"net/url"

	"github.com/kalambet/qareview/internal/console"
)

// action is one POST /actions/{name} interaction. Silent actions answer 204
// and leave the page as it is.
type action struct {
	run    func(ctx context.Context, c *console.Console, st *console.State, f url.Values)
	silent bool
}

func area(f url.Values) console.Area {
	if console.Area(f.Get("area")) == console.AreaReviewed {
		return console.AreaReviewed
	}
	return console.AreaUnreviewed
}

var actions = map[string]action{
	"sync-edit": {silent: true, run: func(_ context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SyncEdit(st, f.Get("segment_id"), f.Get("question"), f.Get("answer"))
	}},
	"switch-tab": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SwitchTab(ctx, st, console.Tab(f.Get("tab")))
	}},
	"open-document": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.OpenDocument(ctx, st, f.Get("document_id"))
	}},
	"back-to-documents": {run: func(ctx context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.BackToDocuments(ctx, st)
	}},
	"approve": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SyncEdit(st, f.Get("segment_id"), f.Get("question"), f.Get("answer"))
		c.Approve(ctx, st, f.Get("segment_id"), f.Get("question"), f.Get("answer"))
	}},
	"open-document-picker": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SyncEdit(st, f.Get("segment_id"), f.Get("question"), f.Get("answer"))
		c.OpenDocumentPicker(ctx, st, f.Get("segment_id"), f.Get("question"), f.Get("answer"))
	}},
	"select-document": {run: func(_ context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SelectTargetDocument(st, f.Get("document_id"))
	}},
	"confirm-document": {run: func(ctx context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.ConfirmDocumentSelection(ctx, st)
	}},
	"request-delete": {run: func(_ context.Context, c *console.Console, st *console.State, f url.Values) {
		c.RequestDelete(st, f.Get("segment_id"), f.Get("document_id"), area(f))
	}},
	"confirm-delete": {run: func(ctx context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.ConfirmDelete(ctx, st)
	}},
	"cancel": {run: func(_ context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.CancelPending(st)
	}},
	"save-reviewed": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SaveReviewed(ctx, st, f.Get("segment_id"), f.Get("question"), f.Get("answer"))
	}},
	"change-page": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.ChangePage(ctx, st, area(f), formInt(f, "delta", 0))
	}},
	"jump-page": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.JumpToPage(ctx, st, area(f), f.Get("value"))
	}},
	"show-classification": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.ShowClassificationSelector(ctx, st, f.Get("segment_id"))
	}},
	"classify": {run: func(_ context.Context, c *console.Console, st *console.State, f url.Values) {
		c.Classify(st, f.Get("segment_id"), f.Get("name"))
	}},
	"open-duplicates": {run: func(_ context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.OpenDuplicates(st)
	}},
	"set-threshold": {silent: true, run: func(_ context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SetThreshold(st, formInt(f, "value", st.Duplicates.Threshold))
	}},
	"check-duplicates": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SetThreshold(st, formInt(f, "value", st.Duplicates.Threshold))
		c.CheckDuplicates(ctx, st)
	}},
	"edit-duplicate": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.EditDuplicate(ctx, st, f.Get("segment_id"), f.Get("document_id"))
	}},
	"save-duplicate": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.SaveDuplicateEdit(ctx, st, f.Get("question"), f.Get("answer"))
	}},
	"request-duplicate-delete": {run: func(_ context.Context, c *console.Console, st *console.State, f url.Values) {
		c.RequestDuplicateDelete(st, f.Get("segment_id"), f.Get("document_id"))
	}},
	"confirm-duplicate-delete": {run: func(ctx context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.ConfirmDuplicateDelete(ctx, st)
	}},
	"show-monthly-stats": {run: func(ctx context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.ShowMonthlyStats(ctx, st)
	}},
	"change-month": {run: func(ctx context.Context, c *console.Console, st *console.State, f url.Values) {
		c.ChangeMonth(ctx, st, formInt(f, "delta", 0))
	}},
	"request-refresh": {run: func(_ context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.RequestRefresh(st)
	}},
	"confirm-refresh": {run: func(ctx context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.ConfirmRefresh(ctx, st)
	}},
	"toggle-theme": {run: func(_ context.Context, c *console.Console, st *console.State, _ url.Values) {
		c.ToggleTheme(st)
	}},
}
