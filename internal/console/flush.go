package console

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
)

// SyncEdit records the current textarea contents of an unreviewed segment.
// It reports whether the segment has unsaved changes afterwards.
func (c *Console) SyncEdit(st *State, segmentID, question, answer string) bool {
	i := st.unreviewedIndex(segmentID)
	if i < 0 {
		return false
	}
	return st.Edits.Sync(st.Unreviewed[i], question, answer)
}

type FlushResult struct {
	Succeeded int
	Failed    int
}

// FlushEdits persists every tracked unreviewed edit, one update per entry,
// and waits for all of them. Successful entries become the synced text. The
// tracker is cleared whatever the outcome and one summary toast is queued.
func (c *Console) FlushEdits(ctx context.Context, st *State) FlushResult {
	entries := st.Edits.Entries()
	if len(entries) == 0 {
		return FlushResult{}
	}

	dataset := c.opts.Datasets.For(kb.ScopeUnreviewed)
	errs := make([]error, len(entries))

	var g errgroup.Group
	if c.opts.FlushConcurrency > 0 {
		g.SetLimit(c.opts.FlushConcurrency)
	}
	for i, e := range entries {
		g.Go(func() error {
			errs[i] = c.gw.UpdateSegment(ctx, kb.UpdateRequest{
				DatasetID:  dataset,
				DocumentID: e.DocumentID,
				SegmentID:  e.SegmentID,
				Question:   e.Question,
				Answer:     e.Answer,
			})
			return nil
		})
	}
	_ = g.Wait()

	var res FlushResult
	for i, e := range entries {
		if errs[i] != nil {
			res.Failed++
			c.logger.Warn("edit flush failed", "segment", e.SegmentID, "error", errs[i])
			continue
		}
		res.Succeeded++
		if j := st.unreviewedIndex(e.SegmentID); j >= 0 {
			st.Unreviewed[j].Question = e.Question
			st.Unreviewed[j].Answer = e.Answer
		}
	}
	st.Edits.Clear()

	out := storage.OutcomeOK
	if res.Failed > 0 {
		out = storage.OutcomeFailed
	}
	c.record(storage.Action{
		Kind:    storage.KindFlush,
		Scope:   string(kb.ScopeUnreviewed),
		Outcome: out,
		Detail:  fmt.Sprintf("succeeded=%d failed=%d", res.Succeeded, res.Failed),
	})

	level, msg := flushMessage(res.Succeeded, res.Failed)
	st.Notify(level, msg)
	return res
}

// RequestRefresh asks for confirmation before going home.
func (c *Console) RequestRefresh(st *State) {
	st.Pending = NoPending{}
	st.Modal = &Modal{
		Kind:  ModalRefreshConfirm,
		Title: "刷新确认",
		Body:  "将保存所有未保存的编辑并返回首页，是否继续？",
	}
}

// ConfirmRefresh flushes edits and goes home.
func (c *Console) ConfirmRefresh(ctx context.Context, st *State) {
	st.CloseModal()
	c.GoHome(ctx, st)
}

// GoHome flushes edits, then reloads the unreviewed tab on page 1.
func (c *Console) GoHome(ctx context.Context, st *State) {
	c.FlushEdits(ctx, st)
	st.Tab = TabUnreviewed
	st.UnreviewedCursor = Cursor{Page: 1}
	st.CurrentDocument = nil
	st.Reviewed = nil
	c.LoadUnreviewed(ctx, st)
	c.LoadTodayStats(ctx, st)
	c.LoadReviewedTotal(ctx, st)
	st.ScrollTo = AreaUnreviewed
}
