package console

import (
	"context"
	"strings"

	"github.com/kalambet/qareview/internal/format"
	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
)

// OpenDuplicates shows the duplicate-check panel.
func (c *Console) OpenDuplicates(st *State) {
	st.Pending = NoPending{}
	st.Modal = &Modal{Kind: ModalDuplicates, Title: "QA查重"}
}

// SetThreshold sets the similarity threshold in percent, clamped to 0-100.
func (c *Console) SetThreshold(st *State, percent int) {
	st.Duplicates.Threshold = min(max(percent, 0), 100)
}

// CheckDuplicates runs the server-side duplicate grouping over all reviewed
// documents at the current threshold.
func (c *Console) CheckDuplicates(ctx context.Context, st *State) bool {
	st.Duplicates.Err = ""
	report, err := c.gw.CheckDuplicates(ctx, float64(st.Duplicates.Threshold)/100)
	if err != nil {
		st.Duplicates.Report = nil
		st.Duplicates.Err = failureMessage(msgCheckFailed, err)
		st.Notify(ToastError, st.Duplicates.Err)
		return false
	}
	st.Duplicates.Report = &report
	c.logger.Debug("duplicates checked", "threshold", st.Duplicates.Threshold, "groups", report.TotalGroups)
	return true
}

// EditDuplicate fetches the current text of a duplicate and opens the
// editor on it.
func (c *Console) EditDuplicate(ctx context.Context, st *State, segmentID, documentID string) bool {
	seg, err := c.gw.GetReviewedSegment(ctx, segmentID)
	if err != nil {
		c.logger.Warn("fetch duplicate failed", "segment", segmentID, "error", err)
		st.Notify(ToastError, msgFetchSegmentFailed)
		return false
	}
	q, a := seg.Question, seg.Answer
	if q == "" && a == "" && seg.Content != "" {
		q, a = format.ParseQAContent(seg.Content)
	}
	st.Pending = PendingDuplicateEdit{SegmentID: segmentID, DocumentID: documentID, Question: q, Answer: a}
	st.Modal = &Modal{Kind: ModalDuplicateEdit, Title: "编辑QA", SegmentID: segmentID}
	return true
}

// SaveDuplicateEdit persists the duplicate editor and re-runs the check.
func (c *Console) SaveDuplicateEdit(ctx context.Context, st *State, question, answer string) bool {
	p, ok := st.Pending.(PendingDuplicateEdit)
	if !ok {
		st.Notify(ToastWarning, msgNothingPending)
		return false
	}
	p.Question, p.Answer = question, answer
	st.Pending = p

	q, a := strings.TrimSpace(question), strings.TrimSpace(answer)
	if q == "" || a == "" {
		st.Notify(ToastError, msgEmptyQA)
		return false
	}
	err := c.gw.UpdateSegment(ctx, kb.UpdateRequest{
		DatasetID:  c.opts.Datasets.For(kb.ScopeReviewed),
		DocumentID: p.DocumentID,
		SegmentID:  p.SegmentID,
		Question:   q,
		Answer:     a,
	})
	res, errText := outcome(err)
	c.record(storage.Action{
		Kind:       storage.KindUpdate,
		Scope:      string(kb.ScopeReviewed),
		SegmentID:  p.SegmentID,
		DocumentID: p.DocumentID,
		Outcome:    res,
		Error:      errText,
	})
	if err != nil {
		st.Notify(ToastError, failureMessage(msgSaveFailed, err))
		return false
	}
	st.Notify(ToastSuccess, msgDuplicateSaved)
	c.afterDuplicateChange(ctx, st, p.DocumentID)
	return true
}

// RequestDuplicateDelete opens the confirmation for deleting a duplicate.
func (c *Console) RequestDuplicateDelete(st *State, segmentID, documentID string) {
	st.Pending = PendingDuplicateDelete{SegmentID: segmentID, DocumentID: documentID}
	st.Modal = &Modal{
		Kind:      ModalDuplicateDelete,
		Title:     "删除确认",
		Body:      "确认要删除这个QA吗？此操作不可恢复！",
		SegmentID: segmentID,
	}
}

// ConfirmDuplicateDelete deletes the pending duplicate from the reviewed
// collection and re-runs the check.
func (c *Console) ConfirmDuplicateDelete(ctx context.Context, st *State) bool {
	p, ok := st.Pending.(PendingDuplicateDelete)
	if !ok {
		st.Notify(ToastWarning, msgNothingPending)
		return false
	}
	err := c.gw.DeleteSegment(ctx, kb.DeleteRequest{
		DatasetID:  c.opts.Datasets.For(kb.ScopeReviewed),
		DocumentID: p.DocumentID,
		SegmentID:  p.SegmentID,
	})
	res, errText := outcome(err)
	c.record(storage.Action{
		Kind:       storage.KindDelete,
		Scope:      string(kb.ScopeReviewed),
		SegmentID:  p.SegmentID,
		DocumentID: p.DocumentID,
		Outcome:    res,
		Error:      errText,
	})
	if err != nil {
		st.Notify(ToastError, failureMessage(msgDeleteFailed, err))
		return false
	}
	st.Notify(ToastSuccess, msgDuplicateDeleted)
	c.afterDuplicateChange(ctx, st, p.DocumentID)
	return true
}

// afterDuplicateChange returns to the panel and recomputes the groups after
// the recheck delay. Group membership is computed by the server only.
func (c *Console) afterDuplicateChange(ctx context.Context, st *State, documentID string) {
	st.Pending = NoPending{}
	st.Modal = &Modal{Kind: ModalDuplicates, Title: "QA查重"}
	if st.CurrentDocument != nil && st.CurrentDocument.ID == documentID {
		c.reloadCurrentDocument(ctx, st)
	}
	c.sleep(ctx, c.opts.RecheckDelay)
	c.CheckDuplicates(ctx, st)
}
