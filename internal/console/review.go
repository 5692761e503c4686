package console

import (
	"context"
	"strings"

	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
)

// Approve moves an unreviewed segment into the reviewed document its
// classification resolves to. Guards run in order and none of them reach
// the backend: empty text, unset classification, unknown classification.
func (c *Console) Approve(ctx context.Context, st *State, segmentID, question, answer string) bool {
	q, a := strings.TrimSpace(question), strings.TrimSpace(answer)
	if q == "" || a == "" {
		st.Notify(ToastWarning, msgEmptyQA)
		return false
	}
	i := st.unreviewedIndex(segmentID)
	if i < 0 {
		st.Notify(ToastError, msgSegmentGone)
		return false
	}
	seg := st.Unreviewed[i]
	if seg.Classification == "" || seg.Classification == UnsetClassification {
		st.Notify(ToastWarning, msgNoClassification)
		return false
	}
	target, ok := st.CategoryID(seg.Classification)
	if !ok {
		st.Notify(ToastError, msgBadClassification)
		return false
	}

	if _, err := c.approve(ctx, seg, target, q, a); err != nil {
		st.Notify(ToastError, failureMessage(msgApproveFailed, err))
		return false
	}
	c.approved(ctx, st, segmentID)
	st.Notify(ToastSuccess, msgApproved)
	return true
}

func (c *Console) approve(ctx context.Context, seg kb.Segment, target, q, a string) (string, error) {
	msg, err := c.gw.ApproveSegment(ctx, kb.ApproveRequest{
		SourceDocumentID: seg.DocumentID,
		SegmentID:        seg.ID,
		TargetDocumentID: target,
		Question:         q,
		Answer:           a,
	})
	res, errText := outcome(err)
	c.record(storage.Action{
		Kind:             storage.KindApprove,
		Scope:            string(kb.ScopeUnreviewed),
		SegmentID:        seg.ID,
		DocumentID:       seg.DocumentID,
		TargetDocumentID: target,
		Outcome:          res,
		Error:            errText,
	})
	if err != nil {
		c.logger.Warn("approve failed", "segment", seg.ID, "error", err)
	}
	return msg, err
}

// approved applies a successful approval to the session: the segment leaves
// the dataset, the badges follow, today's count is refetched.
func (c *Console) approved(ctx context.Context, st *State, segmentID string) {
	st.removeUnreviewed(segmentID)
	st.Edits.Drop(segmentID)
	st.Badges.Unreviewed = len(st.Unreviewed)
	st.Badges.Reviewed++
	c.LoadTodayStats(ctx, st)
	c.logger.Debug("segment approved", "segment", segmentID, "remaining", len(st.Unreviewed))
}

// OpenDocumentPicker starts an approval into a document chosen by hand.
func (c *Console) OpenDocumentPicker(ctx context.Context, st *State, segmentID, question, answer string) {
	q, a := strings.TrimSpace(question), strings.TrimSpace(answer)
	if q == "" || a == "" {
		st.Notify(ToastWarning, msgEmptyQA)
		return
	}
	i := st.unreviewedIndex(segmentID)
	if i < 0 {
		st.Notify(ToastError, msgSegmentGone)
		return
	}
	if len(st.Documents) == 0 {
		c.LoadDocuments(ctx, st)
	}
	st.Pending = PendingApproval{
		SegmentID:        segmentID,
		SourceDocumentID: st.Unreviewed[i].DocumentID,
		Question:         q,
		Answer:           a,
	}
	st.Modal = &Modal{Kind: ModalDocumentPicker, Title: "选择目标文档", SegmentID: segmentID}
}

// SelectTargetDocument marks the document the pending approval goes to.
func (c *Console) SelectTargetDocument(st *State, documentID string) {
	p, ok := st.Pending.(PendingApproval)
	if !ok {
		st.Notify(ToastWarning, msgNothingPending)
		return
	}
	if _, known := st.document(documentID); !known {
		st.Notify(ToastWarning, msgNoTargetDocument)
		return
	}
	p.TargetDocumentID = documentID
	st.Pending = p
}

// ConfirmDocumentSelection submits the pending approval. On failure the
// picker stays open with its selection.
func (c *Console) ConfirmDocumentSelection(ctx context.Context, st *State) bool {
	p, ok := st.Pending.(PendingApproval)
	if !ok {
		st.Notify(ToastWarning, msgNothingPending)
		return false
	}
	if p.TargetDocumentID == "" {
		st.Notify(ToastWarning, msgNoTargetDocument)
		return false
	}
	seg := kb.Segment{ID: p.SegmentID, DocumentID: p.SourceDocumentID}
	msg, err := c.approve(ctx, seg, p.TargetDocumentID, p.Question, p.Answer)
	if err != nil {
		st.Notify(ToastError, failureMessage(msgOperationFailed, err))
		return false
	}
	c.approved(ctx, st, p.SegmentID)
	if msg == "" {
		msg = msgApproved
	}
	st.Notify(ToastSuccess, msg)
	st.CloseModal()
	return true
}

// RequestDelete opens the delete confirmation for a segment of area.
func (c *Console) RequestDelete(st *State, segmentID, documentID string, area Area) {
	if area != AreaReviewed {
		area = AreaUnreviewed
	}
	st.Pending = PendingDeletion{SegmentID: segmentID, DocumentID: documentID, Area: area}
	st.Modal = &Modal{
		Kind:      ModalDeleteConfirm,
		Title:     "确认删除",
		Body:      "确定要删除这条QA吗？此操作不可恢复。",
		SegmentID: segmentID,
	}
}

// ConfirmDelete deletes the pending segment from the collection of the area
// it was requested from. The modal stays open on failure.
func (c *Console) ConfirmDelete(ctx context.Context, st *State) bool {
	p, ok := st.Pending.(PendingDeletion)
	if !ok {
		st.Notify(ToastWarning, msgNothingPending)
		return false
	}
	scope := p.Area.Scope()
	err := c.gw.DeleteSegment(ctx, kb.DeleteRequest{
		DatasetID:  c.opts.Datasets.For(scope),
		DocumentID: p.DocumentID,
		SegmentID:  p.SegmentID,
	})
	res, errText := outcome(err)
	c.record(storage.Action{
		Kind:       storage.KindDelete,
		Scope:      string(scope),
		SegmentID:  p.SegmentID,
		DocumentID: p.DocumentID,
		Outcome:    res,
		Error:      errText,
	})
	if err != nil {
		c.logger.Warn("delete failed", "segment", p.SegmentID, "scope", scope, "error", err)
		st.Notify(ToastError, failureMessage(msgDeleteFailed, err))
		return false
	}

	if p.Area == AreaReviewed {
		if st.removeReviewed(p.SegmentID) {
			if slot, ok := st.DocCounts[p.DocumentID]; ok && slot.Loaded && slot.Total > 0 {
				slot.Total--
				st.DocCounts[p.DocumentID] = slot
			}
		}
		delete(st.ReviewedDrafts, p.SegmentID)
	} else {
		st.removeUnreviewed(p.SegmentID)
		st.Edits.Drop(p.SegmentID)
		st.Badges.Unreviewed = len(st.Unreviewed)
	}
	st.CloseModal()
	st.Notify(ToastSuccess, msgDeleted)
	return true
}

// CancelPending drops the pending action. Dialogs opened from the
// duplicates panel return to it.
func (c *Console) CancelPending(st *State) {
	switch st.Pending.(type) {
	case PendingDuplicateEdit, PendingDuplicateDelete:
		st.Pending = NoPending{}
		st.Modal = &Modal{Kind: ModalDuplicates, Title: "QA查重"}
	default:
		st.CloseModal()
	}
}

// SaveReviewed persists an edit of a segment in the open document and then
// reloads the document. Failed text stays as a draft.
func (c *Console) SaveReviewed(ctx context.Context, st *State, segmentID, question, answer string) bool {
	st.ReviewedDrafts[segmentID] = Draft{Question: question, Answer: answer}

	q, a := strings.TrimSpace(question), strings.TrimSpace(answer)
	if q == "" || a == "" {
		st.Notify(ToastWarning, msgEmptyQA)
		return false
	}
	if st.CurrentDocument == nil {
		st.Notify(ToastError, msgSegmentGone)
		return false
	}
	documentID := st.CurrentDocument.ID
	if i := st.reviewedIndex(segmentID); i >= 0 && st.Reviewed[i].DocumentID != "" {
		documentID = st.Reviewed[i].DocumentID
	}

	err := c.gw.UpdateSegment(ctx, kb.UpdateRequest{
		DatasetID:  c.opts.Datasets.For(kb.ScopeReviewed),
		DocumentID: documentID,
		SegmentID:  segmentID,
		Question:   q,
		Answer:     a,
	})
	res, errText := outcome(err)
	c.record(storage.Action{
		Kind:       storage.KindUpdate,
		Scope:      string(kb.ScopeReviewed),
		SegmentID:  segmentID,
		DocumentID: documentID,
		Outcome:    res,
		Error:      errText,
	})
	if err != nil {
		st.Notify(ToastError, failureMessage(msgSaveFailed, err))
		return false
	}

	delete(st.ReviewedDrafts, segmentID)
	st.Notify(ToastSuccess, msgSaved)
	c.reloadCurrentDocument(ctx, st)
	return true
}

// ShowClassificationSelector opens the picklist for one unreviewed segment.
func (c *Console) ShowClassificationSelector(ctx context.Context, st *State, segmentID string) {
	if st.unreviewedIndex(segmentID) < 0 {
		st.Notify(ToastError, msgSegmentGone)
		return
	}
	if len(st.Categories) == 0 {
		c.LoadCategories(ctx, st)
	}
	st.Pending = NoPending{}
	st.Modal = &Modal{Kind: ModalClassification, Title: "选择文档分类", SegmentID: segmentID}
}

// Classify sets a segment's classification locally. Nothing is sent to the
// backend until the segment is approved.
func (c *Console) Classify(st *State, segmentID, name string) {
	i := st.unreviewedIndex(segmentID)
	if i < 0 {
		st.Notify(ToastError, msgSegmentGone)
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnsetClassification
	}
	st.Unreviewed[i].Classification = name
	if st.ModalKind() == ModalClassification {
		st.CloseModal()
	}
	st.Notify(ToastSuccess, classifiedMessage(name))
}
