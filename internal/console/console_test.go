package console

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/qareview/internal/kb"
	"github.com/kalambet/qareview/internal/storage"
)

func seg(id, q, a, class string) kb.Segment {
	return kb.Segment{ID: id, DocumentID: "doc-pool", Question: q, Answer: a, Classification: class}
}

func loadedState(t *testing.T, c *Console, gw *fakeGateway) *State {
	t.Helper()
	st := c.NewState()
	c.Bootstrap(context.Background(), st)
	require.True(t, st.Bootstrapped)
	st.Toasts = nil
	return st
}

func TestBootstrap_LoadsEverything(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{seg("s1", "Q1", "A1", ""), seg("s2", "Q2", "A2", "接线类")}
	gw.documents = []kb.Document{{ID: "d1", Name: "接线类"}, {ID: "d2", Name: "电机类"}}
	gw.docSegments["d1"] = []kb.Segment{seg("r1", "q", "a", "接线类")}
	gw.countErr["d2"] = errNetwork
	gw.categories = []kb.Category{{ID: "d1", Name: "接线类"}}
	gw.today = 7
	gw.total = 120

	c := newTestConsole(gw, nil)
	st := c.NewState()
	c.Bootstrap(context.Background(), st)

	assert.Len(t, st.Unreviewed, 2)
	assert.Equal(t, UnsetClassification, st.Unreviewed[0].Classification)
	assert.Equal(t, 2, st.Badges.Unreviewed)
	assert.Equal(t, 7, st.Badges.Today)
	assert.Equal(t, 120, st.Badges.Reviewed)
	assert.Equal(t, CountSlot{Loaded: true, Total: 1}, st.DocCounts["d1"])
	assert.Equal(t, CountSlot{Failed: true}, st.DocCounts["d2"])
	assert.Len(t, st.Categories, 1)
	assert.Empty(t, st.Toasts)
}

func TestBootstrap_FailureNotifies(t *testing.T) {
	gw := newFakeGateway()
	gw.listErr = rejected("数据库不可用")

	c := newTestConsole(gw, nil)
	st := c.NewState()
	c.Bootstrap(context.Background(), st)

	assert.True(t, st.Bootstrapped)
	assert.Empty(t, st.Unreviewed)
	require.NotEmpty(t, st.Toasts)
	assert.Equal(t, Toast{Level: ToastError, Message: "加载失败: 数据库不可用"}, st.Toasts[0])
}

func TestApprove_Guards(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		class    string
		want     Toast
	}{
		{"empty question", "  ", "A1", "接线类", Toast{ToastWarning, "问题和答案不能为空"}},
		{"empty answer", "Q1", "", "接线类", Toast{ToastWarning, "问题和答案不能为空"}},
		{"unset classification", "Q1", "A1", UnsetClassification, Toast{ToastWarning, "请先选择文档分类"}},
		{"unknown classification", "Q1", "A1", "不存在类", Toast{ToastError, "无效的文档分类"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.unreviewed = []kb.Segment{seg("s1", "Q1", "A1", tt.class)}
			gw.categories = []kb.Category{{ID: "d1", Name: "接线类"}}
			c := newTestConsole(gw, nil)
			st := loadedState(t, c, gw)

			ok := c.Approve(context.Background(), st, "s1", tt.question, tt.answer)

			assert.False(t, ok)
			assert.Empty(t, gw.approvals, "no network call on a failed guard")
			assert.Equal(t, tt.want, lastToast(st))
			assert.Len(t, st.Unreviewed, 1)
		})
	}
}

func TestApprove_WithoutClassificationScenario(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{{ID: "s1", Question: "Q1", Answer: "A1", Classification: "-"}}
	c := newTestConsole(gw, nil)
	st := loadedState(t, c, gw)

	c.Approve(context.Background(), st, "s1", "Q1", "A1")

	assert.Equal(t, Toast{ToastWarning, "请先选择文档分类"}, lastToast(st))
	require.Len(t, st.Unreviewed, 1)
	assert.Equal(t, "s1", st.Unreviewed[0].ID)
}

func TestApprove_Success(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{seg("s1", "Q1", "A1", "接线类"), seg("s2", "Q2", "A2", UnsetClassification)}
	gw.categories = []kb.Category{{ID: "d-wire", Name: "接线类"}}
	gw.total = 10
	gw.today = 3
	j := &memJournal{}
	c := newTestConsole(gw, j)
	st := loadedState(t, c, gw)
	c.SyncEdit(st, "s1", "Q1 edited", "A1")
	todayBefore := gw.todayCalls

	ok := c.Approve(context.Background(), st, "s1", " Q1 edited ", "A1")

	require.True(t, ok)
	require.Len(t, gw.approvals, 1)
	assert.Equal(t, kb.ApproveRequest{
		SourceDocumentID: "doc-pool",
		SegmentID:        "s1",
		TargetDocumentID: "d-wire",
		Question:         "Q1 edited",
		Answer:           "A1",
	}, gw.approvals[0])

	assert.Equal(t, -1, st.unreviewedIndex("s1"))
	assert.Equal(t, len(st.Unreviewed), st.Badges.Unreviewed)
	assert.Equal(t, 11, st.Badges.Reviewed)
	assert.Equal(t, todayBefore+1, gw.todayCalls)
	_, tracked := st.Edits.Get("s1")
	assert.False(t, tracked)
	assert.Equal(t, Toast{ToastSuccess, "审核通过"}, lastToast(st))

	require.Len(t, j.actions, 1)
	assert.Equal(t, storage.KindApprove, j.actions[0].Kind)
	assert.Equal(t, storage.OutcomeOK, j.actions[0].Outcome)
}

func TestApprove_RejectedLeavesState(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{seg("s1", "Q1", "A1", "接线类")}
	gw.categories = []kb.Category{{ID: "d-wire", Name: "接线类"}}
	gw.approveErr = rejected("目标文档不存在")
	j := &memJournal{}
	c := newTestConsole(gw, j)
	st := loadedState(t, c, gw)

	ok := c.Approve(context.Background(), st, "s1", "Q1", "A1")

	assert.False(t, ok)
	assert.Len(t, st.Unreviewed, 1)
	assert.Equal(t, 1, st.Badges.Unreviewed)
	assert.Equal(t, Toast{ToastError, "审核失败: 目标文档不存在"}, lastToast(st))
	require.Len(t, j.actions, 1)
	assert.Equal(t, storage.OutcomeFailed, j.actions[0].Outcome)
}

func TestApprove_TransportError(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{seg("s1", "Q1", "A1", "接线类")}
	gw.categories = []kb.Category{{ID: "d-wire", Name: "接线类"}}
	gw.approveErr = errNetwork
	c := newTestConsole(gw, &memJournal{err: fmt.Errorf("disk full")})
	st := loadedState(t, c, gw)

	c.Approve(context.Background(), st, "s1", "Q1", "A1")

	assert.Equal(t, Toast{ToastError, "网络错误，请稍后重试"}, lastToast(st))
	assert.Len(t, st.Unreviewed, 1)
}

func TestDocumentPickerApproval(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{seg("s1", "Q1", "A1", UnsetClassification)}
	gw.documents = []kb.Document{{ID: "d1", Name: "接线类"}, {ID: "d2", Name: "电机类"}}
	gw.approveMsg = "已转移到 电机类"
	c := newTestConsole(gw, nil)
	st := loadedState(t, c, gw)
	ctx := context.Background()

	c.OpenDocumentPicker(ctx, st, "s1", "Q1", "A1")
	require.Equal(t, ModalDocumentPicker, st.ModalKind())

	assert.False(t, c.ConfirmDocumentSelection(ctx, st))
	assert.Equal(t, Toast{ToastWarning, "请选择目标文档"}, lastToast(st))
	assert.Empty(t, gw.approvals)

	c.SelectTargetDocument(st, "d2")
	require.True(t, c.ConfirmDocumentSelection(ctx, st))

	require.Len(t, gw.approvals, 1)
	assert.Equal(t, "d2", gw.approvals[0].TargetDocumentID)
	assert.Empty(t, st.Unreviewed)
	assert.Equal(t, 0, st.Badges.Unreviewed)
	assert.Nil(t, st.Modal)
	assert.Equal(t, NoPending{}, st.Pending)
	assert.Equal(t, Toast{ToastSuccess, "已转移到 电机类"}, lastToast(st))
}

func TestDelete_UsesAreaScope(t *testing.T) {
	tests := []struct {
		area    Area
		dataset string
	}{
		{AreaUnreviewed, "ds-unreviewed"},
		{AreaReviewed, "ds-reviewed"},
	}
	for _, tt := range tests {
		t.Run(string(tt.area), func(t *testing.T) {
			gw := newFakeGateway()
			// same id on both sides
			gw.unreviewed = []kb.Segment{seg("shared", "Q", "A", UnsetClassification)}
			gw.documents = []kb.Document{{ID: "d1", Name: "接线类"}}
			gw.docSegments["d1"] = []kb.Segment{{ID: "shared", DocumentID: "d1", Question: "Q", Answer: "A"}}
			c := newTestConsole(gw, nil)
			st := loadedState(t, c, gw)
			ctx := context.Background()
			c.OpenDocument(ctx, st, "d1")

			docID := "doc-pool"
			if tt.area == AreaReviewed {
				docID = "d1"
			}
			c.RequestDelete(st, "shared", docID, tt.area)
			require.Equal(t, ModalDeleteConfirm, st.ModalKind())
			require.True(t, c.ConfirmDelete(ctx, st))

			require.Len(t, gw.deletes, 1)
			assert.Equal(t, tt.dataset, gw.deletes[0].DatasetID)
			assert.Equal(t, docID, gw.deletes[0].DocumentID)
			assert.Nil(t, st.Modal)
			assert.Equal(t, NoPending{}, st.Pending)

			if tt.area == AreaReviewed {
				assert.Empty(t, st.Reviewed)
				assert.Len(t, st.Unreviewed, 1)
				assert.Equal(t, 0, st.DocCounts["d1"].Total)
			} else {
				assert.Empty(t, st.Unreviewed)
				assert.Len(t, st.Reviewed, 1)
				assert.Equal(t, 0, st.Badges.Unreviewed)
			}
		})
	}
}

func TestDelete_FailureKeepsModal(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{seg("s1", "Q", "A", UnsetClassification)}
	gw.deleteErr = rejected("删除接口异常")
	c := newTestConsole(gw, nil)
	st := loadedState(t, c, gw)

	c.RequestDelete(st, "s1", "doc-pool", AreaUnreviewed)
	assert.False(t, c.ConfirmDelete(context.Background(), st))

	assert.Equal(t, ModalDeleteConfirm, st.ModalKind())
	assert.IsType(t, PendingDeletion{}, st.Pending)
	assert.Len(t, st.Unreviewed, 1)
	assert.Equal(t, Toast{ToastError, "删除失败: 删除接口异常"}, lastToast(st))
}

func TestConfirmWithNothingPending(t *testing.T) {
	gw := newFakeGateway()
	c := newTestConsole(gw, nil)
	st := c.NewState()

	assert.False(t, c.ConfirmDelete(context.Background(), st))
	assert.False(t, c.ConfirmDuplicateDelete(context.Background(), st))
	assert.Empty(t, gw.deletes)
	assert.Equal(t, ToastWarning, lastToast(st).Level)
}

func TestCancelPending(t *testing.T) {
	c := newTestConsole(newFakeGateway(), nil)
	st := c.NewState()

	c.RequestDelete(st, "s1", "d", AreaUnreviewed)
	c.CancelPending(st)
	assert.Nil(t, st.Modal)
	assert.False(t, HasPending(st.Pending))

	c.RequestDuplicateDelete(st, "s1", "d")
	c.CancelPending(st)
	assert.Equal(t, ModalDuplicates, st.ModalKind())
	assert.False(t, HasPending(st.Pending))
}

func TestSaveReviewed(t *testing.T) {
	gw := newFakeGateway()
	gw.documents = []kb.Document{{ID: "d1", Name: "接线类"}}
	gw.docSegments["d1"] = []kb.Segment{{ID: "r1", DocumentID: "d1", Question: "old", Answer: "old"}}
	c := newTestConsole(gw, nil)
	st := loadedState(t, c, gw)
	ctx := context.Background()
	c.OpenDocument(ctx, st, "d1")
	calls := len(gw.segmentsCalls)

	gw.failUpdate["r1"] = rejected("写入失败")
	assert.False(t, c.SaveReviewed(ctx, st, "r1", "new q", "new a"))
	assert.Equal(t, Toast{ToastError, "保存失败: 写入失败"}, lastToast(st))
	rows, _ := st.ReviewedPage()
	require.Len(t, rows, 1)
	assert.Equal(t, "new q", rows[0].Question, "failed save keeps the edited text")
	assert.True(t, rows[0].Dirty)

	delete(gw.failUpdate, "r1")
	gw.docSegments["d1"] = []kb.Segment{{ID: "r1", DocumentID: "d1", Question: "new q", Answer: "new a", UpdatedAt: 1700000000}}
	require.True(t, c.SaveReviewed(ctx, st, "r1", "new q", "new a"))

	last := gw.updates[len(gw.updates)-1]
	assert.Equal(t, "ds-reviewed", last.DatasetID)
	assert.Equal(t, "d1", last.DocumentID)
	assert.Greater(t, len(gw.segmentsCalls), calls, "document reloaded after save")
	assert.Equal(t, kb.Epoch(1700000000), st.Reviewed[0].UpdatedAt)
	assert.Empty(t, st.ReviewedDrafts)
}

func TestSaveReviewed_EmptyRejectedLocally(t *testing.T) {
	gw := newFakeGateway()
	c := newTestConsole(gw, nil)
	st := c.NewState()
	st.CurrentDocument = &kb.Document{ID: "d1"}

	assert.False(t, c.SaveReviewed(context.Background(), st, "r1", "q", "  "))
	assert.Empty(t, gw.updates)
	assert.Equal(t, Toast{ToastWarning, "问题和答案不能为空"}, lastToast(st))
}

func TestClassify_LocalOnly(t *testing.T) {
	gw := newFakeGateway()
	gw.unreviewed = []kb.Segment{seg("s1", "Q", "A", UnsetClassification)}
	gw.categories = []kb.Category{{ID: "d1", Name: "接线类"}, {ID: "d2", Name: "C"}}
	c := newTestConsole(gw, nil)
	st := loadedState(t, c, gw)
	ctx := context.Background()

	c.ShowClassificationSelector(ctx, st, "s1")
	require.Equal(t, ModalClassification, st.ModalKind())
	assert.Equal(t, "s1", st.Modal.SegmentID)

	c.Classify(st, "s1", "C")
	assert.Equal(t, "C", st.ClassificationOf("s1"))
	assert.Nil(t, st.Modal)
	assert.Equal(t, Toast{ToastSuccess, "分类已更改为: C"}, lastToast(st))
	assert.Empty(t, gw.updates)
	assert.Empty(t, gw.approvals)

	require.True(t, c.Approve(ctx, st, "s1", "Q", "A"))
	assert.Equal(t, "d2", gw.approvals[0].TargetDocumentID)
}

func TestSwitchTab_ReviewedReturnsToGrid(t *testing.T) {
	gw := newFakeGateway()
	gw.documents = []kb.Document{{ID: "d1", Name: "接线类"}}
	c := newTestConsole(gw, nil)
	st := loadedState(t, c, gw)
	ctx := context.Background()

	c.OpenDocument(ctx, st, "d1")
	require.NotNil(t, st.CurrentDocument)
	c.SwitchTab(ctx, st, TabUnreviewed)
	c.SwitchTab(ctx, st, TabReviewed)

	assert.Equal(t, TabReviewed, st.Tab)
	assert.Nil(t, st.CurrentDocument)
}

func TestToggleTheme(t *testing.T) {
	c := newTestConsole(newFakeGateway(), nil)
	st := c.NewState()

	c.ToggleTheme(st)
	assert.Equal(t, ThemeDark, st.Theme)
	c.ToggleTheme(st)
	assert.Equal(t, ThemeLight, st.Theme)
	assert.Equal(t, ThemeDark, ParseTheme("dark"))
	assert.Equal(t, ThemeLight, ParseTheme("sepia"))
}
