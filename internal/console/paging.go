package console

import (
	"context"
	"strconv"
	"strings"
)

// ChangePage moves area's cursor by delta, clamped to the valid range.
// Unreviewed edits are flushed first.
func (c *Console) ChangePage(ctx context.Context, st *State, area Area, delta int) {
	if area != AreaReviewed {
		area = AreaUnreviewed
		c.FlushEdits(ctx, st)
	}
	cur := st.cursor(area)
	cur.Page = ClampPage(cur.Page+delta, st.datasetLen(area), st.PageSize)
	st.ScrollTo = area
}

// JumpToPage moves area's cursor to the page typed by the user.
func (c *Console) JumpToPage(ctx context.Context, st *State, area Area, input string) bool {
	if area != AreaReviewed {
		area = AreaUnreviewed
	}
	page, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		st.Notify(ToastWarning, msgInvalidPage)
		return false
	}
	total := max(1, TotalPages(st.datasetLen(area), st.PageSize))
	if page < 1 || page > total {
		st.Notify(ToastWarning, pageRangeMessage(total))
		return false
	}
	if area == AreaUnreviewed {
		c.FlushEdits(ctx, st)
	}
	st.cursor(area).Page = page
	st.ScrollTo = area
	st.Notify(ToastSuccess, jumpedMessage(page))
	return true
}
