package console

import (
	"context"
)

// ShowMonthlyStats opens the calendar on the current month.
func (c *Console) ShowMonthlyStats(ctx context.Context, st *State) {
	now := c.now().In(c.opts.Location)
	st.Calendar = Calendar{Year: now.Year(), Month: now.Month()}
	st.Pending = NoPending{}
	st.Modal = &Modal{Kind: ModalMonthlyStats, Title: "月度审核统计"}
	c.loadMonth(ctx, st)
}

// ChangeMonth moves the calendar by delta months and refetches.
func (c *Console) ChangeMonth(ctx context.Context, st *State, delta int) {
	y, m := ShiftMonth(st.Calendar.Year, st.Calendar.Month, delta)
	st.Calendar = Calendar{Year: y, Month: m}
	c.loadMonth(ctx, st)
}

func (c *Console) loadMonth(ctx context.Context, st *State) {
	stats, err := c.gw.MonthlyStats(ctx, st.Calendar.Year, int(st.Calendar.Month))
	if err != nil {
		st.Calendar.Stats = map[string]int{}
		st.Calendar.Err = failureMessage(msgLoadFailed, err)
		st.Notify(ToastError, st.Calendar.Err)
		return
	}
	if stats == nil {
		stats = map[string]int{}
	}
	st.Calendar.Stats = stats
}
