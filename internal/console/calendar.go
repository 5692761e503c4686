package console

import (
	"time"

	"github.com/kalambet/qareview/internal/format"
)

// Calendar is the monthly statistics cache. Stats maps YYYY-MM-DD to the
// number of segments reviewed that day and is replaced on every navigation.
type Calendar struct {
	Year  int
	Month time.Month
	Stats map[string]int
	Err   string
}

// WeekdayHeader starts on Sunday.
var WeekdayHeader = []string{"日", "一", "二", "三", "四", "五", "六"}

// ShiftMonth moves (year, month) by delta months, wrapping across years.
func ShiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	idx := year*12 + int(month) - 1 + delta
	y := idx / 12
	m := idx % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, time.Month(m + 1)
}

// CalendarCell is one grid cell. Blank cells pad the first week.
type CalendarCell struct {
	Blank   bool
	Day     int
	Key     string
	Count   int
	Today   bool
	HasData bool
}

// BuildCalendar lays out a month as a flat 7-column grid: one blank cell per
// weekday before the 1st, then one cell per day.
func BuildCalendar(year int, month time.Month, stats map[string]int, now time.Time) []CalendarCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	offset := int(first.Weekday())

	currentMonth := now.Year() == year && now.Month() == month

	cells := make([]CalendarCell, 0, offset+days)
	for i := 0; i < offset; i++ {
		cells = append(cells, CalendarCell{Blank: true})
	}
	for d := 1; d <= days; d++ {
		key := format.DateKey(year, int(month), d)
		n := stats[key]
		cells = append(cells, CalendarCell{
			Day:     d,
			Key:     key,
			Count:   n,
			Today:   currentMonth && now.Day() == d,
			HasData: n > 0,
		})
	}
	return cells
}

// Total sums the month's counts.
func (c Calendar) Total() int {
	n := 0
	for _, v := range c.Stats {
		n += v
	}
	return n
}
