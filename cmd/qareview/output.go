package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kalambet/qareview/internal/console"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// writeCalendar prints a month as a Sunday-first grid; days with reviews
// show their count after the day number and today is starred.
func writeCalendar(w io.Writer, year int, month time.Month, stats map[string]int, now time.Time) {
	total := 0
	for _, n := range stats {
		total += n
	}
	fmt.Fprintf(w, "%d年%d月  共 %d 条\n", year, int(month), total)

	var header []string
	for _, d := range console.WeekdayHeader {
		header = append(header, fmt.Sprintf("%-8s", d))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, ""), " "))

	cells := console.BuildCalendar(year, month, stats, now)
	var line strings.Builder
	for i, c := range cells {
		cell := ""
		switch {
		case c.Blank:
		case c.HasData:
			cell = fmt.Sprintf("%d:%d条", c.Day, c.Count)
		default:
			cell = fmt.Sprintf("%d", c.Day)
		}
		if c.Today {
			cell += "*"
		}
		line.WriteString(cell)
		if pad := 8 - len([]rune(cell)); pad > 0 {
			line.WriteString(strings.Repeat(" ", pad))
		} else {
			line.WriteString(" ")
		}
		if i%7 == 6 {
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	if line.Len() > 0 {
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}
