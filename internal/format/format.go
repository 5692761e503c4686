// Package format holds the pure text helpers shared by the renderers and the
// gateway: timestamp formatting, escaping, textarea sizing and QA content
// parsing.
package format

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"
)

// Placeholder is shown in place of a missing timestamp.
const Placeholder = "-"

// Timestamp formats epoch seconds the way the console displays creation and
// update times (zh-CN locale, 2-digit fields).
func Timestamp(epoch int64, loc *time.Location) string {
	if epoch == 0 {
		return Placeholder
	}
	return time.Unix(epoch, 0).In(location(loc)).Format("2006/01/02 15:04:05")
}

// DateTime is the compact minute-precision form used in duplicate results.
func DateTime(epoch int64, loc *time.Location) string {
	if epoch == 0 {
		return Placeholder
	}
	return time.Unix(epoch, 0).In(location(loc)).Format("2006-01-02 15:04")
}

// DateKey is the ISO day key used by the monthly statistics mapping.
func DateKey(year, month, day int) string {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// Escape escapes text that is composed outside html/template, such as
// toast messages and modal bodies built from server-supplied strings.
func Escape(s string) string {
	return html.EscapeString(s)
}

// wrapColumns approximates how many runes fit on one textarea line.
const wrapColumns = 60

// TextareaRows returns the number of rows a textarea needs to show text
// without scrolling, clamped to [minRows, maxRows].
func TextareaRows(text string, minRows, maxRows int) int {
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if n == 0 {
			rows++
			continue
		}
		rows += (n + wrapColumns - 1) / wrapColumns
	}
	if rows < minRows {
		return minRows
	}
	if maxRows > 0 && rows > maxRows {
		return maxRows
	}
	return rows
}

const (
	questionPrefix = "问:"
	answerPrefix   = "答:"
)

// ParseQAContent extracts the question and answer from raw segment content
// whose lines are prefixed with "问:" and "答:". Later lines win.
func ParseQAContent(content string) (question, answer string) {
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, questionPrefix):
			question = strings.TrimSpace(strings.TrimPrefix(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix):
			answer = strings.TrimSpace(strings.TrimPrefix(line, answerPrefix))
		}
	}
	return question, answer
}
