package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// column widths of the printed tables
const (
	idWidth     = 24
	titleWidth  = 30
	authorWidth = 20
	isbnWidth   = 15
	nameWidth   = 20
	dateWidth   = 10
	statusWidth = 10
)

type table struct {
	w      io.Writer
	format string
	widths []int
	width  int
}

func newTable(w io.Writer, widths ...int) *table {
	parts := make([]string, len(widths))
	total := 0
	for i, n := range widths {
		parts[i] = fmt.Sprintf("%%-%ds", n)
		total += n
	}
	return &table{
		w:      w,
		format: strings.Join(parts, " ") + "\n",
		widths: widths,
		width:  total + len(widths) - 1,
	}
}

func (t *table) header(cols ...string) {
	t.row(cols...)
	fmt.Fprintln(t.w, strings.Repeat("-", t.width))
}

// row truncates every cell to its column width.
func (t *table) row(cols ...string) {
	args := make([]any, len(t.widths))
	for i := range t.widths {
		cell := ""
		if i < len(cols) {
			cell = truncateString(cols[i], t.widths[i])
		}
		args[i] = cell
	}
	fmt.Fprintf(t.w, t.format, args...)
}

func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
