// Package table lays out label/value columns in fixed-width panel cells.
package table

import "strings"

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const gap = "  "

// Format returns the rows padded according to the widest entry in each column.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := columnWidths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString(gap)
			}
			pad(&b, cell, widths[c], alignment(alignments, c))
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return out
}

// Fit lays rows out in exactly width cells. The last column absorbs the
// slack so right-aligned values line up with the panel edge; cells that do
// not fit are cut from the right.
func Fit(rows [][]string, alignments []Alignment, width int) []string {
	if len(rows) == 0 || width <= 0 {
		return nil
	}
	widths := columnWidths(rows)
	last := len(widths) - 1
	used := 0
	for c := 0; c < last; c++ {
		used += widths[c] + len(gap)
	}
	if slack := width - used; slack > widths[last] {
		widths[last] = slack
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString(gap)
			}
			pad(&b, cell, widths[c], alignment(alignments, c))
		}
		out[i] = clip(b.String(), width)
	}
	return out
}

func columnWidths(rows [][]string) []int {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for c, cell := range row {
			if w := cellWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

func alignment(alignments []Alignment, c int) Alignment {
	if c < len(alignments) {
		return alignments[c]
	}
	return AlignLeft
}

func pad(b *strings.Builder, cell string, width int, align Alignment) {
	spaces := width - cellWidth(cell)
	if spaces < 0 {
		spaces = 0
	}
	if align == AlignRight {
		b.WriteString(strings.Repeat(" ", spaces))
		b.WriteString(cell)
		return
	}
	b.WriteString(cell)
	b.WriteString(strings.Repeat(" ", spaces))
}

func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}

func cellWidth(text string) int {
	return len([]rune(text))
}
