// Package diffview computes the rows of a two-document diff and the layout
// bookkeeping (folding, heights, visibility) a virtualized viewer needs.
package diffview

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Mode selects how changed lines are laid out.
type Mode string

const (
	// ModeUnified puts one line per row: deletions, then insertions.
	ModeUnified Mode = "unified"
	// ModeSplit puts the previous and current line side by side.
	ModeSplit Mode = "split"
)

// ParseMode accepts "unified" or "split"; empty means split.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSplit:
		return ModeSplit, nil
	case ModeUnified:
		return ModeUnified, nil
	}
	return "", fmt.Errorf("unknown diff mode %q", s)
}

// LineType classifies one side of a row.
type LineType string

const (
	LineEqual  LineType = "equal"
	LineInsert LineType = "insert"
	LineDelete LineType = "delete"
	// LineEmpty pads the side of a split row that has no counterpart.
	LineEmpty LineType = "empty"
)

// Line is one side of a rendered row. Number is 1-based, 0 for padding.
type Line struct {
	Type   LineType
	Text   string
	Number int
}

// Row is one visual line: one Line in unified mode, two in split mode.
type Row []Line

// Type returns the type of the row's first line.
func (r Row) Type() LineType {
	if len(r) == 0 {
		return LineEmpty
	}
	return r[0].Type
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ComputeLines diffs prev against current line by line. Empty inputs yield
// no rows and identical inputs yield only equal rows.
func ComputeLines(mode Mode, prev, current string) []Row {
	a, b := splitLines(prev), splitLines(current)
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)
	var rows []Row
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				left := Line{Type: LineEqual, Text: a[op.I1+k], Number: op.I1 + k + 1}
				if mode == ModeUnified {
					rows = append(rows, Row{left})
					continue
				}
				right := Line{Type: LineEqual, Text: b[op.J1+k], Number: op.J1 + k + 1}
				rows = append(rows, Row{left, right})
			}
		case 'd', 'i', 'r':
			rows = append(rows, changedRows(mode, a[op.I1:op.I2], op.I1, b[op.J1:op.J2], op.J1)...)
		}
	}
	return rows
}

func changedRows(mode Mode, removed []string, removedAt int, added []string, addedAt int) []Row {
	if mode == ModeUnified {
		rows := make([]Row, 0, len(removed)+len(added))
		for k, text := range removed {
			rows = append(rows, Row{{Type: LineDelete, Text: text, Number: removedAt + k + 1}})
		}
		for k, text := range added {
			rows = append(rows, Row{{Type: LineInsert, Text: text, Number: addedAt + k + 1}})
		}
		return rows
	}

	n := max(len(removed), len(added))
	rows := make([]Row, 0, n)
	for k := 0; k < n; k++ {
		left := Line{Type: LineEmpty}
		right := Line{Type: LineEmpty}
		if k < len(removed) {
			left = Line{Type: LineDelete, Text: removed[k], Number: removedAt + k + 1}
		}
		if k < len(added) {
			right = Line{Type: LineInsert, Text: added[k], Number: addedAt + k + 1}
		}
		rows = append(rows, Row{left, right})
	}
	return rows
}
