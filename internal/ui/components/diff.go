package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/cloudconsole/cli/internal/diffview"
)

var (
	diffInsertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3f866b"))
	diffDeleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75"))
	diffEqualStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d7d9da"))
	diffGutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#273540"))
	diffFoldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ba0bf")).Italic(true)
)

const defaultDiffWidth = 80

// DiffOptions controls DiffLines.
type DiffOptions struct {
	// Width is the total line width; zero means 80.
	Width int
	// Numbers adds a line-number gutter to every side.
	Numbers bool
}

// DiffLines renders the rows named by snap.List. With folding on, each run
// of folded rows after a drawn row collapses into one marker line.
func DiffLines(snap diffview.Snapshot, opts DiffOptions) string {
	width := opts.Width
	if width <= 0 {
		width = defaultDiffWidth
	}

	lines := make([]string, 0, len(snap.List))
	for _, m := range snap.List {
		if m.Index < 0 || m.Index >= len(snap.Rows) {
			continue
		}
		lines = append(lines, renderDiffRow(snap.Rows[m.Index], width, opts.Numbers))
		if !snap.Options.Folding {
			continue
		}
		folded := 0
		for j := m.Index + 1; j < len(snap.Meta) && snap.Meta[j].Foldable; j++ {
			folded++
		}
		if folded > 0 {
			lines = append(lines, FoldMarker(folded))
		}
	}
	return strings.Join(lines, "\n")
}

// FoldMarker is the placeholder drawn for n folded rows.
func FoldMarker(n int) string {
	unit := "lines"
	if n == 1 {
		unit = "line"
	}
	return diffFoldStyle.Render(fmt.Sprintf("  ⋯ %d unchanged %s", n, unit))
}

func renderDiffRow(row diffview.Row, width int, numbers bool) string {
	if len(row) == 1 {
		return renderDiffSide(row[0], width, numbers)
	}
	sep := diffGutterStyle.Render(" │ ")
	side := (width - lipgloss.Width(sep)) / 2
	if side < 1 {
		side = 1
	}
	left := padRight(renderDiffSide(row[0], side, numbers), side)
	right := ""
	if len(row) > 1 {
		right = renderDiffSide(row[1], side, numbers)
	}
	return left + sep + right
}

func renderDiffSide(line diffview.Line, width int, numbers bool) string {
	gutter := ""
	if numbers {
		if line.Number > 0 {
			gutter = diffGutterStyle.Render(fmt.Sprintf("%4d ", line.Number))
		} else {
			gutter = diffGutterStyle.Render("     ")
		}
	}
	avail := width - lipgloss.Width(gutter) - 2
	if avail < 0 {
		avail = 0
	}
	text := strings.ReplaceAll(SanitizeText(line.Text), "\t", "    ")
	text = truncateRunes(text, avail)

	switch line.Type {
	case diffview.LineInsert:
		return gutter + diffInsertStyle.Render("+ "+text)
	case diffview.LineDelete:
		return gutter + diffDeleteStyle.Render("- "+text)
	case diffview.LineEmpty:
		return ""
	default:
		return gutter + diffEqualStyle.Render("  "+text)
	}
}
