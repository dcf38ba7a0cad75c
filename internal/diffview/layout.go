package diffview

import "time"

// VirtualScroll configures windowed rendering. Heights are in the viewer's
// own units (terminal rows here).
type VirtualScroll struct {
	// Height is the viewport height.
	Height int
	// LineMinHeight is the height assumed for a line until measured.
	LineMinHeight int
	// Delay throttles scroll handling.
	Delay time.Duration
}

// Options control one Layout.
type Options struct {
	Mode    Mode
	Folding bool
	// VirtualScroll is nil when every line is rendered.
	VirtualScroll *VirtualScroll
}

// Meta is the layout bookkeeping for one row.
type Meta struct {
	Index    int
	Foldable bool
	Visible  bool
	Top      int
	Height   int
}

// Layout holds the rows of the current diff and their Meta.
// It is not safe for concurrent use; Viewer adds locking.
type Layout struct {
	opts      Options
	prev      string
	current   string
	rows      []Row
	meta      []Meta
	scrollTop int
}

// NewLayout returns an empty Layout.
func NewLayout(opts Options) *Layout {
	if opts.Mode == "" {
		opts.Mode = ModeSplit
	}
	return &Layout{opts: opts}
}

// Options returns the active options.
func (l *Layout) Options() Options {
	return l.opts
}

// SetOptions swaps options and re-renders the last input.
func (l *Layout) SetOptions(opts Options) {
	if opts.Mode == "" {
		opts.Mode = ModeSplit
	}
	l.opts = opts
	l.Render(l.prev, l.current)
}

// Render recomputes rows for prev/current. Existing Meta is reused by index
// so a small edit does not reset visibility or measured heights; entries
// past the new row count are dropped.
func (l *Layout) Render(prev, current string) {
	l.prev, l.current = prev, current
	l.rows = ComputeLines(l.opts.Mode, prev, current)
	if len(l.meta) > len(l.rows) {
		l.meta = l.meta[:len(l.rows)]
	}

	vs := l.opts.VirtualScroll
	for index, row := range l.rows {
		foldable := l.opts.Folding &&
			row.Type() == LineEqual &&
			index > 0 && l.rows[index-1].Type() == LineEqual

		m := Meta{Index: index, Foldable: foldable, Visible: true}
		if vs != nil {
			m.Visible = false
			m.Height = vs.LineMinHeight
			if index < len(l.meta) {
				old := l.meta[index]
				m.Visible = old.Visible
				m.Top = old.Top
				if old.Height > 0 {
					m.Height = old.Height
				}
			}
		}

		if index < len(l.meta) {
			l.meta[index] = m
		} else {
			l.meta = append(l.meta, m)
		}
	}
	l.relayout()
}

// Scroll moves the viewport and recomputes visibility. Without virtual
// scrolling it only records the offset.
func (l *Layout) Scroll(scrollTop int) {
	l.scrollTop = max(scrollTop, 0)
	l.relayout()
}

// ScrollTop returns the last scroll offset.
func (l *Layout) ScrollTop() int {
	return l.scrollTop
}

// SetHeight records the measured height of row index.
func (l *Layout) SetHeight(index, height int) {
	if l.opts.VirtualScroll == nil || index < 0 || index >= len(l.meta) || height <= 0 {
		return
	}
	l.meta[index].Height = height
	l.relayout()
}

// relayout assigns tops as a running sum of heights, skipping foldable
// rows, and marks rows within [scrollTop-1.5h, scrollTop+2.5h] visible.
func (l *Layout) relayout() {
	vs := l.opts.VirtualScroll
	if vs == nil {
		return
	}
	h := float64(vs.Height)
	lo := float64(l.scrollTop) - h*1.5
	hi := float64(l.scrollTop) + h + h*1.5

	acc := 0
	for i := range l.meta {
		m := &l.meta[i]
		m.Top = acc
		m.Visible = float64(acc) >= lo && float64(acc) <= hi
		if !m.Foldable {
			acc += m.Height
		}
	}
}

// MinHeight is the total height of the unfolded rows, or 0 without
// virtual scrolling.
func (l *Layout) MinHeight() int {
	if l.opts.VirtualScroll == nil {
		return 0
	}
	total := 0
	for _, m := range l.meta {
		if !m.Foldable {
			total += m.Height
		}
	}
	return total
}

// Rows returns the rendered rows.
func (l *Layout) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Meta returns a copy of the per-row bookkeeping.
func (l *Layout) Meta() []Meta {
	out := make([]Meta, len(l.meta))
	copy(out, l.meta)
	return out
}

// List returns the rows to draw: visible ones, minus foldable ones when
// folding is on.
func (l *Layout) List() []Meta {
	out := make([]Meta, 0, len(l.meta))
	for _, m := range l.meta {
		if !m.Visible {
			continue
		}
		if l.opts.Folding && m.Foldable {
			continue
		}
		out = append(out, m)
	}
	return out
}
