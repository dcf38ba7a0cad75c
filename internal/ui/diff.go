package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/cloudconsole/cli/internal/diffview"
	"github.com/gravitrone/cloudconsole/cli/internal/ui/components"
)

const defaultDiffPage = 20

// DiffModel shows a Viewer-driven diff with folding and virtual scrolling.
type DiffModel struct {
	viewer  *diffview.Viewer
	vim     bool
	title   string
	snap    diffview.Snapshot
	numbers bool
	// vs is the virtual-scroll config restored when scrolling is toggled on.
	vs     diffview.VirtualScroll
	offset int

	width  int
	height int
}

// NewDiffModel wraps viewer. vs seeds the virtual-scroll settings; nil
// starts with every row rendered.
func NewDiffModel(viewer *diffview.Viewer, vs *diffview.VirtualScroll, vim bool) DiffModel {
	m := DiffModel{viewer: viewer, vim: vim, numbers: true}
	if vs != nil {
		m.vs = *vs
	}
	if m.vs.Height <= 0 {
		m.vs.Height = defaultDiffPage
	}
	if m.vs.LineMinHeight <= 0 {
		m.vs.LineMinHeight = 1
	}
	if viewer != nil {
		m.snap = viewer.Snapshot()
	}
	return m
}

func (m DiffModel) Init() tea.Cmd {
	return nil
}

// SetInput shows a new before/after pair.
func (m *DiffModel) SetInput(title, before, after string) {
	if m.viewer == nil {
		return
	}
	m.title = title
	m.offset = 0
	m.viewer.Scroll(0)
	m.viewer.SetInput(before, after)
	m.snap = m.viewer.Snapshot()
}

// SetSize applies the terminal size; the page height feeds virtual scrolling.
func (m *DiffModel) SetSize(width, height int) {
	m.width, m.height = width, height
	page := max(height-22, 5)
	if page == m.vs.Height {
		return
	}
	m.vs.Height = page
	if m.viewer != nil && m.snap.Options.VirtualScroll != nil {
		vs := m.vs
		m.viewer.SetVirtualScroll(&vs)
		m.snap = m.viewer.Snapshot()
	}
}

func (m DiffModel) page() int {
	if m.vs.Height > 0 {
		return m.vs.Height
	}
	return defaultDiffPage
}

func (m DiffModel) Update(msg tea.Msg) (DiffModel, tea.Cmd) {
	if m.viewer == nil {
		return m, nil
	}
	switch msg := msg.(type) {
	case diffChangedMsg:
		m.snap = m.viewer.Snapshot()
	case refsDiffMsg:
		m.SetInput(msg.title, msg.before, msg.after)
	case tea.KeyMsg:
		switch {
		case isKey(msg, "m"):
			next := diffview.ModeUnified
			if m.snap.Options.Mode == diffview.ModeUnified {
				next = diffview.ModeSplit
			}
			m.viewer.SetMode(next)
		case isKey(msg, "f"):
			m.viewer.SetFolding(!m.snap.Options.Folding)
		case isKey(msg, "v"):
			if m.snap.Options.VirtualScroll != nil {
				m.viewer.SetVirtualScroll(nil)
			} else {
				vs := m.vs
				m.viewer.SetVirtualScroll(&vs)
			}
		case isKey(msg, "n"):
			m.numbers = !m.numbers
		case isDownVim(msg, m.vim):
			m.scroll(1)
		case isUpVim(msg, m.vim):
			m.scroll(-1)
		case isPageDown(msg):
			m.scroll(m.page())
		case isPageUp(msg):
			m.scroll(-m.page())
		case isKey(msg, "g", "home"):
			m.scroll(-1 << 30)
		case isKey(msg, "G", "end"):
			m.scroll(1 << 30)
		}
		m.snap = m.viewer.Snapshot()
	}
	return m, nil
}

func (m *DiffModel) scroll(delta int) {
	if m.snap.Options.VirtualScroll == nil {
		last := max(len(m.snap.List)-m.page(), 0)
		m.offset = min(max(m.offset+delta, 0), last)
		return
	}
	last := max(m.snap.MinHeight-m.page(), 0)
	top := min(max(m.snap.ScrollTop+delta, 0), last)
	m.viewer.Scroll(top)
}

// window narrows the snapshot to the rows on screen.
func (m DiffModel) window() diffview.Snapshot {
	win := m.snap
	page := m.page()
	if vs := m.snap.Options.VirtualScroll; vs != nil {
		lo, hi := m.snap.ScrollTop, m.snap.ScrollTop+page
		list := make([]diffview.Meta, 0, page)
		for _, meta := range m.snap.List {
			if meta.Top >= lo && meta.Top < hi {
				list = append(list, meta)
			}
		}
		win.List = list
		return win
	}
	start := min(m.offset, len(m.snap.List))
	end := min(start+page, len(m.snap.List))
	win.List = m.snap.List[start:end]
	return win
}

func (m DiffModel) View() string {
	var b strings.Builder
	if len(m.snap.Rows) == 0 {
		b.WriteString(MutedStyle.Render("No diff yet. Press r on a reference kind to refresh it and compare."))
		return components.Indent(components.TitledBox("Diff", b.String(), m.width), 1)
	}

	opts := m.snap.Options
	folding := "off"
	if opts.Folding {
		folding = "on"
	}
	scroll := "off"
	if opts.VirtualScroll != nil {
		scroll = fmt.Sprintf("%d/%d", m.snap.ScrollTop, m.snap.MinHeight)
	}
	changed := 0
	for _, row := range m.snap.Rows {
		if row.Type() != diffview.LineEqual {
			changed++
		}
	}
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s · folding %s · scroll %s · %d rows, %d changed",
		opts.Mode, folding, scroll, len(m.snap.Rows), changed)))
	b.WriteString("\n")
	contentWidth := components.BoxContentWidth(m.width)
	b.WriteString(Divider(contentWidth))
	b.WriteString("\n")
	b.WriteString(components.DiffLines(m.window(), components.DiffOptions{Width: contentWidth, Numbers: m.numbers}))

	title := "Diff"
	if m.title != "" {
		title = "Diff · " + m.title
	}
	return components.Indent(components.TitledBox(title, b.String(), m.width), 1)
}
