package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/gravitrone/cloudconsole/cli/internal/reference"
	"github.com/gravitrone/cloudconsole/cli/internal/ui/components"
)

type refsLoadedMsg struct {
	kind   reference.Kind
	forced bool
	before string
	after  string
	err    error
}

type refsAllLoadedMsg struct{ err error }

// refsDiffMsg hands a before/after pair to the Diff tab.
type refsDiffMsg struct {
	title  string
	before string
	after  string
}

const refsKindColumnWidth = 26

// ReferencesModel browses the reference caches: kinds on the left, the
// selected kind's items on the right.
type ReferencesModel struct {
	store *reference.Store
	vim   bool
	now   func() time.Time

	kinds      []reference.Kind
	kindList   *components.List
	items      []reference.Item
	itemList   *components.List
	focusItems bool

	filter    textinput.Model
	filtering bool

	loading map[reference.Kind]bool
	spinner spinner.Model

	width  int
	height int
}

// NewReferencesModel builds the references tab over store.
func NewReferencesModel(store *reference.Store, vim bool) ReferencesModel {
	filter := textinput.New()
	filter.Prompt = ""
	filter.Placeholder = "filter by key or label"
	filter.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = SpinnerStyle

	m := ReferencesModel{
		store:    store,
		vim:      vim,
		now:      time.Now,
		kindList: components.NewList(13),
		itemList: components.NewList(12),
		filter:   filter,
		loading:  map[reference.Kind]bool{},
		spinner:  sp,
	}
	if store != nil {
		m.kinds = store.Kinds()
	}
	m.refreshKinds()
	m.refreshItems()
	return m
}

func (m ReferencesModel) Init() tea.Cmd {
	return m.load(m.selectedKind(), false, true)
}

func (m ReferencesModel) selectedKind() reference.Kind {
	idx := m.kindList.Selected()
	if idx < 0 || idx >= len(m.kinds) {
		return ""
	}
	return m.kinds[idx]
}

func (m ReferencesModel) cache(kind reference.Kind) *reference.Cache {
	if m.store == nil || kind == "" {
		return nil
	}
	return m.store.Cache(kind)
}

func (m ReferencesModel) anyLoading() bool {
	for _, v := range m.loading {
		if v {
			return true
		}
	}
	return false
}

// load starts a load of kind. forced bypasses the TTL and produces a
// before/after diff of the cache contents.
func (m *ReferencesModel) load(kind reference.Kind, forced, lazy bool) tea.Cmd {
	c := m.cache(kind)
	if c == nil {
		return nil
	}
	wasLoading := m.anyLoading()
	m.loading[kind] = true
	run := func() tea.Msg {
		ctx := context.Background()
		if !forced {
			c.Load(ctx, lazy)
			return refsLoadedMsg{kind: kind}
		}
		before := itemsDocument(c.Items())
		err := c.Refresh(ctx)
		return refsLoadedMsg{
			kind:   kind,
			forced: true,
			before: before,
			after:  itemsDocument(c.Items()),
			err:    err,
		}
	}
	if wasLoading {
		return run
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m ReferencesModel) loadAll() tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return refsAllLoadedMsg{err: store.LoadAll(context.Background(), true)}
	}
}

func (m ReferencesModel) Update(msg tea.Msg) (ReferencesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case refsLoadedMsg:
		m.loading[msg.kind] = false
		m.refreshKinds()
		if msg.kind == m.selectedKind() {
			m.refreshItems()
		}
		if msg.err != nil {
			if errors.Is(msg.err, context.Canceled) {
				return m, nil
			}
			err := fmt.Errorf("refresh %s: %w", msg.kind, msg.err)
			return m, func() tea.Msg { return errMsg{err} }
		}
		if msg.forced && msg.before != msg.after {
			diff := refsDiffMsg{title: string(msg.kind), before: msg.before, after: msg.after}
			return m, func() tea.Msg { return diff }
		}
		return m, nil
	case refsAllLoadedMsg:
		m.refreshKinds()
		m.refreshItems()
		return m, nil
	case storeChangedMsg:
		m.refreshKinds()
		if msg.kind == "" || reference.Kind(msg.kind) == m.selectedKind() {
			m.refreshItems()
		}
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch {
		case isUpVim(msg, m.vim):
			if m.focusItems {
				m.itemList.Up()
				return m, nil
			}
			return m.moveKind(-1)
		case isDownVim(msg, m.vim):
			if m.focusItems {
				m.itemList.Down()
				return m, nil
			}
			return m.moveKind(1)
		case isPageDown(msg):
			m.itemList.PageDown()
		case isPageUp(msg):
			m.itemList.PageUp()
		case isEnter(msg), isKey(msg, "right", "l"):
			if len(m.items) > 0 {
				m.focusItems = true
			}
		case isBack(msg), isKey(msg, "left", "h"):
			if m.filter.Value() != "" && !m.focusItems {
				m.filter.SetValue("")
				m.refreshItems()
				return m, nil
			}
			m.focusItems = false
		case isKey(msg, "f"):
			m.filtering = true
			cmd := m.filter.Focus()
			return m, cmd
		case isKey(msg, "r"):
			cmd := m.load(m.selectedKind(), true, false)
			return m, cmd
		case isKey(msg, "a"):
			return m, m.loadAll()
		case isKey(msg, "R"):
			if m.store != nil {
				m.store.Reset()
			}
			m.refreshKinds()
			m.refreshItems()
			cmd := m.load(m.selectedKind(), false, true)
			return m, cmd
		}
	}
	return m, nil
}

func (m ReferencesModel) updateFilter(msg tea.KeyMsg) (ReferencesModel, tea.Cmd) {
	switch {
	case isEnter(msg):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case isBack(msg):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refreshItems()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refreshItems()
	return m, cmd
}

func (m ReferencesModel) moveKind(delta int) (ReferencesModel, tea.Cmd) {
	before := m.kindList.Selected()
	m.kindList.Select(before + delta)
	if m.kindList.Selected() == before {
		return m, nil
	}
	m.itemList.SetItems(nil)
	m.refreshItems()
	cmd := m.load(m.selectedKind(), false, true)
	return m, cmd
}

// refreshKinds rebuilds the kind column labels (name, count, load state).
func (m *ReferencesModel) refreshKinds() {
	labels := make([]string, len(m.kinds))
	for i, kind := range m.kinds {
		count := 0
		if c := m.cache(kind); c != nil {
			count = c.Len()
		}
		labels[i] = fmt.Sprintf("%s (%d)", kind, count)
	}
	m.kindList.ReplaceItems(labels)
}

// refreshItems re-reads the selected cache and applies the filter.
func (m *ReferencesModel) refreshItems() {
	c := m.cache(m.selectedKind())
	if c == nil {
		m.items = nil
		m.itemList.ReplaceItems(nil)
		return
	}
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	all := c.Items().Sorted()
	items := make([]reference.Item, 0, len(all))
	for _, item := range all {
		if query == "" ||
			strings.Contains(strings.ToLower(item.Key), query) ||
			strings.Contains(strings.ToLower(item.Label), query) {
			items = append(items, item)
		}
	}
	m.items = items
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key
	}
	m.itemList.ReplaceItems(keys)
	if len(items) == 0 {
		m.focusItems = false
	}
}

func (m ReferencesModel) View() string {
	kind := m.selectedKind()
	contentWidth := components.BoxContentWidth(m.width)
	if contentWidth <= 0 {
		contentWidth = 74
	}

	var kindsCol strings.Builder
	for i, label := range m.kindList.Visible() {
		abs := m.kindList.RelToAbs(i)
		text := components.ClampTextWidth(label, refsKindColumnWidth-4)
		if m.loading[m.kinds[abs]] {
			text += " " + m.spinner.View()
		}
		switch {
		case m.kindList.IsSelected(abs) && !m.focusItems:
			kindsCol.WriteString(SelectedStyle.Render("> " + text))
		case m.kindList.IsSelected(abs):
			kindsCol.WriteString(AccentStyle.Render("> " + text))
		default:
			kindsCol.WriteString(NormalStyle.Render("  " + text))
		}
		if i < len(m.kindList.Visible())-1 {
			kindsCol.WriteString("\n")
		}
	}

	tableWidth := contentWidth - refsKindColumnWidth - 2
	var right strings.Builder
	right.WriteString(m.renderHeader(kind))
	right.WriteString("\n\n")
	if m.filtering || m.filter.Value() != "" {
		right.WriteString(MutedStyle.Render("filter: ") + m.filter.View())
		right.WriteString("\n\n")
	}
	if len(m.items) == 0 {
		if m.loading[kind] {
			right.WriteString(MutedStyle.Render("Loading..."))
		} else {
			right.WriteString(MutedStyle.Render("No items."))
		}
	} else {
		cols := components.Columns(tableWidth, []string{"Key", "Label"}, 2, 3)
		rows := make([][]string, 0, m.itemList.PageSize)
		for i := range m.itemList.Visible() {
			item := m.items[m.itemList.RelToAbs(i)]
			rows = append(rows, []string{item.Key, item.Label})
		}
		active := -1
		if m.focusItems {
			active = m.itemList.Selected() - m.itemList.Offset
		}
		right.WriteString(components.TableGridWithActiveRow(cols, rows, tableWidth, active))
		if m.focusItems {
			if idx := m.itemList.Selected(); idx >= 0 && idx < len(m.items) {
				item := m.items[idx]
				right.WriteString("\n")
				right.WriteString(components.InfoRow("key", item.Key))
				if item.Name != "" && item.Name != item.Label {
					right.WriteString("  " + components.InfoRow("name", item.Name))
				}
			}
		}
		if m.itemList.Len() > m.itemList.PageSize {
			right.WriteString("\n")
			right.WriteString(MutedStyle.Render(fmt.Sprintf("  %d-%d of %d",
				m.itemList.Offset+1,
				min(m.itemList.Offset+m.itemList.PageSize, m.itemList.Len()),
				m.itemList.Len())))
		}
	}

	left := lipgloss.NewStyle().Width(refsKindColumnWidth).Render(kindsCol.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right.String())
	return components.Indent(components.TitledBox("References", body, m.width), 1)
}

func (m ReferencesModel) renderHeader(kind reference.Kind) string {
	c := m.cache(kind)
	if c == nil {
		return MutedStyle.Render("No reference kinds configured.")
	}
	loaded := WarningStyle.Render("never loaded")
	if at := c.LastLoadedAt(); !at.IsZero() {
		loaded = SuccessStyle.Render("loaded " + humanizeSince(max(m.now().Sub(at), 0)) + " ago")
	}
	desc := c.Descriptor()
	return HeaderStyle.UnsetPaddingBottom().Render(string(kind)) +
		MutedStyle.Render(fmt.Sprintf("  %s/%s · %d items · ", desc.Service, desc.Resource, c.Len())) + loaded
}

// itemsDocument renders items as a stable YAML list for diffing.
func itemsDocument(items reference.Map) string {
	if len(items) == 0 {
		return ""
	}
	out, err := yaml.Marshal(items.Sorted())
	if err != nil {
		return ""
	}
	return string(out)
}

func humanizeSince(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}
