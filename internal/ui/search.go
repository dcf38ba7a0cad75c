package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/querysearch"
	"github.com/gravitrone/cloudconsole/cli/internal/ui/components"
)

const searchValuesTimeout = 3 * time.Second

type schemaLoadedMsg struct {
	groups []api.SearchSchemaGroup
	err    error
}

type searchValuesMsg struct {
	key   string
	input string
	items []querysearch.ValueItem
	err   error
}

// SchemaSource fetches the search schema of a resource type.
type SchemaSource interface {
	SearchSchema(ctx context.Context, resourceType string) ([]api.SearchSchemaGroup, error)
}

type searchKey struct {
	set  string
	item querysearch.KeyItem
}

// searchFilter is one chosen key/value pair, kept with display labels.
type searchFilter struct {
	filter   api.Filter
	keyLabel string
	valLabel string
}

// SearchModel builds a filter query from the schema-derived search props.
type SearchModel struct {
	binding      *querysearch.Binding
	source       SchemaSource
	resourceType string
	preset       []api.SearchSchemaGroup
	vim          bool

	props     querysearch.Props
	keys      []searchKey
	keyList   *components.List
	schemaErr string

	editing       bool
	input         textinput.Model
	values        []querysearch.ValueItem
	valueList     *components.List
	valuesLoading bool
	valuesErr     string

	filters []searchFilter

	width  int
	height int
}

// NewSearchModel builds the search tab. A non-nil preset schema is used
// instead of fetching one from source.
func NewSearchModel(binding *querysearch.Binding, source SchemaSource, resourceType string, preset []api.SearchSchemaGroup, vim bool) SearchModel {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "type to filter values"
	input.CharLimit = 128

	m := SearchModel{
		binding:      binding,
		source:       source,
		resourceType: resourceType,
		preset:       preset,
		vim:          vim,
		keyList:      components.NewList(10),
		valueList:    components.NewList(8),
		input:        input,
	}
	m.syncProps()
	return m
}

func (m SearchModel) Init() tea.Cmd {
	if m.binding == nil {
		return nil
	}
	if m.preset != nil {
		groups := m.preset
		return func() tea.Msg { return schemaLoadedMsg{groups: groups} }
	}
	if m.source == nil || m.resourceType == "" {
		return nil
	}
	source, resourceType := m.source, m.resourceType
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchValuesTimeout)
		defer cancel()
		groups, err := source.SearchSchema(ctx, resourceType)
		return schemaLoadedMsg{groups: groups, err: err}
	}
}

// Query returns the filters chosen so far.
func (m SearchModel) Query() api.Query {
	out := make([]api.Filter, len(m.filters))
	for i, f := range m.filters {
		out[i] = f.filter
	}
	return api.Query{Filter: out}
}

func (m SearchModel) selectedKey() (searchKey, bool) {
	idx := m.keyList.Selected()
	if idx < 0 || idx >= len(m.keys) {
		return searchKey{}, false
	}
	return m.keys[idx], true
}

func (m SearchModel) handlerKind(name string) string {
	if h, ok := m.props.ValueHandlerMap[name]; ok {
		return string(h.Kind())
	}
	return ""
}

func (m SearchModel) Update(msg tea.Msg) (SearchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case schemaLoadedMsg:
		if msg.err != nil {
			m.schemaErr = msg.err.Error()
			err := fmt.Errorf("load search schema: %w", msg.err)
			return m, func() tea.Msg { return errMsg{err} }
		}
		if err := m.binding.SetSchema(msg.groups); err != nil {
			m.schemaErr = err.Error()
			return m, func() tea.Msg { return errMsg{err} }
		}
		m.schemaErr = ""
		m.syncProps()
		return m, nil
	case propsChangedMsg:
		m.syncProps()
		if !m.editing {
			return m, nil
		}
		cmd := m.queryValues()
		return m, cmd
	case searchValuesMsg:
		key, ok := m.selectedKey()
		if !m.editing || !ok || key.item.Name != msg.key || msg.input != m.input.Value() {
			return m, nil
		}
		m.valuesLoading = false
		if msg.err != nil {
			m.valuesErr = msg.err.Error()
			m.values = nil
			m.valueList.SetItems(nil)
			return m, nil
		}
		m.valuesErr = ""
		m.values = msg.items
		labels := make([]string, len(msg.items))
		for i, item := range msg.items {
			labels[i] = item.Key
		}
		m.valueList.SetItems(labels)
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		switch {
		case isUpVim(msg, m.vim):
			m.keyList.Up()
		case isDownVim(msg, m.vim):
			m.keyList.Down()
		case isEnter(msg):
			if _, ok := m.selectedKey(); !ok {
				return m, nil
			}
			m.editing = true
			m.input.SetValue("")
			m.values = nil
			m.valueList.SetItems(nil)
			cmd := tea.Batch(m.input.Focus(), m.queryValues())
			return m, cmd
		case isKey(msg, "backspace"):
			if len(m.filters) > 0 {
				m.filters = m.filters[:len(m.filters)-1]
			}
		case isKey(msg, "x"):
			m.filters = nil
		}
	}
	return m, nil
}

func (m SearchModel) updateEditing(msg tea.KeyMsg) (SearchModel, tea.Cmd) {
	switch {
	case isBack(msg):
		m.editing = false
		m.input.Blur()
		return m, nil
	case isUp(msg):
		m.valueList.Up()
		return m, nil
	case isDown(msg):
		m.valueList.Down()
		return m, nil
	case isEnter(msg):
		key, ok := m.selectedKey()
		if !ok {
			return m, nil
		}
		value := strings.TrimSpace(m.input.Value())
		label := value
		if idx := m.valueList.Selected(); idx < len(m.values) {
			value = m.values[idx].Key
			label = m.values[idx].Label
		}
		if value == "" {
			return m, nil
		}
		op := "="
		if len(key.item.Operators) > 0 {
			op = key.item.Operators[0]
		}
		m.filters = append(m.filters, searchFilter{
			filter:   api.Filter{Key: key.item.Name, Value: value, Operator: op},
			keyLabel: key.item.Label,
			valLabel: label,
		})
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	cmd = tea.Batch(cmd, m.queryValues())
	return m, cmd
}

// queryValues asks the selected key's handler for suggestions.
func (m *SearchModel) queryValues() tea.Cmd {
	key, ok := m.selectedKey()
	if !ok {
		return nil
	}
	handler, ok := m.props.ValueHandlerMap[key.item.Name]
	if !ok {
		return nil
	}
	m.valuesLoading = true
	name, input := key.item.Name, m.input.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchValuesTimeout)
		defer cancel()
		items, err := handler.Values(ctx, input)
		return searchValuesMsg{key: name, input: input, items: items, err: err}
	}
}

// syncProps pulls the binding's current snapshot into the key list.
func (m *SearchModel) syncProps() {
	if m.binding == nil {
		return
	}
	m.props = m.binding.Props()
	keys := make([]searchKey, 0)
	labels := make([]string, 0)
	for _, set := range m.props.KeyItemSets {
		for _, item := range set.Items {
			keys = append(keys, searchKey{set: set.Title, item: item})
			labels = append(labels, item.Name)
		}
	}
	m.keys = keys
	m.keyList.ReplaceItems(labels)
}

func (m SearchModel) View() string {
	var b strings.Builder
	b.WriteString(MutedStyle.Render("Query: "))
	if len(m.filters) == 0 {
		b.WriteString(MutedStyle.Render("(empty)"))
	} else {
		chips := make([]string, len(m.filters))
		for i, f := range m.filters {
			chips[i] = AccentStyle.Render(fmt.Sprintf("%s %s %s",
				components.SanitizeOneLine(f.keyLabel),
				f.filter.Operator,
				components.SanitizeOneLine(f.valLabel)))
		}
		b.WriteString(strings.Join(chips, MutedStyle.Render(" & ")))
	}
	b.WriteString("\n\n")

	switch {
	case m.schemaErr != "":
		b.WriteString(ErrorStyle.Render(components.SanitizeOneLine(m.schemaErr)))
	case m.props.Empty():
		b.WriteString(MutedStyle.Render("Waiting for the search schema and reference data..."))
	default:
		b.WriteString(m.renderKeys())
		if m.editing {
			b.WriteString("\n\n")
			b.WriteString(m.renderValues())
		}
	}

	title := "Search"
	if m.resourceType != "" {
		title = "Search · " + m.resourceType
	}
	return components.Indent(components.TitledBox(title, b.String(), m.width), 1)
}

func (m SearchModel) renderKeys() string {
	contentWidth := components.BoxContentWidth(m.width)
	maxLabelWidth := 28
	if contentWidth > 0 {
		maxLabelWidth = max(contentWidth/2-4, 8)
	}

	var b strings.Builder
	lastSet := ""
	visible := m.keyList.Visible()
	for i := range visible {
		abs := m.keyList.RelToAbs(i)
		key := m.keys[abs]
		if i == 0 || key.set != lastSet {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(MetaKeyStyle.Render(components.SanitizeOneLine(key.set)))
			b.WriteString("\n")
			lastSet = key.set
		}
		label := components.ClampTextWidth(key.item.Label, maxLabelWidth)
		kind := m.handlerKind(key.item.Name)
		badge := HandlerBadgeStyle.Background(handlerBadgeColor(kind)).Render(kind)
		detail := key.item.DataType
		if key.item.Reference != "" {
			detail = string(key.item.Reference)
		}
		line := fmt.Sprintf("%-*s %s %s", maxLabelWidth, label, badge, MutedStyle.Render(detail))
		if m.keyList.IsSelected(abs) {
			b.WriteString(SelectedStyle.Render("  > ") + line)
		} else {
			b.WriteString("    " + line)
		}
		if i < len(visible)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m SearchModel) renderValues() string {
	key, _ := m.selectedKey()
	var b strings.Builder
	b.WriteString(components.InputDialog("Value for "+components.SanitizeOneLine(key.item.Label), m.input.View()))
	b.WriteString("\n")
	switch {
	case m.valuesErr != "":
		b.WriteString(ErrorStyle.Render(components.SanitizeOneLine(m.valuesErr)))
	case m.valuesLoading && len(m.values) == 0:
		b.WriteString(MutedStyle.Render("Loading values..."))
	case len(m.values) == 0:
		b.WriteString(MutedStyle.Render("No suggestions. enter uses the typed value."))
	default:
		visible := m.valueList.Visible()
		for i := range visible {
			abs := m.valueList.RelToAbs(i)
			item := m.values[abs]
			text := components.SanitizeOneLine(item.Label)
			if item.Label != item.Key {
				text += MutedStyle.Render("  " + components.SanitizeOneLine(item.Key))
			}
			if m.valueList.IsSelected(abs) {
				b.WriteString(SelectedStyle.Render("  > ") + text)
			} else {
				b.WriteString("    " + text)
			}
			if i < len(visible)-1 {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
