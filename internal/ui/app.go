package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/config"
	"github.com/gravitrone/cloudconsole/cli/internal/diffview"
	"github.com/gravitrone/cloudconsole/cli/internal/log"
	"github.com/gravitrone/cloudconsole/cli/internal/querysearch"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
	"github.com/gravitrone/cloudconsole/cli/internal/ui/components"
)

// --- Tab Constants ---

const (
	tabReferences = 0
	tabSearch     = 1
	tabDiff       = 2
	tabCount      = 3
)

var tabNames = []string{"References", "Search", "Diff"}

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}
type reloginDoneMsg struct {
	apiKey string
	err    error
}
type startupCheckedMsg struct {
	apiErr string
}

type startupSummary struct {
	API        string
	Auth       string
	References string
	Done       bool
}

type appToast struct {
	level string
	text  string
}

// Deps are the long-lived services the TUI drives. Any of them may be nil
// in tests; the matching tab then renders an empty state.
type Deps struct {
	Client   *api.Client
	Config   *config.Config
	Store    *reference.Store
	Binding  *querysearch.Binding
	Viewer   *diffview.Viewer
	Reporter *log.Reporter
	Logger   *zap.Logger
	// Schema, when set, replaces fetching the search schema from the API.
	Schema []api.SearchSchemaGroup
}

// --- App Model ---

// App is the root TUI model that routes between tabs.
type App struct {
	client   *api.Client
	config   *config.Config
	store    *reference.Store
	reporter *log.Reporter
	logger   *zap.Logger
	notify   *notifier

	tab               int
	width             int
	height            int
	err               string
	showRecoveryHints bool
	helpOpen          bool
	quitConfirm       bool

	startupChecking bool
	startup         startupSummary
	toast           *appToast

	refs   ReferencesModel
	search SearchModel
	diff   DiffModel
}

// NewApp creates the root application model and subscribes it to the
// store, the search binding and the diff viewer.
func NewApp(deps Deps) App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	vim := deps.Config != nil && deps.Config.VimKeys
	n := newNotifier()

	if deps.Store != nil {
		deps.Store.Subscribe(func(e reference.Event) { n.send(storeChangedMsg{kind: string(e.Kind)}) })
	}
	if deps.Binding != nil {
		deps.Binding.Subscribe(func(querysearch.Props) { n.send(propsChangedMsg{}) })
	}
	if deps.Viewer != nil {
		deps.Viewer.Subscribe(func(diffview.Snapshot) { n.send(diffChangedMsg{}) })
	}

	resourceType := ""
	var vs *diffview.VirtualScroll
	if deps.Config != nil {
		resourceType = deps.Config.Search.ResourceType
		if c := deps.Config.Diff.VirtualScroll; c != nil {
			vs = &diffview.VirtualScroll{Height: c.Height, LineMinHeight: c.LineMinHeight, Delay: c.Delay.Std()}
		}
	}
	var schemas SchemaSource
	if deps.Client != nil {
		schemas = deps.Client
	}

	return App{
		client:          deps.Client,
		config:          deps.Config,
		store:           deps.Store,
		reporter:        deps.Reporter,
		logger:          logger,
		notify:          n,
		tab:             tabReferences,
		startupChecking: deps.Client != nil,
		startup: startupSummary{
			API:        "checking",
			Auth:       classifyStartupAuth(deps.Config),
			References: "loading",
		},
		refs:   NewReferencesModel(deps.Store, vim),
		search: NewSearchModel(deps.Binding, schemas, resourceType, deps.Schema, vim),
		diff:   NewDiffModel(deps.Viewer, vs, vim),
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.refs.Init(), a.refs.loadAll(), a.search.Init(), a.notify.wait()}
	if a.startupChecking {
		cmds = append(cmds, a.runStartupCheckCmd())
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.refs.width, a.refs.height = msg.Width, msg.Height
		a.refs.itemList.SetPageSize(max(msg.Height-24, 5))
		a.search.width, a.search.height = msg.Width, msg.Height
		a.diff.SetSize(msg.Width, msg.Height)
		return a, nil

	case errMsg:
		a.err = msg.err.Error()
		a.showRecoveryHints = shouldShowRecoveryHints(msg.err)
		a.logger.Warn("ui error", zap.Error(msg.err))
		return a, nil
	case clearToastMsg:
		a.toast = nil
		return a, nil
	case reloginDoneMsg:
		return a.applyRelogin(msg)
	case startupCheckedMsg:
		a.startupChecking = false
		a.startup.Done = true
		a.startup.API = classifyStartupAPI(msg.apiErr)
		level, text := startupToastCopy(a.startup)
		return a, a.setToast(level, text)

	case storeChangedMsg:
		var cmd tea.Cmd
		a.refs, cmd = a.refs.Update(msg)
		return a, tea.Batch(cmd, a.notify.wait())
	case propsChangedMsg:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, tea.Batch(cmd, a.notify.wait())
	case diffChangedMsg:
		var cmd tea.Cmd
		a.diff, cmd = a.diff.Update(msg)
		return a, tea.Batch(cmd, a.notify.wait())
	case refsAllLoadedMsg:
		a.startup.References = "ok"
		if msg.err != nil {
			a.startup.References = "failed"
		} else if a.reporter != nil && a.reporter.Count() > 0 {
			a.startup.References = "partial"
		}
		var cmd tea.Cmd
		a.refs, cmd = a.refs.Update(msg)
		return a, cmd
	case refsLoadedMsg, spinner.TickMsg:
		var cmd tea.Cmd
		a.refs, cmd = a.refs.Update(msg)
		return a, cmd
	case refsDiffMsg:
		a.diff, _ = a.diff.Update(msg)
		return a, a.setToast("info", fmt.Sprintf("%s changed. Press 3 to see the diff.", msg.title))
	case schemaLoadedMsg, searchValuesMsg:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if isKey(msg, "ctrl+c") {
			return a, tea.Quit
		}
		if a.capturingInput() {
			break
		}
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if a.helpOpen {
			if isBack(msg) || isKey(msg, "?") {
				a.helpOpen = false
			}
			return a, nil
		}
		if a.showRecoveryHints && isKey(msg, "L") {
			return a, a.reloginCmd()
		}
		if a.err != "" {
			a.err = ""
			a.showRecoveryHints = false
		}

		// Global keys
		if isKey(msg, "?") {
			a.helpOpen = true
			return a, nil
		}
		if isQuit(msg) {
			if a.hasUnsaved() {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		}
		for i := 0; i < tabCount; i++ {
			if isTab(msg, i+1) {
				return a.switchTab(i)
			}
		}
		if isKey(msg, "tab") {
			return a.switchTab((a.tab + 1) % tabCount)
		}
		if isKey(msg, "shift+tab") {
			return a.switchTab((a.tab - 1 + tabCount) % tabCount)
		}
	}

	if key, ok := msg.(tea.KeyMsg); ok && a.tab == tabReferences && isKey(key, "R") && a.reporter != nil {
		a.reporter.Clear()
	}

	// Delegate to active tab
	var cmd tea.Cmd
	switch a.tab {
	case tabReferences:
		a.refs, cmd = a.refs.Update(msg)
	case tabSearch:
		a.search, cmd = a.search.Update(msg)
	case tabDiff:
		a.diff, cmd = a.diff.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	banner := RenderBanner()
	if a.height > 0 && a.height < 40 {
		banner = compactBanner()
	}
	banner = centerBlockUniform(banner, a.width)
	tabs := centerBlockUniform(a.renderTabs(), a.width)
	startupPanel := ""
	if a.startupChecking {
		startupPanel = "\n\n" + centerBlock(a.renderStartupPanel(), a.width)
	}

	var content string
	switch {
	case a.quitConfirm:
		content = a.renderQuitConfirm()
	case a.helpOpen:
		content = a.renderHelp()
	case a.tab == tabReferences:
		content = a.refs.View()
	case a.tab == tabSearch:
		content = a.search.View()
	case a.tab == tabDiff:
		content = a.diff.View()
	}
	content = centerBlockUniform(content, a.width)

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		message := a.err
		if a.showRecoveryHints {
			message += "\n\nRecovery: [L] re-login"
		}
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", message, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s\n\n\n%s%s", banner, tabs, startupPanel, content, hints, feedback)
}

func (a App) switchTab(newTab int) (App, tea.Cmd) {
	if a.tab == newTab {
		return a, nil
	}
	a.logger.Debug("switch tab", zap.String("tab", tabNames[newTab]))
	a.tab = newTab
	if newTab == tabReferences {
		cmd := a.refs.load(a.refs.selectedKind(), false, true)
		return a, cmd
	}
	return a, nil
}

// capturingInput reports whether the active tab owns the keyboard.
func (a App) capturingInput() bool {
	switch a.tab {
	case tabReferences:
		return a.refs.filtering
	case tabSearch:
		return a.search.editing
	}
	return false
}

func (a App) hasUnsaved() bool {
	return len(a.search.filters) > 0
}

func (a App) renderTabs() string {
	segments := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == a.tab {
			segments = append(segments, TabActiveStyle.Render(label))
		} else {
			segments = append(segments, TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (a App) statusHints() []string {
	if a.quitConfirm {
		return []string{
			components.Hint("y", "Confirm"),
			components.Hint("n", "Cancel"),
		}
	}
	if a.helpOpen {
		return []string{
			components.Hint("esc", "Back"),
		}
	}
	hints := a.statusHintsForTab()
	if a.reporter != nil && a.reporter.Count() > 0 {
		value := fmt.Sprintf("%d", a.reporter.Count())
		if err := a.reporter.Last(); err != nil {
			value += " · " + components.ClampTextWidth(err.Error(), 40)
		}
		hints = append(hints, components.Badge("load errors", value))
	}
	return hints
}

func (a App) statusHintsForTab() []string {
	base := []string{
		components.Hint("1-3", "Tabs"),
		components.Hint("?", "Help"),
		components.Hint("q", "Quit"),
	}

	switch a.tab {
	case tabReferences:
		if a.refs.filtering {
			return []string{
				components.Hint("enter", "Apply"),
				components.Hint("esc", "Clear"),
			}
		}
		return append(base,
			components.Hint("↑/↓", "Select"),
			components.Hint("enter", "Items"),
			components.Hint("f", "Filter"),
			components.Hint("r", "Refresh"),
			components.Hint("a", "Load All"),
			components.Hint("R", "Reset"),
		)
	case tabSearch:
		if a.search.editing {
			return []string{
				components.Hint("↑/↓", "Values"),
				components.Hint("enter", "Add"),
				components.Hint("esc", "Back"),
			}
		}
		return append(base,
			components.Hint("↑/↓", "Keys"),
			components.Hint("enter", "Value"),
			components.Hint("backspace", "Undo"),
			components.Hint("x", "Clear"),
		)
	case tabDiff:
		return append(base,
			components.Hint("↑/↓", "Scroll"),
			components.Hint("m", "Mode"),
			components.Hint("f", "Fold"),
			components.Hint("v", "Virtual"),
			components.Hint("n", "Numbers"),
		)
	}
	return base
}

func (a App) renderHelp() string {
	hints := a.statusHintsForTab()
	lines := make([]string, 0, len(hints)+2)
	lines = append(lines, MutedStyle.Render("esc to close"))
	lines = append(lines, "")
	for _, hint := range hints {
		lines = append(lines, "  "+hint)
	}
	body := strings.Join(lines, "\n")
	return components.Indent(components.TitledBox("Help", body, a.width), 1)
}

func (a App) renderQuitConfirm() string {
	body := "The search query has unsaved filters. Quit anyway?"
	return components.Indent(components.ConfirmDialog("Quit", body), 1)
}

func (a App) runStartupCheckCmd() tea.Cmd {
	client := a.client.WithTimeout(700 * time.Millisecond)
	return func() tea.Msg {
		msg := startupCheckedMsg{}
		if _, err := client.Health(context.Background()); err != nil {
			msg.apiErr = err.Error()
		}
		return msg
	}
}

func (a App) reloginCmd() tea.Cmd {
	if a.client == nil || a.config == nil {
		return func() tea.Msg {
			return errMsg{err: fmt.Errorf("re-login unavailable; run cloudconsole login")}
		}
	}
	username := strings.TrimSpace(a.config.Username)
	if username == "" {
		return func() tea.Msg {
			return errMsg{err: fmt.Errorf("username missing; run cloudconsole login")}
		}
	}
	client := a.client
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), username)
		if err != nil {
			return reloginDoneMsg{err: err}
		}
		return reloginDoneMsg{apiKey: resp.APIKey}
	}
}

func (a App) applyRelogin(msg reloginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.err = fmt.Sprintf("re-login failed: %v", msg.err)
		a.showRecoveryHints = shouldShowRecoveryHints(msg.err)
		return a, nil
	}
	if a.config != nil {
		a.config.APIKey = msg.apiKey
		if err := a.config.Save(); err != nil {
			a.err = fmt.Sprintf("save config: %v", err)
			return a, nil
		}
	}
	if a.client != nil {
		a.client.SetAPIKey(msg.apiKey)
	}
	a.err = ""
	a.showRecoveryHints = false
	a.startup.Auth = "ok"
	return a, a.setToast("success", "Re-login complete. API key refreshed.")
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func (a App) renderStartupPanel() string {
	rows := []components.TableRow{
		{Label: "API", Value: a.startup.API, ValueColor: startupStatusColor(a.startup.API)},
		{Label: "Auth", Value: a.startup.Auth, ValueColor: startupStatusColor(a.startup.Auth)},
		{Label: "References", Value: a.startup.References, ValueColor: startupStatusColor(a.startup.References)},
	}
	return components.Table("Startup Checks", rows, a.width)
}

// shouldShowRecoveryHints is true for authentication failures, which a
// fresh login can fix.
func shouldShowRecoveryHints(err error) bool {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized
}

func classifyStartupAPI(errText string) string {
	if strings.TrimSpace(errText) == "" {
		return "ok"
	}
	lower := strings.ToLower(errText)
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return "timeout"
	}
	return "down"
}

func classifyStartupAuth(cfg *config.Config) string {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return "missing"
	}
	return "ok"
}

func startupToastCopy(summary startupSummary) (string, string) {
	if summary.API != "ok" {
		return "error", fmt.Sprintf("Startup checks failed: API is %s.", summary.API)
	}
	if summary.Auth != "ok" {
		return "warning", fmt.Sprintf("Startup checks: auth=%s.", summary.Auth)
	}
	return "success", "Startup checks passed: API and auth are healthy."
}

func startupStatusColor(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ok":
		return string(ColorSuccess)
	case "checking", "loading":
		return string(ColorMuted)
	case "missing", "partial", "timeout":
		return string(ColorWarning)
	case "down", "failed":
		return string(ColorError)
	default:
		return string(ColorMuted)
	}
}

func centerBlock(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lineWidth := lipgloss.Width(line)
		if lineWidth >= width {
			continue
		}
		pad := (width - lineWidth) / 2
		lines[i] = strings.Repeat(" ", pad) + line
	}
	return strings.Join(lines, "\n")
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		w := lipgloss.Width(line)
		if w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
