// internal/tui/app.go
//
// This is the terminal UI of the arcade. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: the App struct below
// 2. Update: turns messages (keys, frames, timers) into state changes
// 3. View: renders the current state to a string
//
// Game sessions run inside the Update loop: frameHost turns frames and
// timers into bubbletea messages so sessions never see another goroutine.

package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/arcade/internal/config"
	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/games"
	"github.com/kingrea/arcade/internal/logbook"
	"github.com/kingrea/arcade/internal/logging"
	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
	"github.com/kingrea/arcade/plugins"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMenu     appState = iota // Game picker
	statePlaying                  // A session is running
	stateResult                   // Session finished, waiting for the restart offer
	stateStatus                   // Implementation status dashboard
	stateFailures                 // Failure statistics and persisted log
)

const (
	actionPlay     = "play"
	actionStatus   = "status"
	actionFailures = "failures"
	actionQuit     = "quit"

	recentFailures = 10
	journalLines   = 6
	timeBarWidth   = 30
)

// RegistryFactory builds the game registry the App resolves sessions from.
type RegistryFactory func(cfg *config.Config, host session.Host, classifier *failure.Classifier, logger *slog.Logger) (*module.Registry, error)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRegistryFactory allows tests to inject custom game registries.
func WithRegistryFactory(factory RegistryFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.registryFactory = factory
		}
	}
}

// WithClassifier shares a failure classifier with the rest of the program.
func WithClassifier(classifier *failure.Classifier) AppOption {
	return func(a *App) {
		if classifier != nil {
			a.classifier = classifier
		}
	}
}

// WithLogger routes App and session diagnostics to logger.
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithLogbook overrides the play journal.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithClock replaces the wall clock sessions measure time against.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		if now != nil {
			a.clock = now
		}
	}
}

// statusLoadedMsg carries the probe results for the status dashboard.
type statusLoadedMsg struct {
	summary module.Summary
	reports []module.StatusReport
}

// failureModal is the overlay shown for unresolved failures.
type failureModal struct {
	note        failure.Notification
	showDetails bool
	details     viewport.Model
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state      appState
	ctx        context.Context
	config     *config.Config
	registry   *module.Registry
	classifier *failure.Classifier
	logger     *slog.Logger
	logbook    *logbook.Logbook
	host       *frameHost
	clock      func() time.Time

	registryFactory RegistryFactory
	unsubscribe     func()

	// Current play attempt
	current      session.Session
	currentID    string
	result       *session.Result
	restartReady bool
	rebuild      string
	frameGen     int

	// UI components
	menu          list.Model
	spinner       spinner.Model
	panel         viewport.Model
	modal         *failureModal
	statusMsg     string
	loadingStatus bool
	summary       module.Summary
	reports       []module.StatusReport

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title  string
	desc   string
	action string
	id     string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	lb, err := logbook.New(cfg.JournalPath())
	if err != nil {
		lb = nil
	}
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "◆ ARCADE"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	app := &App{
		state:           stateMenu,
		ctx:             context.Background(),
		config:          cfg,
		logger:          logging.Discard(),
		logbook:         lb,
		clock:           time.Now,
		registryFactory: defaultRegistryFactory,
		menu:            menu,
		spinner:         spin,
		panel:           viewport.New(0, 0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.classifier == nil {
		app.classifier = failure.NewClassifier(
			failure.WithPolicies(cfg.FailurePolicies()),
			failure.WithLogger(app.logger),
		)
	}
	app.host = newFrameHost(app.clock)
	registry, err := app.registryFactory(cfg, app.host, app.classifier, app.logger)
	if err != nil {
		return nil, err
	}
	app.registry = registry
	for _, kind := range failure.Kinds() {
		app.classifier.SetProcedure(kind, app.rebuildProcedure)
	}
	app.unsubscribe = app.classifier.Subscribe(app.onNotification)
	app.refreshMenu()
	app.logbook.Info("Arcade opened · %d games", len(registry.IDs()))
	return app, nil
}

func defaultRegistryFactory(cfg *config.Config, host session.Host, classifier *failure.Classifier, logger *slog.Logger) (*module.Registry, error) {
	return module.NewRegistry(host,
		module.WithLoader(games.RegisterBuiltins),
		module.WithLoader(plugins.Loader(cfg)),
		module.WithFallback(games.Fallback),
		module.WithRecorder(classifier),
		module.WithLogger(logger),
	), nil
}

// Close stops the running session and detaches from the classifier.
func (a *App) Close() {
	a.stopGame()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// refreshMenu rebuilds the menu from the registry and keeps the configured
// default game selected.
func (a *App) refreshMenu() {
	summary := a.registry.AggregateStatus()
	items := make([]list.Item, 0, len(summary.Entries)+3)
	selected := 0
	for _, entry := range summary.Entries {
		if entry.ID == a.config.DefaultGame() {
			selected = len(items)
		}
		items = append(items, menuItem{
			title:  entry.Name,
			desc:   describeEntry(entry),
			action: actionPlay,
			id:     entry.ID,
		})
	}
	items = append(items,
		menuItem{title: "Status", desc: fmt.Sprintf("%d of %d games implemented", summary.Implemented, summary.Total), action: actionStatus},
		menuItem{title: "Failures", desc: "Recent failures and the persisted log", action: actionFailures},
		menuItem{title: "Quit", desc: "Leave the arcade", action: actionQuit},
	)
	a.menu.SetItems(items)
	a.menu.Select(selected)
	a.summary = summary
}

func describeEntry(entry module.SummaryEntry) string {
	switch entry.Status {
	case module.StatusFallback:
		return "simplified version"
	case module.StatusMissing:
		return "not available yet"
	}
	if desc, ok := gameDescriptions[entry.ID]; ok {
		return desc
	}
	return entry.ID
}

var gameDescriptions = map[string]string{
	"tap_sprint": "Hammer space before the clock runs out",
	"reaction":   "Wait for the signal, then react",
	"catch":      "Move the basket under the falling stars",
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("arcade")
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	cmds = append(cmds, a.handle(msg))
	// A rebuilt game can fail again while starting; the classifier stops
	// requesting rebuilds once its retries run out.
	for a.rebuild != "" {
		id := a.rebuild
		a.rebuild = ""
		a.logbook.Info("%s restarted after a failure", id)
		cmds = append(cmds, a.startGame(id))
	}
	cmds = append(cmds, a.host.drain()...)
	return a, tea.Batch(cmds...)
}

func (a *App) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.host.resize(msg.Width, max(1, msg.Height-8))
		a.menu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		a.panel.Width = max(20, msg.Width-6)
		a.panel.Height = max(5, msg.Height-10)
		if a.modal != nil {
			a.modal.details.Width = max(60, a.panel.Width-4)
			a.modal.details.Height = max(8, a.panel.Height-8)
		}
		return nil

	case frameMsg:
		if msg.gen != a.frameGen {
			return nil
		}
		a.host.frame()
		if a.host.subscribed() {
			return a.nextFrame()
		}
		return nil

	case timerMsg:
		a.host.fire(msg.id)
		return nil

	case statusLoadedMsg:
		a.loadingStatus = false
		a.summary = msg.summary
		a.reports = msg.reports
		a.panel.SetContent(a.renderStatusReports())
		return nil

	case spinner.TickMsg:
		if !a.loadingStatus {
			return nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.Close()
			return tea.Quit
		}
		if a.modal != nil {
			return a.handleModalKey(msg)
		}
		return a.handleKey(msg)
	}
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch a.state {
	case stateMenu:
		switch key {
		case "q":
			a.Close()
			return tea.Quit
		case "enter":
			return a.handleMenuSelection()
		case "d":
			item, ok := a.menu.SelectedItem().(menuItem)
			if ok && item.action == actionPlay {
				if err := a.config.SetDefaultGame(item.id); err != nil {
					a.statusMsg = fmt.Sprintf("Could not save default game: %v", err)
				} else {
					a.statusMsg = fmt.Sprintf("%s is now the default game", item.title)
				}
			}
			return nil
		}
		var cmd tea.Cmd
		a.menu, cmd = a.menu.Update(msg)
		return cmd

	case statePlaying:
		if key == "esc" {
			a.logger.Info("session abandoned", "game", a.currentID)
			return a.returnToMenu()
		}
		if a.current != nil {
			a.current.HandleInput(key)
		}
		return nil

	case stateResult:
		switch key {
		case "esc", "q":
			return a.returnToMenu()
		case "enter", " ":
			if a.restartReady {
				return a.startGame(a.currentID)
			}
		}
		return nil

	case stateStatus, stateFailures:
		switch key {
		case "esc", "q":
			return a.returnToMenu()
		case "c":
			if a.state == stateFailures {
				if err := a.classifier.Clear(a.ctx); err != nil {
					a.statusMsg = fmt.Sprintf("Could not clear the failure log: %v", err)
				} else {
					a.statusMsg = "Failure log cleared"
				}
				a.panel.SetContent(a.renderFailureLog())
			}
			return nil
		}
		var cmd tea.Cmd
		a.panel, cmd = a.panel.Update(msg)
		return cmd
	}
	return nil
}

func (a *App) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	note := a.modal.note
	switch msg.String() {
	case "esc":
		a.modal = nil
		return nil
	case "r":
		a.modal = nil
		return a.startGame(note.Record.SessionKind)
	case "a":
		if !note.CanRetry {
			return nil
		}
		if a.classifier.ManualRetry(a.ctx, note.FailureID) {
			a.modal = nil
			a.statusMsg = "Repaired automatically"
			return nil
		}
		a.statusMsg = "Automatic repair failed"
		if rec, ok := a.classifier.Lookup(a.ctx, note.FailureID); ok {
			a.modal.note.CanRetry = a.classifier.RemainingRetries(rec) > 0
		}
		return nil
	case "d":
		a.modal.showDetails = !a.modal.showDetails
		return nil
	}
	if a.modal.showDetails {
		var cmd tea.Cmd
		a.modal.details, cmd = a.modal.details.Update(msg)
		return cmd
	}
	return nil
}

// handleMenuSelection processes menu item selection
func (a *App) handleMenuSelection() tea.Cmd {
	item, ok := a.menu.SelectedItem().(menuItem)
	if !ok {
		return nil
	}
	a.statusMsg = ""
	switch item.action {
	case actionPlay:
		return a.startGame(item.id)
	case actionStatus:
		a.state = stateStatus
		a.loadingStatus = true
		a.panel.SetContent("")
		return tea.Batch(a.spinner.Tick, a.checkStatus())
	case actionFailures:
		a.state = stateFailures
		a.panel.SetContent(a.renderFailureLog())
		a.panel.GotoTop()
		return nil
	case actionQuit:
		a.Close()
		return tea.Quit
	}
	return nil
}

func (a *App) returnToMenu() tea.Cmd {
	a.stopGame()
	a.state = stateMenu
	a.refreshMenu()
	return nil
}

// startGame resolves id into a fresh session and starts playing it. Any
// previous session is destroyed first.
func (a *App) startGame(id string) tea.Cmd {
	a.stopGame()
	a.currentID = id
	a.result = nil
	a.restartReady = false
	a.state = statePlaying

	s := a.registry.Resolve(a.ctx, id, a.config.SettingsFor(id),
		session.WithResultHandler(a.onResult),
		session.WithRestartOffer(func() { a.restartReady = true }),
		session.WithRestartDelay(a.config.RestartDelay()),
		session.WithFailureHandler(func(err error) { a.onRuntimeFailure(id, err) }),
		session.WithLogger(a.logger.With("game", id)),
	)
	a.current = s
	s.Initialize()
	s.Start()
	if s.State().IsTerminal() && a.result == nil {
		res, _ := s.Result()
		a.result = &res
		a.state = stateResult
		a.restartReady = true
	}
	a.logger.Info("game started", "game", id, "kind", s.Kind())
	a.frameGen++
	return a.nextFrame()
}

// stopGame destroys the running session and invalidates queued frames.
func (a *App) stopGame() {
	if a.current == nil {
		return
	}
	a.current.Destroy()
	a.current = nil
	a.frameGen++
}

func (a *App) nextFrame() tea.Cmd {
	gen := a.frameGen
	return tea.Tick(a.config.FrameInterval(), func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

func (a *App) onResult(res session.Result) {
	a.result = &res
	a.logbook.RecordPlay(a.currentID, res)
	if a.state == statePlaying {
		a.state = stateResult
	}
}

// onRuntimeFailure runs while the failing session is still Playing, so the
// snapshot carries its live state.
func (a *App) onRuntimeFailure(id string, err error) {
	snapshot := failure.Context{State: session.StatePlaying.String()}
	if a.current != nil {
		snapshot.State = a.current.State().String()
	}
	snapshot.ViewportWidth, snapshot.ViewportHeight = a.host.Viewport()
	snapshot.Flags = a.host.Flags()
	a.classifier.Handle(a.ctx, err, id, snapshot)
}

// rebuildProcedure repairs any failure kind by restarting the game after the
// current message has been handled.
func (a *App) rebuildProcedure(_ context.Context, rec *failure.Record) error {
	if rec.SessionKind == "" {
		return fmt.Errorf("failure %s has no game to rebuild", rec.ID)
	}
	a.rebuild = rec.SessionKind
	return nil
}

func (a *App) onNotification(note failure.Notification) {
	a.logbook.RecordFailure(note.Record.SessionKind, note.FailureID, note.Message)
	details := viewport.New(max(60, a.panel.Width-4), max(8, a.panel.Height-8))
	details.SetContent(renderRecordDetails(note.Record))
	a.modal = &failureModal{note: note, details: details}
}

func (a *App) checkStatus() tea.Cmd {
	registry := a.registry
	ctx := a.ctx
	return func() tea.Msg {
		summary := registry.AggregateStatus()
		reports := make([]module.StatusReport, 0, len(summary.Entries))
		for _, entry := range summary.Entries {
			reports = append(reports, registry.CheckStatus(ctx, entry.ID))
		}
		return statusLoadedMsg{summary: summary, reports: reports}
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 80
	}
	var content string
	switch a.state {
	case stateMenu:
		content = lipgloss.JoinVertical(lipgloss.Left, a.menu.View(), a.renderLogPanel())
	case statePlaying:
		content = a.renderPlaying(width - 4)
	case stateResult:
		content = a.renderResult()
	case stateStatus:
		if a.loadingStatus {
			content = fmt.Sprintf("%s Probing games...", a.spinner.View())
		} else {
			content = a.panel.View()
		}
	case stateFailures:
		content = a.panel.View()
	}
	if a.modal != nil {
		content = a.renderModal(width - 4)
	}
	return a.renderFrame(content)
}

func (a *App) renderFrame(content string) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("◆ ARCADE")
	parts := []string{header, content}
	if a.statusMsg != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B8DEF")).
			Render(a.statusMsg))
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.hints())
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) hints() string {
	if a.modal != nil {
		if a.modal.note.CanRetry {
			return "r retry · a repair · d details · esc dismiss"
		}
		return "r retry · d details · esc dismiss"
	}
	switch a.state {
	case stateMenu:
		return "enter play · d set default · q quit"
	case statePlaying:
		return "esc abandon"
	case stateResult:
		if a.restartReady {
			return "enter play again · esc menu"
		}
		return "esc menu"
	case stateFailures:
		return "↑/↓ scroll · c clear · esc back"
	}
	return "↑/↓ scroll · esc back"
}

func (a *App) renderPlaying(width int) string {
	if a.current == nil {
		return "Loading game..."
	}
	p := a.current.Presentation()
	settings := a.current.Settings()
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(p.Name)
	instructions := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(p.Instructions)
	hud := fmt.Sprintf("score %d / %d   %s %s",
		a.current.Score(),
		settings.TargetScore,
		a.renderTimeBar(remaining(a.current), settings),
		humanizeDuration(remaining(a.current)),
	)
	w, h := a.host.Viewport()
	nodes := make([]string, 0, len(a.host.nodes))
	for _, node := range a.host.nodes {
		nodes = append(nodes, node.Render(w, h))
	}
	board := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width)).
		Render(strings.Join(nodes, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, instructions, hud, board)
}

func (a *App) renderTimeBar(left time.Duration, settings session.Settings) string {
	total := time.Duration(settings.DurationSeconds * float64(time.Second))
	filled := 0
	if total > 0 {
		filled = int(float64(timeBarWidth) * float64(left) / float64(total))
	}
	filled = min(max(filled, 0), timeBarWidth)
	color := "#5B8DEF"
	if filled < timeBarWidth/4 {
		color = "#FF6B6B"
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")).Render(strings.Repeat("░", timeBarWidth-filled))
	return bar + rest
}

func (a *App) renderResult() string {
	name := a.currentID
	if a.current != nil {
		name = a.current.Presentation().Name
	}
	if a.result == nil {
		return fmt.Sprintf("%s finished.", name)
	}
	headline := "Time's up!"
	color := "#FF6B6B"
	if a.result.Success {
		headline = "You win!"
		color = "#7BD88F"
	}
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(headline)
	body := fmt.Sprintf("%s · score %d · %.1fs", name, a.result.Score, a.result.ElapsedSeconds)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, head, body))
}

func (a *App) renderLogPanel() string {
	lines, total := a.logbook.Tail(journalLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderStatusReports() string {
	lines := []string{
		fmt.Sprintf("%d of %d games implemented (%.0f%%) · %d fallback · %d missing",
			a.summary.Implemented, a.summary.Total, a.summary.ImplementationRate, a.summary.Fallback, a.summary.Missing),
		"",
	}
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("#7BD88F"))
	bad := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	for _, report := range a.reports {
		mark := ok.Render("✔")
		if !report.Implemented {
			mark = bad.Render("✘")
		}
		line := fmt.Sprintf("%s %-16s %s", mark, report.GameType, report.Status)
		if report.Error != "" {
			line += "  " + dim.Render(report.Error)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderFailureLog() string {
	stats := a.classifier.Statistics(recentFailures)
	lines := []string{fmt.Sprintf("This run: %d failures, %d resolved", stats.Total, stats.Resolved)}
	for _, kind := range failure.Kinds() {
		if n := stats.ByKind[kind]; n > 0 {
			lines = append(lines, fmt.Sprintf("  %-10s %d", kind, n))
		}
	}
	persisted, err := a.classifier.PersistedLog(a.ctx)
	lines = append(lines, "")
	if err != nil {
		lines = append(lines, fmt.Sprintf("Persisted log unavailable: %v", err))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, fmt.Sprintf("Persisted log: %d entries", len(persisted)))
	for i := len(persisted) - 1; i >= 0; i-- {
		rec := persisted[i]
		state := "open"
		if rec.Resolved {
			state = "resolved"
		}
		lines = append(lines, fmt.Sprintf("  %s %-12s %-8s %-8s %s",
			rec.Timestamp.Local().Format("01-02 15:04:05"), rec.SessionKind, rec.Kind, state, rec.Message))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderModal(width int) string {
	note := a.modal.note
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render(note.Message)
	body := []string{head}
	if note.RemediationHint != "" {
		body = append(body, lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Render(note.RemediationHint))
	}
	body = append(body, fmt.Sprintf("game %s · %s", note.Record.SessionKind, note.Record.Kind))
	if a.modal.showDetails {
		body = append(body, "", a.modal.details.View())
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#FF6B6B")).
		Padding(1, 2).
		Width(max(30, min(width, 72))).
		Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

func renderRecordDetails(rec failure.Record) string {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}

type remainer interface {
	Remaining() time.Duration
}

type unwrapper interface {
	Unwrap() session.Session
}

// remaining reads the countdown of s, looking through fallback labels.
func remaining(s session.Session) time.Duration {
	for s != nil {
		if r, ok := s.(remainer); ok {
			return r.Remaining()
		}
		u, ok := s.(unwrapper)
		if !ok {
			return 0
		}
		s = u.Unwrap()
	}
	return 0
}

func humanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "0.0s"
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
