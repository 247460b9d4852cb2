package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pianopractice/practice-tracker/internal/logging"
	"github.com/pianopractice/practice-tracker/internal/practice"
	"github.com/pianopractice/practice-tracker/internal/prefs"
	"github.com/pianopractice/practice-tracker/internal/state"
)

// focusArea is the panel receiving keys.
type focusArea int

const (
	focusPieces focusArea = iota
	focusAddPiece
	focusSession
	focusCount
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Coordinator *state.Coordinator
	API         practice.API // used by the self-fetching panels
	LoginURL    string
	ThemeName   string
	PrefsPath   string
	PollTick    time.Duration // how often the view re-reads coordinator state
	Logger      *slog.Logger
	Clipboard   func(string) error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	coord     *state.Coordinator
	loginURL  string
	prefsPath string
	pollTick  time.Duration
	logger    *slog.Logger
	copyText  func(string) error
	keys      keyMap

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool
	focus  focusArea
	cursor int

	// Data state
	snapshot state.Snapshot

	// Panels
	pieceForm   PieceForm
	sessionForm SessionForm
	stats       StatsPanel
	recent      RecentSessions

	// Overlays
	modal    Modal
	showHelp bool

	// Local status, shown instead of the coordinator's while set
	busy          string
	status        string
	statusIsError bool
	statusAt      time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}

	return Model{
		ctx:         ctx,
		coord:       opts.Coordinator,
		loginURL:    opts.LoginURL,
		prefsPath:   opts.PrefsPath,
		pollTick:    pollTick,
		logger:      logger,
		copyText:    copyText,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		pieceForm:   NewPieceForm(),
		sessionForm: NewSessionForm(),
		stats:       NewStatsPanel(ctx, opts.API, logger),
		recent:      NewRecentSessions(ctx, opts.API, logger),
		busy:        "Loading",
	}
}

// Init implements tea.Model. The initial load happens on mount.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		loadCmd(m.ctx, m.coord),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		if m.status != "" && time.Since(m.statusAt) > StatusClearAfter {
			m.status = ""
			m.statusIsError = false
		}
		return m, tea.Batch(fetchSnapshotCmd(m.coord.Store()), tickCmd(m.pollTick))

	case snapshotMsg:
		return m.applySnapshot(state.Snapshot(msg))

	case loadDoneMsg:
		m.busy = ""
		return m, fetchSnapshotCmd(m.coord.Store())

	case pieceAddedMsg:
		m.busy = ""
		if msg.err != nil {
			m.pieceForm.SetError(inlineError(msg.err))
		} else {
			m.pieceForm.Reset()
			m.setStatus(state.StatusPieceAdded, false)
		}
		return m, fetchSnapshotCmd(m.coord.Store())

	case confirmDeleteMsg:
		m.busy = "Deleting"
		return m, deletePieceCmd(m.ctx, m.coord, msg.id)

	case pieceDeletedMsg:
		m.busy = ""
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus("Piece deleted", false)
		}
		return m, fetchSnapshotCmd(m.coord.Store())

	case sessionLoggedMsg:
		m.busy = ""
		if msg.err != nil {
			m.sessionForm.SetError(msg.err)
		} else {
			m.sessionForm.Reset()
			m.setStatus(fmt.Sprintf("Logged %s", plural(msg.session.Minutes, "minute")), false)
		}
		return m, fetchSnapshotCmd(m.coord.Store())

	case statsMsg:
		m.stats.Apply(msg)
		return m, nil

	case sessionsMsg:
		m.recent.Apply(msg)
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.logger.Debug("clipboard write failed", "error", msg.err)
			m.setStatus("Copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Login URL copied", false)
		}
		return m, nil
	}

	return m, nil
}

// applySnapshot installs coordinator state and lets the self-fetching panels
// react to a refresh counter change.
func (m Model) applySnapshot(snap state.Snapshot) (tea.Model, tea.Cmd) {
	m.snapshot = snap
	m.cursor = clampCursor(m.cursor, len(snap.Pieces))
	m.sessionForm.Reconcile(snap.Pieces)
	if !snap.LoggedIn() {
		return m, nil
	}
	return m, tea.Batch(m.stats.Sync(snap.RefreshTick), m.recent.Sync(snap.RefreshTick))
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusIsError = isErr
	m.statusAt = time.Now()
}

// statusLine prefers a fresh local message over the coordinator's status.
func (m Model) statusLine() string {
	if m.status != "" {
		return m.status
	}
	return m.snapshot.Status
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		next, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	if !m.snapshot.LoggedIn() {
		return m.handleGlobalKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		cmd := m.setFocus((m.focus + 1) % focusCount)
		return m, cmd
	case key.Matches(msg, m.keys.ShiftTab):
		cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		cmd := m.setFocus(focusPieces)
		return m, cmd
	}

	switch m.focus {
	case focusAddPiece:
		return m.handleAddPieceKey(msg)
	case focusSession:
		return m.handleSessionKey(msg)
	default:
		return m.handlePiecesKey(msg)
	}
}

// handleGlobalKey covers keys that work from the piece list and the
// signed-out screen.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
				m.logger.Debug("save prefs failed", "error", err)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.busy = "Loading"
		return m, loadCmd(m.ctx, m.coord)
	case key.Matches(msg, m.keys.CopyLogin):
		return m, copyCmd(m.copyText, m.loginURL)
	}
	return m, nil
}

func (m Model) handlePiecesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pieces := m.snapshot.Pieces
	switch {
	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(pieces))
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(pieces))
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = clampCursor(len(pieces)-1, len(pieces))
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if p, ok := m.selectedPiece(); ok {
			m.modal = newConfirmDeleteModal(p)
		}
		return m, nil
	case key.Matches(msg, m.keys.LogFor):
		if p, ok := m.selectedPiece(); ok {
			m.sessionForm.SelectPiece(p.ID)
			cmd := m.setFocus(focusSession)
			return m, cmd
		}
		return m, nil
	}
	return m.handleGlobalKey(msg)
}

func (m Model) handleAddPieceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd, submit := m.pieceForm.Update(msg, m.keys)
	m.pieceForm = form
	title, composer := form.Values()
	m.coord.Store().SetDrafts(title, composer)
	m.snapshot.TitleDraft, m.snapshot.ComposerDraft = title, composer
	if !submit {
		return m, cmd
	}
	m.pieceForm.SetError("")
	m.busy = "Saving"
	return m, addPieceCmd(m.ctx, m.coord, title, composer)
}

func (m Model) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd, submit := m.sessionForm.Update(msg, m.keys, m.snapshot.Pieces)
	m.sessionForm = form
	if !submit {
		return m, cmd
	}
	in, err := m.sessionForm.Draft()
	if err != nil {
		m.sessionForm.SetError(err)
		return m, nil
	}
	m.sessionForm.SetError(nil)
	m.busy = "Saving"
	return m, logSessionCmd(m.ctx, m.coord, in)
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.pieceForm.Blur()
	m.sessionForm.Blur()
	switch f {
	case focusAddPiece:
		return m.pieceForm.Focus()
	case focusSession:
		return m.sessionForm.Focus()
	}
	return nil
}

func (m Model) selectedPiece() (practice.Piece, bool) {
	if len(m.snapshot.Pieces) == 0 {
		return practice.Piece{}, false
	}
	return m.snapshot.Pieces[clampCursor(m.cursor, len(m.snapshot.Pieces))], true
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	styles := m.theme.Styles()
	contentHeight := max(m.height-2, 3)

	if !m.snapshot.LoggedIn() {
		if m.busy != "" && m.snapshot.LastUpdated.IsZero() {
			return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
				styles.Muted.Render("Loading..."))
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			renderLoggedOut(m.loginURL, m.snapshot.Status, styles))
	}

	welcome := lipgloss.NewStyle().Padding(0, 1).Render(renderWelcome(*m.snapshot.Profile, styles))
	bodyHeight := max(contentHeight-lipgloss.Height(welcome)-1, 8)

	if m.width < LayoutCompactWidth {
		return welcome + "\n\n" + m.renderStacked(styles, bodyHeight)
	}
	return welcome + "\n\n" + m.renderColumns(styles, bodyHeight)
}

// renderColumns puts the piece list on the left and the other panels on the right.
func (m Model) renderColumns(styles Styles, height int) string {
	leftWidth := m.width * 40 / 100
	if m.width >= LayoutWideWidth {
		leftWidth = m.width * 30 / 100
	}
	rightWidth := m.width - leftWidth

	left := m.renderTitledBox(m.piecesTitle(),
		renderPieceList(m.snapshot.Pieces, m.cursor, styles, leftWidth-4, m.focus == focusPieces),
		leftWidth, height, m.focus == focusPieces)

	statsBody := m.stats.View(styles, rightWidth-4)
	statsH := lipgloss.Height(statsBody) + 2
	addBody := m.pieceForm.View(styles, m.focus == focusAddPiece)
	addH := lipgloss.Height(addBody) + 2
	sessionBody := m.sessionForm.View(m.snapshot.Pieces, styles, m.focus == focusSession)
	sessionH := lipgloss.Height(sessionBody) + 2
	recentH := max(height-statsH-addH-sessionH, 3)

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitledBox("Last 7 days", statsBody, rightWidth, statsH, false),
		m.renderTitledBox("Add piece", addBody, rightWidth, addH, m.focus == focusAddPiece),
		m.renderTitledBox("Log session", sessionBody, rightWidth, sessionH, m.focus == focusSession),
		m.renderTitledBox("Recent sessions", m.recent.View(m.snapshot.Pieces, styles, rightWidth-4), rightWidth, recentH, false),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderStacked shows the focused panel under a short piece list.
func (m Model) renderStacked(styles Styles, height int) string {
	listH := max(height/3, 4)
	list := m.renderTitledBox(m.piecesTitle(),
		renderPieceList(m.snapshot.Pieces, m.cursor, styles, m.width-4, m.focus == focusPieces),
		m.width, listH, m.focus == focusPieces)

	var title, body string
	switch m.focus {
	case focusAddPiece:
		title, body = "Add piece", m.pieceForm.View(styles, true)
	case focusSession:
		title, body = "Log session", m.sessionForm.View(m.snapshot.Pieces, styles, true)
	default:
		title, body = "Last 7 days", m.stats.View(styles, m.width-4)
	}
	return list + "\n" + m.renderTitledBox(title, body, m.width, max(height-listH, 4), m.focus != focusPieces)
}

func (m Model) piecesTitle() string {
	return fmt.Sprintf("Pieces (%d)", len(m.snapshot.Pieces))
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type loadDoneMsg struct{ err error }

type pieceAddedMsg struct {
	piece *practice.Piece
	err   error
}

type pieceDeletedMsg struct {
	id  int64
	err error
}

type sessionLoggedMsg struct {
	session *practice.Session
	err     error
}

type clipboardMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadCmd(ctx context.Context, coord *state.Coordinator) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{err: coord.Load(ctx)}
	}
}

func addPieceCmd(ctx context.Context, coord *state.Coordinator, title, composer string) tea.Cmd {
	return func() tea.Msg {
		p, err := coord.AddPiece(ctx, title, composer)
		return pieceAddedMsg{piece: p, err: err}
	}
}

func deletePieceCmd(ctx context.Context, coord *state.Coordinator, id int64) tea.Cmd {
	return func() tea.Msg {
		return pieceDeletedMsg{id: id, err: coord.DeletePiece(ctx, id)}
	}
}

func logSessionCmd(ctx context.Context, coord *state.Coordinator, in practice.SessionInput) tea.Cmd {
	return func() tea.Msg {
		s, err := coord.LogSession(ctx, in)
		return sessionLoggedMsg{session: s, err: err}
	}
}

func copyCmd(copyText func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: copyText(text)}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
