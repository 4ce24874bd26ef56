package cli

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/vitalsgrid/pkg/dashboard"
	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/feed"
	"github.com/matzehuels/vitalsgrid/pkg/grid"
	"github.com/matzehuels/vitalsgrid/pkg/io"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
	"github.com/matzehuels/vitalsgrid/pkg/render"
	"github.com/matzehuels/vitalsgrid/pkg/session"
	"github.com/matzehuels/vitalsgrid/pkg/vitals"
)

// feedBuffer bounds the records queued between the feed goroutine and the
// program loop. Records beyond it are dropped; errors wait for room.
const feedBuffer = 32

// chrome is the number of terminal lines outside the board.
const chrome = 7

var (
	tuiTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiRangeStyle    = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	tuiRangeActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	tuiEditBadge     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorYellow).Padding(0, 1).Bold(true)
	tuiHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	tuiDraftStyle    = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236")).Padding(0, 1)
	tuiDraftFocus    = lipgloss.NewStyle().Underline(true).Bold(true)
	tuiLiveIndicator = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// Messages
// =============================================================================

type fetchDoneMsg struct {
	ticket dashboard.FetchTicket
	bundle vitals.Bundle
	err    error
}

type feedStartedMsg struct {
	token  dashboard.FeedToken
	handle *feed.Handle
	err    error
}

type feedRecordMsg struct {
	token  dashboard.FeedToken
	record vitals.Record
}

type feedErrorMsg struct {
	token dashboard.FeedToken
	err   error
}

// feedEvent is what the feed callbacks queue for the program loop.
type feedEvent struct {
	token  dashboard.FeedToken
	record vitals.Record
	err    error
}

// =============================================================================
// Model
// =============================================================================

// dashboardModel drives a dashboard from the keyboard. All dashboard state
// is touched only from Update, so no locking is needed; feed callbacks hand
// their records over through a buffered channel.
type dashboardModel struct {
	ctx     context.Context
	dash    *dashboard.Dashboard
	fetcher vitals.Fetcher
	feed    feed.Feed
	logger  *log.Logger

	handle      *feed.Handle
	events      chan feedEvent
	feedOnStart bool

	board  *render.Board
	cursor grid.Cell
	field  string // draft field that +/- and digits edit

	width, height int
	message       string
	messageErr    bool
}

func newDashboardModel(ctx context.Context, dash *dashboard.Dashboard, fetcher vitals.Fetcher, f feed.Feed, logger *log.Logger) *dashboardModel {
	return &dashboardModel{
		ctx:     ctx,
		dash:    dash,
		fetcher: fetcher,
		feed:    f,
		logger:  logger,
		events:  make(chan feedEvent, feedBuffer),
		board:   render.NewBoard(render.MinCellWidth*2, render.MinCellHeight+2, grid.DefaultVisibleRows/4),
		field:   session.FieldWidth,

		feedOnStart: true,
	}
}

func (m *dashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetch(m.dash.TimeRange), m.waitForFeed()}
	if m.feed != nil && m.feedOnStart {
		cmds = append(cmds, m.startFeed())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// Commands
// =============================================================================

// fetch starts a fetch for tr. A later fetch supersedes this one.
func (m *dashboardModel) fetch(tr vitals.TimeRange) tea.Cmd {
	if m.fetcher == nil {
		return nil
	}
	ticket := m.dash.BeginFetch(tr)
	ctx, fetcher := m.ctx, m.fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, defaultFetchTimeout)
		defer cancel()
		b, err := fetcher.Fetch(ctx, ticket.Range)
		return fetchDoneMsg{ticket: ticket, bundle: b, err: err}
	}
}

func (m *dashboardModel) startFeed() tea.Cmd {
	token, started := m.dash.EnableFeed()
	if !started {
		return nil
	}
	ctx, f := m.ctx, m.feed
	onRecord, onError := m.feedCallbacks(token)
	return func() tea.Msg {
		h, err := f.Subscribe(ctx, onRecord, onError)
		return feedStartedMsg{token: token, handle: h, err: err}
	}
}

// feedCallbacks queues feed events for waitForFeed. Records are dropped when
// the queue is full. The terminal error waits for room, since losing it
// would leave the feed shown as connected.
func (m *dashboardModel) feedCallbacks(token dashboard.FeedToken) (feed.RecordFunc, feed.ErrorFunc) {
	events, done := m.events, m.ctx.Done()
	onRecord := func(rec vitals.Record) {
		select {
		case events <- feedEvent{token: token, record: rec}:
		default:
		}
	}
	onError := func(err error) {
		select {
		case events <- feedEvent{token: token, err: err}:
		case <-done:
		}
	}
	return onRecord, onError
}

// waitForFeed blocks on the next queued feed event.
func (m *dashboardModel) waitForFeed() tea.Cmd {
	events, done := m.events, m.ctx.Done()
	return func() tea.Msg {
		select {
		case ev := <-events:
			if ev.err != nil {
				return feedErrorMsg{token: ev.token, err: ev.err}
			}
			return feedRecordMsg{token: ev.token, record: ev.record}
		case <-done:
			return nil
		}
	}
}

func (m *dashboardModel) stopFeed() {
	if m.handle != nil {
		m.handle.Stop()
		m.handle = nil
	}
	m.dash.DisableFeed()
}

// =============================================================================
// Update
// =============================================================================

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeBoard()
		return m, nil

	case fetchDoneMsg:
		current := m.dash.Pending(msg.ticket)
		changed := m.dash.CompleteFetch(msg.ticket, msg.bundle, msg.err)
		if !current {
			return m, nil
		}
		if msg.err != nil {
			m.setError(msg.err)
		} else if len(changed) > 0 {
			m.setMessage("Updated %d charts", len(changed))
		}
		return m, nil

	case feedStartedMsg:
		if msg.token != m.dash.FeedToken() {
			// toggled off while connecting
			if msg.handle != nil {
				msg.handle.Stop()
			}
			return m, nil
		}
		if msg.err != nil {
			m.dash.DisableFeed()
			m.setError(msg.err)
			return m, nil
		}
		m.handle = msg.handle
		return m, nil

	case feedRecordMsg:
		m.dash.HandleRecord(msg.token, msg.record)
		return m, m.waitForFeed()

	case feedErrorMsg:
		m.dash.HandleFeedError(msg.token, msg.err)
		if msg.token == m.dash.FeedToken() {
			m.setError(msg.err)
		}
		return m, m.waitForFeed()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.dash.Controller
	key := msg.String()

	if key == "ctrl+c" || key == "q" {
		m.stopFeed()
		return m, tea.Quit
	}

	if _, ok := ctrl.State().(session.ResizeEditing); ok {
		return m, m.handleDraftKey(key)
	}

	switch key {
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)

	case "e":
		ctrl.ToggleEdit()
		m.clearMessage()

	case " ":
		m.dragOrDrop()

	case "esc":
		if err := ctrl.EndDrag(); err == nil {
			m.setMessage("Drag cancelled")
		}

	case "r":
		if t, ok := m.tileAtCursor(); ok {
			if err := ctrl.BeginResizeEdit(t); err != nil {
				m.setError(err)
			} else {
				m.field = session.FieldWidth
				m.clearMessage()
			}
		}

	case "a":
		if err := ctrl.AddChartAt(m.cursor); err != nil {
			m.setError(err)
		}

	case "t":
		m.dash.TimeRange = m.dash.TimeRange.Next()
		return m, m.fetch(m.dash.TimeRange)

	case "ctrl+r":
		return m, m.fetch(m.dash.TimeRange)

	case "f":
		if m.dash.FeedEnabled() {
			m.stopFeed()
			m.setMessage("Real-time updates off")
			return m, nil
		}
		if m.feed == nil {
			m.setMessage("No feed configured")
			return m, nil
		}
		m.setMessage("Real-time updates on")
		return m, m.startFeed()

	case "y":
		m.copyLayout()
	}
	return m, nil
}

// handleDraftKey edits the resize draft: w/h pick the field, +/- step it,
// digits type it, enter saves and esc cancels.
func (m *dashboardModel) handleDraftKey(key string) tea.Cmd {
	ctrl := m.dash.Controller
	draft := ctrl.Snapshot().Draft
	if draft == nil {
		return nil
	}
	current := draft.Size.Width
	if m.field == session.FieldHeight {
		current = draft.Size.Height
	}

	switch key {
	case "w":
		m.field = session.FieldWidth
	case "h":
		m.field = session.FieldHeight
	case "tab":
		if m.field == session.FieldWidth {
			m.field = session.FieldHeight
		} else {
			m.field = session.FieldWidth
		}
	case "+", "=", "up":
		_ = ctrl.ChangeDraftSize(m.field, strconv.Itoa(current+1))
	case "-", "down":
		_ = ctrl.ChangeDraftSize(m.field, strconv.Itoa(current-1))
	case "enter":
		res := ctrl.Save()
		if !res.OK() {
			m.setError(res.Err)
		} else {
			m.setMessage("Resized %s", draft.TileID)
		}
	case "esc":
		_ = ctrl.Cancel()
		m.clearMessage()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			_ = ctrl.ChangeDraftSize(m.field, key)
		}
	}
	return nil
}

func (m *dashboardModel) dragOrDrop() {
	ctrl := m.dash.Controller
	switch ctrl.State().(type) {
	case session.Dragging:
		target := ctrl.DropTarget(m.cursor)
		res := ctrl.Drop(m.cursor)
		switch {
		case !res.OK():
			m.setError(res.Err)
		case res.Status == layout.Unchanged:
			m.setMessage("Left in place at %s", target)
		default:
			m.setMessage("Moved to %s", target)
		}
	case session.EditMode:
		id, ok := m.tileAtCursor()
		if !ok {
			return
		}
		if err := ctrl.BeginDrag(id); err != nil {
			m.setError(err)
			return
		}
		ctrl.HoverCell(m.cursor)
		m.setMessage("Dragging %s: move and press space to drop", id)
	default:
		m.setMessage("Press e to edit the layout")
	}
}

func (m *dashboardModel) moveCursor(dc, dr int) {
	cols := m.dash.Store.Grid().Columns
	next := grid.Cell{Col: m.cursor.Col + dc, Row: m.cursor.Row + dr}
	if next.Col < 0 || next.Col >= cols || next.Row < 0 || next.Row >= grid.DefaultVisibleRows {
		return
	}
	m.cursor = next
	ctrl := m.dash.Controller
	if ctrl.Editing() {
		ctrl.HoverCell(next)
	}
}

func (m *dashboardModel) tileAtCursor() (string, bool) {
	occ := grid.OccupantAt(m.cursor, m.dash.Store.Occupants())
	if occ == nil {
		return "", false
	}
	return occ.OccupantID(), true
}

func (m *dashboardModel) copyLayout() {
	var buf bytes.Buffer
	if err := io.WriteJSON(m.dash.Store, &buf); err != nil {
		m.setError(err)
		return
	}
	if err := clipboard.WriteAll(buf.String()); err != nil {
		m.setError(fmt.Errorf("copy layout: %w", err))
		return
	}
	m.setMessage("Copied layout JSON to clipboard")
}

func (m *dashboardModel) resizeBoard() {
	cols := m.dash.Store.Grid().Columns
	rows := max(grid.Extent(m.dash.Store.Occupants()), 1)
	m.board.CellWidth = max(render.MinCellWidth, m.width/cols)
	m.board.CellHeight = max(render.MinCellHeight, min(8, (m.height-chrome)/rows))
}

func (m *dashboardModel) setMessage(format string, args ...any) {
	m.message = fmt.Sprintf(format, args...)
	m.messageErr = false
}

func (m *dashboardModel) setError(err error) {
	m.message = errors.UserMessage(err)
	m.messageErr = true
}

func (m *dashboardModel) clearMessage() { m.message = "" }

// =============================================================================
// View
// =============================================================================

func (m *dashboardModel) View() string {
	var b strings.Builder
	view := m.dash.Controller.Snapshot()

	b.WriteString(m.header(view))
	b.WriteString("\n\n")

	ov := render.Overlay{Editing: view.Editing, Dragged: view.Dragged, Target: view.Over, TargetValid: view.Valid}
	if view.Editing {
		cursor := m.cursor
		ov.Cursor = &cursor
	}
	b.WriteString(m.board.Render(m.dash.Store.Tiles(), view.Columns, ov))
	b.WriteString("\n")

	if view.Draft != nil {
		b.WriteString(m.draftLine(*view.Draft))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(tuiHelpStyle.Render(m.help(view)))
	return b.String()
}

func (m *dashboardModel) header(view session.View) string {
	parts := []string{tuiTitleStyle.Render("Web Vitals Dashboard")}
	if view.Editing {
		parts = append(parts, tuiEditBadge.Render("EDIT"))
	}

	var ranges []string
	for _, tr := range vitals.TimeRanges {
		if tr == m.dash.TimeRange {
			ranges = append(ranges, tuiRangeActive.Render(string(tr)))
		} else {
			ranges = append(ranges, tuiRangeStyle.Render(string(tr)))
		}
	}
	parts = append(parts, strings.Join(ranges, ""))

	if m.dash.Loading {
		parts = append(parts, StyleDim.Render("loading..."))
	} else if !m.dash.LastUpdate.IsZero() {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%s · %s", m.dash.Source, m.dash.LastUpdate.Format("15:04:05"))))
	}
	return strings.Join(parts, "  ")
}

func (m *dashboardModel) draftLine(d session.Draft) string {
	w, h := strconv.Itoa(d.Size.Width), strconv.Itoa(d.Size.Height)
	if m.field == session.FieldWidth {
		w = tuiDraftFocus.Render(w)
	} else {
		h = tuiDraftFocus.Render(h)
	}
	return tuiDraftStyle.Render(fmt.Sprintf("Resize %s  width %s  height %s", d.TileID, w, h))
}

func (m *dashboardModel) statusLine() string {
	var parts []string
	if m.dash.FeedConnected {
		live := tuiLiveIndicator.Render("● live")
		if r := m.dash.LastRecord; r != nil {
			live += StyleDim.Render(fmt.Sprintf("  LCP %.0fms  FID %.0fms  CLS %.3f  %s",
				r.Data.LCP, r.Data.FID, r.Data.CLS, r.Datetime.Local().Format(time.TimeOnly)))
		}
		parts = append(parts, live)
	} else if m.dash.FeedError != "" {
		parts = append(parts, StyleError.Render("feed: "+m.dash.FeedError))
	}
	if m.dash.FetchError != "" && m.message != m.dash.FetchError {
		parts = append(parts, StyleError.Render(m.dash.FetchError))
	}
	if m.message != "" {
		if m.messageErr {
			parts = append(parts, StyleError.Render(m.message))
		} else {
			parts = append(parts, StyleSuccess.Render(m.message))
		}
	}
	return strings.Join(parts, "   ")
}

func (m *dashboardModel) help(view session.View) string {
	switch view.Mode {
	case "dragging":
		return "←↑↓→ move  space drop  esc cancel  q quit"
	case "resize_editing":
		return "w/h field  +/- or 1-9 size  enter save  esc cancel  q quit"
	case "edit":
		return "←↑↓→ move  space drag  r resize  a add  e done  y copy  q quit"
	}
	return "e edit  t range  ctrl+r refresh  f live  y copy  q quit"
}
