package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// BoardSnapshot is one refresh of the live board.
type BoardSnapshot struct {
	Cards     []CardView
	Allowance string
	Block     uint64
	Err       error
}

// BoardFetcher loads a snapshot. It is called from bubbletea commands, so
// calls may overlap.
type BoardFetcher func(ctx context.Context) BoardSnapshot

// BoardModel is the Bubble Tea model for the live campaign board.
type BoardModel struct {
	ctx      context.Context
	title    string
	interval time.Duration
	fetch    BoardFetcher
	perRow   int

	seq        uint64 // last dispatched fetch
	loading    bool
	snap       BoardSnapshot
	lastUpdate time.Time
	frame      int
	quitting   bool
}

type boardTickMsg time.Time
type boardSpinMsg struct{}
type boardLoadedMsg struct {
	seq  uint64
	snap BoardSnapshot
	at   time.Time
}

// NewBoard creates the board model. ctx bounds every fetch.
func NewBoard(ctx context.Context, title string, interval time.Duration, fetch BoardFetcher) BoardModel {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	// The first fetch is issued by Init, which cannot mutate the model.
	return BoardModel{ctx: ctx, title: title, interval: interval, fetch: fetch, perRow: 2, seq: 1, loading: true}
}

// RunBoard runs the board until the user quits or ctx is cancelled.
func RunBoard(m BoardModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx)).Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}

func (m BoardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(m.seq), boardTick(m.interval), boardSpin())
}

// dispatch must be called on the model that Update returns.
func (m *BoardModel) dispatch() tea.Cmd {
	m.seq++
	m.loading = true
	return m.fetchCmd(m.seq)
}

func (m BoardModel) fetchCmd(seq uint64) tea.Cmd {
	fetch, ctx := m.fetch, m.ctx
	return func() tea.Msg {
		return boardLoadedMsg{seq: seq, snap: fetch(ctx), at: time.Now()}
	}
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.dispatch()
		}

	case boardTickMsg:
		cmd := m.dispatch()
		return m, tea.Batch(cmd, boardTick(m.interval))

	case boardSpinMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, boardSpin()

	case boardLoadedMsg:
		if msg.seq != m.seq {
			// An older fetch finished after a newer one was dispatched.
			return m, nil
		}
		m.loading = false
		if msg.snap.Err != nil {
			// Keep the last good cards on screen.
			m.snap.Err = msg.snap.Err
			return m, nil
		}
		m.snap = msg.snap
		m.lastUpdate = msg.at
	}
	return m, nil
}

func (m BoardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title) + "\n")

	status := "never"
	if !m.lastUpdate.IsZero() {
		status = m.lastUpdate.Format("15:04:05")
	}
	line := fmt.Sprintf("Updated: %s", status)
	if m.snap.Block > 0 {
		line += fmt.Sprintf(" · block #%d", m.snap.Block)
	}
	if m.snap.Allowance != "" {
		line += " · allowance " + m.snap.Allowance
	}
	if m.loading {
		line = StyleChain.Render(spinnerFrames[m.frame]) + " " + line
	}
	sb.WriteString(StyleMeta.Render(line) + "\n\n")

	if m.snap.Err != nil {
		sb.WriteString(Err(trimErr(m.snap.Err.Error())) + "\n\n")
	}

	if m.loading && m.lastUpdate.IsZero() {
		sb.WriteString(StyleMeta.Render("Loading campaigns…") + "\n")
	} else {
		sb.WriteString(Cards(m.snap.Cards, m.perRow) + "\n")
	}

	sb.WriteString("\n" + StyleMeta.Render("[ r ] refresh   [ q ] quit") + "\n")
	return sb.String()
}

func boardTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return boardTickMsg(t) })
}

func boardSpin() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return boardSpinMsg{} })
}
