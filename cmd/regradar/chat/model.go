// Package chat provides the interactive TUI chat interface for RegRadar.
// The interface is split across two files:
//   - model.go: types, construction, Update loop (this file)
//   - view.go: rendering
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingabzpro/RegRadar/cmd/regradar/ui"
	"github.com/kingabzpro/RegRadar/internal/agent"
	"github.com/kingabzpro/RegRadar/internal/config"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
)

// Message is one entry in the chat transcript. System messages carry
// pipeline status lines and are rendered muted.
type Message struct {
	Role    string // "user", "assistant" or "system"
	Content string
	Time    time.Time
}

// Turn progress arrives from the agent as a stream of events; each is
// wrapped for the tea update loop.
type (
	turnEventMsg agent.TurnEvent
	turnClosedMsg struct{}
)

// Model is the bubbletea model for the interactive chat.
type Model struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// Transcript
	history     []Message
	streamBuf   string // assistant message being streamed
	statusLine  string
	isLoading   bool
	showDetails bool
	err         error

	width  int
	height int
	ready  bool

	// Session
	userID    string
	turnCount int

	// Last completed turn, for the collapsible detail sections
	lastResult *agent.TurnResult

	// Backend
	agent      *agent.Agent
	cfg        *config.Config
	turnEvents <-chan agent.TurnEvent
	turnCancel context.CancelFunc
}

// New builds the chat model around a ready agent.
func New(a *agent.Agent, cfg *config.Config) Model {
	styles := ui.NewStyles(ui.DetectTheme())

	ta := textarea.New()
	ta.Placeholder = "Ask about regulatory updates... (Enter to send, Esc to stop/quit)"
	ta.Focus()
	ta.Prompt = "| "
	ta.CharLimit = 4096
	ta.SetWidth(80)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(78),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(78),
		)
	}

	return Model{
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		styles:   styles,
		renderer: renderer,
		userID:   "user-" + uuid.NewString()[:8],
		agent:    a,
		cfg:      cfg,
		history: []Message{{
			Role:    "assistant",
			Content: welcomeMessage,
			Time:    time.Now(),
		}},
	}
}

const welcomeMessage = `# 🛰️ RegRadar

Your AI regulatory compliance assistant. I monitor regulatory agencies
and compile compliance reports on demand.

Try asking:
- *What are the latest SEC regulations for fintech?*
- *Scan for healthcare compliance updates in the EU*
- *Give me a summary of recent banking regulations*`

// Init starts the blink and spinner tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// waitForTurnEvent reads the next event from the running turn.
func waitForTurnEvent(events <-chan agent.TurnEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return turnClosedMsg{}
		}
		return turnEventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.stopTurn()
			return m, tea.Quit

		case tea.KeyEsc:
			// Esc stops an in-flight turn; pressed again when idle, it quits.
			if m.isLoading {
				m.stopTurn()
				m.statusLine = "Stopping..."
				return m, nil
			}
			return m, tea.Quit

		case tea.KeyCtrlR:
			m.showDetails = !m.showDetails
			m.refreshViewport()
			return m, nil

		case tea.KeyEnter:
			if msg.Alt {
				break // Alt+Enter inserts a newline
			}
			if !m.isLoading {
				return m.handleSubmit()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if !m.ready {
			m.ready = true
		}
		m.refreshViewport()

	case turnEventMsg:
		return m.handleTurnEvent(agent.TurnEvent(msg))

	case turnClosedMsg:
		m.isLoading = false
		m.statusLine = ""
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// handleSubmit starts a turn for the typed message.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	m.textarea.Reset()
	m.history = append(m.history, Message{Role: "user", Content: input, Time: time.Now()})
	m.streamBuf = ""
	m.lastResult = nil
	m.err = nil
	m.isLoading = true
	m.turnCount++

	ctx, cancel := context.WithCancel(context.Background())
	m.turnCancel = cancel
	m.turnEvents = m.agent.RunTurn(ctx, input, m.userID)

	m.refreshViewport()
	return m, tea.Batch(waitForTurnEvent(m.turnEvents), m.spinner.Tick)
}

// handleTurnEvent folds one agent event into the transcript.
func (m Model) handleTurnEvent(ev agent.TurnEvent) (tea.Model, tea.Cmd) {
	switch {
	case ev.Done:
		m.isLoading = false
		m.statusLine = ""
		if m.streamBuf != "" {
			m.history = append(m.history, Message{
				Role:    "assistant",
				Content: m.streamBuf,
				Time:    time.Now(),
			})
			m.streamBuf = ""
		}
		m.history = append(m.history, Message{
			Role:    "system",
			Content: fmt.Sprintf("Analysis complete (%ds)", int(ev.Elapsed.Seconds())),
			Time:    time.Now(),
		})
		m.stopTurn()
		m.refreshViewport()
		return m, nil

	case ev.Fragment != nil:
		if ev.Fragment.Err {
			m.err = fmt.Errorf("%s", ev.Fragment.Text)
		} else {
			m.streamBuf += ev.Fragment.Text
		}
		m.refreshViewport()
		return m, waitForTurnEvent(m.turnEvents)

	default:
		if ev.Result != nil {
			m.lastResult = ev.Result
		}
		if ev.Status != "" {
			m.statusLine = ev.Status
			m.history = append(m.history, Message{Role: "system", Content: ev.Status, Time: time.Now()})
		}
		m.refreshViewport()
		return m, waitForTurnEvent(m.turnEvents)
	}
}

// stopTurn cancels the in-flight turn context, if any.
func (m *Model) stopTurn() {
	if m.turnCancel != nil {
		m.turnCancel()
		m.turnCancel = nil
	}
}

// layout resizes the components to the terminal.
func (m *Model) layout() {
	chatWidth := m.width
	if chatWidth > 100 {
		chatWidth = 100
	}
	if chatWidth < 20 {
		chatWidth = 20
	}

	m.textarea.SetWidth(chatWidth - 4)
	m.viewport.Width = chatWidth
	vpHeight := m.height - 8
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport.Height = vpHeight

	if m.renderer != nil {
		wrap := chatWidth - 4
		if m.styles.Theme.IsDark {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(wrap),
			)
		} else {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithStylePath("light"),
				glamour.WithWordWrap(wrap),
			)
		}
	}
}
