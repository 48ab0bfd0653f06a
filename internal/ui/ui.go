package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/playrec/internal/services"
	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/viewstate"
)

const cardWidth = 24

// Focus is the part of the screen receiving keys.
type Focus int

const (
	InputFocus Focus = iota
	ResultsFocus
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	controller *viewstate.Controller
	auth       services.Authenticator
	logger     *log.Logger

	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	focus   Focus
	pending int
	notice  string
	err     error
	width   int
}

// NewModel creates a new TUI model over controller. auth may be nil, which hides the sign-in keys.
func NewModel(ctx context.Context, controller *viewstate.Controller, auth services.Authenticator, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	input := textinput.New()
	input.Placeholder = viewstate.InputPlaceholder
	input.Prompt = "› "
	input.CharLimit = 0
	input.SetValue(controller.Query())
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return &Model{
		ctx:        ctx,
		controller: controller,
		auth:       auth,
		logger:     logger,
		input:      input,
		spinner:    sp,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case submittedMsg:
		if m.pending > 0 {
			m.pending--
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case authMsg:
		m.err = msg.err
		switch {
		case msg.err != nil:
			m.notice = ""
		case msg.signIn:
			m.notice = "Signed in"
		default:
			m.notice = "Signed out"
		}
		return m, nil

	case feedbackMsg:
		m.err = msg.err
		if msg.err == nil {
			m.notice = fmt.Sprintf("Rated %s", msg.choice)
		}
		return m, nil
	}

	return m.updateInput(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.signIn):
		return m, m.signIn()
	case key.Matches(msg, m.keys.signOut):
		return m, m.signOut()
	}

	if m.focus == ResultsFocus {
		return m.handleResultsKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.focus) && m.controller.Phase() == viewstate.Submitted:
		m.focus = ResultsFocus
		m.input.Blur()
		return m, nil
	}

	return m.updateInput(msg)
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.focus = InputFocus
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.excellent):
		return m, m.feedback(viewstate.Excellent)
	case key.Matches(msg, m.keys.mediocre):
		return m, m.feedback(viewstate.Mediocre)
	case key.Matches(msg, m.keys.terrible):
		return m, m.feedback(viewstate.Terrible)
	case key.Matches(msg, m.keys.submit):
		return m, m.submit()
	}
	return m, nil
}

// updateInput forwards msg to the text input and pushes any change of value to the controller.
func (m *Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if after := m.input.Value(); after != before {
		m.controller.UpdateQueryText(after)
	}
	return m, cmd
}

// submit runs the controller's Submit off the update loop.
func (m *Model) submit() tea.Cmd {
	m.pending++
	m.notice = ""
	m.err = nil

	ctx, c := m.ctx, m.controller
	return tea.Batch(
		func() tea.Msg {
			c.Submit(ctx)
			return submittedMsg{}
		},
		m.spinner.Tick,
	)
}

func (m *Model) feedback(choice viewstate.FeedbackChoice) tea.Cmd {
	ctx, c := m.ctx, m.controller
	return func() tea.Msg {
		return feedbackMsg{choice: choice, err: c.SubmitFeedback(ctx, choice)}
	}
}

func (m *Model) signIn() tea.Cmd {
	if m.auth == nil || m.auth.Status() == viewstate.SignedIn {
		return nil
	}
	m.notice = "Waiting for Spotify authorization in your browser..."

	ctx, auth, logger := m.ctx, m.auth, m.logger
	return func() tea.Msg {
		err := auth.SignIn(ctx)
		if err != nil {
			logger.Error("sign in failed", "error", err)
		}
		return authMsg{signIn: true, err: err}
	}
}

func (m *Model) signOut() tea.Cmd {
	if m.auth == nil || m.auth.Status() == viewstate.SignedOut {
		return nil
	}

	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		return authMsg{signIn: false, err: auth.SignOut(ctx)}
	}
}

// View renders the controller's current view.
func (m *Model) View() string {
	v := m.controller.CurrentView()

	var b strings.Builder
	b.WriteString(m.renderHeader(v.Header))
	b.WriteString("\n\n")
	b.WriteString(v.Input.Label)
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.pending > 0 {
		b.WriteString(fmt.Sprintf("%s Fetching recommendations...", m.spinner.View()))
	} else {
		b.WriteString(styles.help.Render(fmt.Sprintf("enter: %s", v.SubmitLabel)))
	}
	b.WriteString("\n")

	if v.Results != nil {
		b.WriteString("\n")
		b.WriteString(m.renderCards(v.Results.Cards))
		b.WriteString("\n\n")
		b.WriteString(m.renderFeedback(v.Results.Feedback))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	case m.notice != "":
		b.WriteString("\n" + styles.ok.Render(m.notice) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys(v)))
	return b.String()
}

func (m *Model) renderHeader(h viewstate.Header) string {
	title := styles.title.Render(h.Title)
	control := styles.control.Render(h.Control)
	if m.width == 0 {
		return title + "  " + control
	}

	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(control), 2)
	return title + strings.Repeat(" ", gap) + control
}

// renderCards lays the cards out in as many columns as the terminal fits.
func (m *Model) renderCards(cards []viewstate.Card) string {
	perRow := 5
	if m.width > 0 {
		perRow = max(m.width/(cardWidth+4), 1)
	}

	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))

		boxes := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			lines := []string{styles.cardTitle.Render(c.Name)}
			for i, t := range c.Tracks {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, t))
			}
			boxes = append(boxes, styles.card.Render(strings.Join(lines, "\n")))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderFeedback(choices []viewstate.FeedbackChoice) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, c)
	}

	line := strings.Join(parts, "  ")
	if m.focus != ResultsFocus {
		return styles.help.Render(line)
	}
	return styles.warn.Render(line)
}

func (m *Model) helpKeys(v viewstate.View) []key.Binding {
	var keys []key.Binding
	if m.focus == ResultsFocus {
		keys = []key.Binding{m.keys.excellent, m.keys.mediocre, m.keys.terrible, m.keys.back, m.keys.quit}
	} else {
		keys = []key.Binding{m.keys.submit}
		if v.Results != nil {
			keys = append(keys, m.keys.focus)
		}
	}

	if m.auth != nil {
		if v.Header.Status == viewstate.SignedIn {
			keys = append(keys, m.keys.signOut)
		} else {
			keys = append(keys, m.keys.signIn)
		}
	}
	return append(keys, m.keys.forceQuit)
}
