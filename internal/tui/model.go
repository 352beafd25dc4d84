package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agui/internal/chat"
	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/models"
	"github.com/diogo/agui/internal/render"
	"github.com/diogo/agui/internal/store"
)

// Animation tick message
type animationTickMsg time.Time

// replyMsg carries a settled query back onto the event loop
type replyMsg struct {
	req     *chat.Request
	outcome chat.Outcome
}

// Options configures the chat interface
type Options struct {
	Endpoint string
	Render   render.Options
	// Clipboard replaces the system clipboard, mainly for tests
	Clipboard func(string) error
	Now       func() time.Time
}

// storeSignal is flipped by the store observer and drained by Update
type storeSignal struct {
	mu    sync.Mutex
	dirty bool
}

func (s *storeSignal) mark() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

func (s *storeSignal) consume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	dirty := s.dirty
	s.dirty = false
	return dirty
}

// Model represents the TUI state
type Model struct {
	controller *chat.Controller
	endpoint   string
	renderer   *render.Renderer

	// UI components
	viewport viewport.Model
	textarea textarea.Model

	// State
	ready          bool
	animationFrame int
	notice         string
	err            error

	signal      *storeSignal
	unsubscribe func()

	clipboardWrite func(string) error
	now            func() time.Time

	// Dimensions
	width  int
	height int
}

// NewModel creates the chat model bound to controller's store
func NewModel(controller *chat.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	if opts.Clipboard == nil {
		opts.Clipboard = defaultClipboardWrite
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Render.Style == "" {
		opts.Render = render.DefaultOptions()
	}

	signal := &storeSignal{dirty: true}
	unsubscribe := controller.Store().Subscribe(func(store.Mutation, []models.Message) {
		signal.mark()
	})

	return Model{
		controller:     controller,
		endpoint:       opts.Endpoint,
		renderer:       render.NewRenderer(opts.Render),
		textarea:       ta,
		signal:         signal,
		unsubscribe:    unsubscribe,
		clipboardWrite: opts.Clipboard,
		now:            opts.Now,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*300, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

func (m Model) awaiting() bool {
	return m.controller.InFlight() != nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Close()
			return m, tea.Quit

		case "enter", "ctrl+s":
			if m.awaiting() {
				return m, nil
			}
			return m.submit()
		}

	case replyMsg:
		if err := m.controller.Resolve(msg.req, msg.outcome); err != nil {
			logger.Error("failed to resolve reply", "error", err)
			m.err = err
		}
		cmds = append(cmds, m.textarea.Focus())

	case animationTickMsg:
		if m.awaiting() {
			m.animationFrame++
			m.refresh(false)
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.awaiting() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.ready {
		if m.signal.consume() {
			m.refresh(true)
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit hands the input to the controller or runs an interface command
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := m.textarea.Value()

	switch sc := parseSlash(input); sc.kind {
	case slashQuit:
		m.Close()
		return m, tea.Quit
	case slashCopy:
		m.notice, m.err = m.copyLastReply()
		m.textarea.Reset()
		return m, nil
	case slashExport:
		m.notice, m.err = m.exportTranscript(sc.arg)
		m.textarea.Reset()
		return m, nil
	}

	req, err := m.controller.Submit(input)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return m, nil
	case err != nil:
		m.err = err
		return m, nil
	}

	m.notice = ""
	m.err = nil
	m.animationFrame = 0
	m.textarea.Reset()
	m.textarea.Blur()
	if m.ready && m.signal.consume() {
		m.refresh(true)
	}

	return m, tea.Batch(m.dispatch(req), animationTick())
}

// dispatch runs the query off the event loop
func (m Model) dispatch(req *chat.Request) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		return replyMsg{req: req, outcome: controller.Dispatch(context.Background(), req)}
	}
}

func (m *Model) layout() {
	headerHeight := 5 // two lines, border, margin
	inputHeight := 5  // label, two textarea lines, border
	statusHeight := 1
	chrome := 2 // message area border

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - chrome
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := m.mainWidth() - 4
	if vpWidth < 20 {
		vpWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(vpWidth - 2)
	m.refresh(true)
}

func (m Model) showSidebar() bool {
	return m.width >= minWidthSidebar
}

func (m Model) mainWidth() int {
	if m.showSidebar() {
		return m.width - sidebarWidth
	}
	return m.width
}

// refresh re-renders the message list from the store snapshot
func (m *Model) refresh(scroll bool) {
	content := renderMessageList(m.controller.Store().Messages(), m.animationFrame, m.viewport.Width, m.renderMarkdown)
	m.viewport.SetContent(content)
	if scroll {
		m.viewport.GotoBottom()
	}
}

// renderMarkdown renders assistant text for a bubble of the given width
func (m *Model) renderMarkdown(text string, width int) string {
	return m.renderer.Reply(text, width)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	count := m.controller.Store().Len()
	width := m.mainWidth()

	sections := []string{
		renderHeader(count, m.endpoint, width-2),
		messagesAreaStyle.Width(width - 2).Height(m.viewport.Height).Render(m.viewport.View()),
		m.renderInput(width - 2),
		renderStatusBar(width),
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	main := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if !m.showSidebar() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderSidebar(count, m.height), main)
}

func (m Model) renderInput(width int) string {
	var content string
	if m.awaiting() {
		content = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			inputDisabledStyle.Render("Waiting for the assistant to reply..."),
		)
	} else {
		content = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	return inputPanelStyle.Width(width).Render(content)
}

// Close detaches the model from the store
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// RunChat starts the chat TUI
func RunChat(controller *chat.Controller, opts Options) error {
	m := NewModel(controller, opts)
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
