// Package dialog is the interactive polish dialog: a viewport that tracks
// the accumulated text of the current session, with apply, regenerate, and
// cancel bound to keys.
package dialog

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/textpolish/textpolish/internal/polish"
)

// Messages delivered from controller hooks.
type textMsg string
type statusMsg polish.Status
type errMsg struct{ err error }

type keyMap struct {
	Apply      key.Binding
	Regenerate key.Binding
	Close      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Apply: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter", "apply"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "regenerate"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

type Model struct {
	ctrl    *polish.Controller
	cfg     polish.SessionConfig
	content string

	updates  chan tea.Msg
	viewport viewport.Model
	spinner  spinner.Model
	keys     keyMap
	styles   Styles

	status  polish.Status
	err     error
	applied bool
	result  string
	ready   bool
	width   int
	height  int
}

func New(transport polish.Transport, cfg polish.SessionConfig, content string) *Model {
	m := &Model{
		cfg:     cfg,
		content: content,
		updates: make(chan tea.Msg, 256),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:    defaultKeyMap(),
		styles:  DefaultStyles(),
		status:  polish.StatusIdle,
	}
	m.ctrl = polish.NewController(transport, polish.Hooks{
		OnText:   func(s string) { m.push(textMsg(s)) },
		OnStatus: func(s polish.Status) { m.push(statusMsg(s)) },
		OnError:  func(err error) { m.push(errMsg{err}) },
	})
	return m
}

// Controller exposes the underlying session controller, mainly so callers
// can attach a logger before running the program.
func (m *Model) Controller() *polish.Controller {
	return m.ctrl
}

// Applied reports whether the user accepted the polished text.
func (m *Model) Applied() bool { return m.applied }

// Result is the snapshot taken when the user applied.
func (m *Model) Result() string { return m.result }

// push delivers a hook message without ever blocking. Hooks run under the
// controller lock; blocking here could deadlock against Update calling back
// into the controller. Text snapshots are cumulative and statuses are
// re-pushed on change, so dropping the oldest entry is safe.
func (m *Model) push(msg tea.Msg) {
	select {
	case m.updates <- msg:
	default:
		select {
		case <-m.updates:
		default:
		}
		select {
		case m.updates <- msg:
		default:
		}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg { return <-m.updates }
}

func (m *Model) startSession() tea.Cmd {
	return func() tea.Msg {
		if err := m.ctrl.Start(context.Background(), m.content, m.cfg); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startSession(), m.waitForUpdate())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 1
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Close):
			m.ctrl.Cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Apply):
			if m.status == polish.StatusCompleted {
				m.applied = true
				m.result = m.ctrl.Snapshot()
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, m.keys.Regenerate):
			m.err = nil
			return m, m.startSession()
		}

	case textMsg:
		if m.ready {
			m.viewport.SetContent(string(msg))
			m.viewport.GotoBottom()
		}
		return m, m.waitForUpdate()

	case statusMsg:
		m.status = polish.Status(msg)
		return m, m.waitForUpdate()

	case errMsg:
		m.err = msg.err
		return m, m.waitForUpdate()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	if !m.ready {
		return "\n  initializing..."
	}

	header := m.styles.Title.Render("polish") + " " +
		m.styles.Status.Render(fmt.Sprintf("%s:%s  %s", m.cfg.Provider, m.cfg.Model, m.statusLine()))

	footer := m.styles.Help.Render("enter apply • r regenerate • esc cancel")
	if m.err != nil {
		footer = m.styles.Error.Render("error: " + m.err.Error())
	}

	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m *Model) statusLine() string {
	switch m.status {
	case polish.StatusRequesting:
		return m.spinner.View() + " waiting for response"
	case polish.StatusStreaming:
		return m.spinner.View() + " streaming"
	default:
		return m.status.String()
	}
}
