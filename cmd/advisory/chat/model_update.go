package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"advisory/internal/conversation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressTickMsg:
		if msg.seq != m.requestSeq {
			// A settled request's tick; its timer is already orphaned.
			return m, nil
		}
		snap, ok := m.timeline.At(time.Since(m.progressStart))
		if !ok {
			// Timeline exhausted; hide the panel and stop ticking. The
			// request itself keeps running.
			m.snap = nil
			return m, nil
		}
		m.snap = &snap
		return m, m.progressTick(msg.seq)

	case analysisDoneMsg:
		if msg.seq != m.requestSeq {
			return m, nil
		}
		m.stopProgress()
		m.convo.EndRequest()
		m.convo.AppendAssistant(conversation.ComposeReply(msg.res))
		m.refreshViewport()
		return m, m.setNotice(noticeSuccess,
			"Analysis Complete",
			"Your AI advisory report has been generated successfully.")

	case analysisFailedMsg:
		if msg.seq != m.requestSeq {
			return m, nil
		}
		m.stopProgress()
		m.convo.EndRequest()
		m.convo.MarkError(msg.userMsgID)
		m.convo.AppendAssistant(conversation.ApologyReply())
		m.refreshViewport()
		return m, m.setNotice(noticeError,
			"Error",
			"Failed to process your request. Please try again.")

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil
	}

	return m, nil
}

func (m Model) resize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chatWidth := msg.Width - 4
	if chatWidth < 20 {
		chatWidth = 20
	}
	vpHeight := msg.Height - 14
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.viewport.Width = chatWidth
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(chatWidth)
	m.progressBar.Width = chatWidth - 8

	// Re-wrap rendered markdown to the new width.
	if m.renderer != nil {
		if m.styles.Theme.IsDark {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(chatWidth-4),
			)
		} else {
			m.renderer, _ = glamour.NewTermRenderer(
				glamour.WithStylePath("light"),
				glamour.WithWordWrap(chatWidth-4),
			)
		}
	}

	m.ready = true
	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.convo.View == conversation.ViewLanding {
		switch msg.String() {
		case "enter", "s":
			m.convo.EnterChat()
			m.refreshViewport()
			return m, textarea.Blink
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.convo.DialogOpen() {
		return m.handleDialogKey(msg)
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.convo.EnterLanding()
		return m, nil

	case tea.KeyEnter:
		if msg.Alt {
			break // let the textarea insert a newline
		}
		return m.handleSend()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.dialogFocus = (m.dialogFocus + 1) % 2
		if m.dialogFocus == fieldCompany {
			m.companyInput.Focus()
			m.userInput.Blur()
		} else {
			m.userInput.Focus()
			m.companyInput.Blur()
		}
		return m, nil

	case tea.KeyEnter:
		return m.submitDialog()

	case tea.KeyEsc:
		return m.cancelDialog()
	}

	var cmd tea.Cmd
	if m.dialogFocus == fieldCompany {
		m.companyInput, cmd = m.companyInput.Update(msg)
	} else {
		m.userInput, cmd = m.userInput.Update(msg)
	}
	return m, cmd
}

// stopProgress orphans any scheduled tick and hides the panel.
func (m *Model) stopProgress() {
	m.requestSeq++
	m.snap = nil
}

func (m *Model) setNotice(level noticeLevel, title, body string) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = &notice{title: title, body: body, level: level}
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
