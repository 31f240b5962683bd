package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"advisory/internal/extract"
	"advisory/internal/progress"
)

// handleSend validates the draft and either gates it behind the identifier
// dialog or submits it.
func (m Model) handleSend() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return m, nil
	}
	if m.convo.Busy {
		return m, nil
	}

	ids := extract.Extract(text)
	if !ids.Complete() {
		m.convo.StashPending(text, ids.CompanyID, ids.UserID)
		m.textarea.Reset()

		m.companyInput.SetValue(ids.CompanyID)
		m.userInput.SetValue(ids.UserID)
		if ids.CompanyID == "" {
			m.dialogFocus = fieldCompany
			m.companyInput.Focus()
			m.userInput.Blur()
		} else {
			m.dialogFocus = fieldUser
			m.userInput.Focus()
			m.companyInput.Blur()
		}
		return m, textinput.Blink
	}

	return m.processMessage(text, ids)
}

// processMessage appends the user message and launches the analysis with
// its synthetic progress ticker.
func (m Model) processMessage(text string, ids extract.IDs) (tea.Model, tea.Cmd) {
	id := m.convo.AppendUser(text)
	m.textarea.Reset()
	m.convo.BeginRequest()

	m.requestSeq++
	seq := m.requestSeq
	m.progressStart = time.Now()
	if snap, ok := m.timeline.At(0); ok {
		m.snap = &snap
	}

	m.convo.MarkSent(id)
	m.refreshViewport()

	return m, tea.Batch(
		m.progressTick(seq),
		m.runAnalysis(id, text, ids, seq),
	)
}

// progressTick schedules the next display refresh for one request
// generation. Ticks from older generations are discarded in Update.
func (m Model) progressTick(seq int) tea.Cmd {
	return tea.Tick(progress.TickInterval, func(time.Time) tea.Msg {
		return progressTickMsg{seq: seq}
	})
}

// runAnalysis performs the backend call off the Update loop.
func (m Model) runAnalysis(userMsgID, text string, ids extract.IDs, seq int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		res, err := client.Analyze(context.Background(), text, ids.CompanyID, ids.UserID)
		if err != nil {
			return analysisFailedMsg{userMsgID: userMsgID, err: err, seq: seq}
		}
		return analysisDoneMsg{userMsgID: userMsgID, res: res, seq: seq}
	}
}

// submitDialog validates the dialog fields and resubmits the stashed draft.
func (m Model) submitDialog() (tea.Model, tea.Cmd) {
	companyID := strings.TrimSpace(m.companyInput.Value())
	userID := strings.TrimSpace(m.userInput.Value())
	if companyID == "" || userID == "" {
		return m, m.setNotice(noticeError,
			"Missing Information",
			"Please provide both Company ID and User ID.")
	}

	merged, ok := m.convo.SubmitPending(companyID, userID)
	if !ok {
		return m, nil
	}
	m.companyInput.SetValue("")
	m.userInput.SetValue("")

	return m.processMessage(merged, extract.IDs{CompanyID: companyID, UserID: userID})
}

// cancelDialog discards the stashed draft.
func (m Model) cancelDialog() (tea.Model, tea.Cmd) {
	m.convo.CancelPending()
	m.companyInput.SetValue("")
	m.userInput.SetValue("")
	return m, nil
}
