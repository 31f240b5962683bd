package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"advisory/internal/conversation"
	"advisory/internal/progress"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.convo.View == conversation.ViewLanding {
		return m.renderLanding()
	}

	chat := m.renderChat()
	if m.convo.DialogOpen() {
		return m.renderDialogOverlay(chat)
	}
	return chat
}

func (m Model) renderLanding() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("AI ADVISORY") + "\n")
	sb.WriteString(m.styles.Subtitle.Render("Comprehensive business insights and analysis") + "\n\n")

	sb.WriteString(m.styles.Bold.Render("What you get") + "\n")
	for _, f := range []string{
		"Market and competitive landscape analysis",
		"Strategic recommendations tailored to your company",
		"A downloadable PDF report when the analysis completes",
	} {
		sb.WriteString("  " + m.styles.Body.Render("• "+f) + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.styles.Bold.Render("Before you start") + "\n")
	sb.WriteString("  " + m.styles.Body.Render("Analyses run against your account, so both a Company ID and a User ID are required.") + "\n")
	sb.WriteString("  " + m.styles.Muted.Render("Include them in your message, or you'll be asked for them.") + "\n\n")

	sb.WriteString(m.styles.Prompt.Render("Press Enter to start chatting") + "\n")
	sb.WriteString(m.styles.Muted.Render("q to quit") + "\n")

	return m.styles.Content.Render(sb.String())
}

func (m Model) renderChat() string {
	var sb strings.Builder

	header := m.styles.Header.Render("AI Advisory")
	if m.snap != nil {
		header += " " + m.styles.Badge.Render(progress.FormatRemaining(m.snap.Remaining)+" remaining")
	}
	sb.WriteString(header + "\n\n")

	sb.WriteString(m.viewport.View() + "\n")

	if m.snap != nil {
		sb.WriteString(m.renderProgressPanel() + "\n")
	}

	if m.convo.Typing {
		sb.WriteString(m.spinner.View() + m.styles.Muted.Render(" AI Advisory is analyzing...") + "\n")
	}

	sb.WriteString(m.textarea.View() + "\n")
	sb.WriteString(m.renderFooter())

	return sb.String()
}

func (m Model) renderProgressPanel() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Info.Render(m.snap.Phase) + "\n")
	sb.WriteString(m.progressBar.ViewAs(m.snap.Percentage/100) +
		m.styles.Muted.Render(fmt.Sprintf(" %.0f%%", m.snap.Percentage)) + "\n")
	sb.WriteString(m.styles.Muted.Render("Estimated time remaining: " + progress.FormatRemaining(m.snap.Remaining)))
	return sb.String()
}

func (m Model) renderFooter() string {
	if m.notice != nil {
		style := m.styles.Success
		if m.notice.level == noticeError {
			style = m.styles.Error
		}
		return style.Render(m.notice.title) + m.styles.Muted.Render(" · "+m.notice.body)
	}
	return m.styles.Footer.Render("Enter send · Alt+Enter newline · Esc back · Ctrl+C quit")
}

func (m Model) renderDialogOverlay(background string) string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Missing Information") + "\n")
	sb.WriteString(m.styles.Body.Render("Please provide both Company ID and User ID.") + "\n\n")

	sb.WriteString(m.styles.Bold.Render("Company ID") + "\n")
	sb.WriteString(m.companyInput.View() + "\n\n")
	sb.WriteString(m.styles.Bold.Render("User ID") + "\n")
	sb.WriteString(m.userInput.View() + "\n\n")

	sb.WriteString(m.styles.Muted.Render("Tab switch · Enter submit · Esc cancel"))

	dialog := m.styles.Dialog.Render(sb.String())
	if m.width == 0 || m.height == 0 {
		return dialog
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (m Model) renderHistory() string {
	var sb strings.Builder

	for _, msg := range m.convo.Messages {
		stamp := m.styles.Muted.Render(msg.Timestamp.Format("15:04"))

		switch msg.Sender {
		case conversation.SenderUser:
			label := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1).
				Render("You")
			sb.WriteString(label + " " + stamp + " " + m.renderStatusGlyph(msg.Status) + "\n")
			sb.WriteString(m.styles.UserInput.Render(msg.Content.Body))
			sb.WriteString("\n\n")

		default:
			label := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1).
				Render("AI Advisory")
			sb.WriteString(label + " " + stamp + "\n")
			sb.WriteString(m.safeRenderMarkdown(msg.Content.Body))
			if msg.Content.Kind == conversation.RichText && msg.Content.LinkURL != "" {
				sb.WriteString("\n" + m.styles.Info.Render(msg.Content.LinkName) +
					" " + m.styles.Muted.Render(msg.Content.LinkURL))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (m Model) renderStatusGlyph(status conversation.Status) string {
	switch status {
	case conversation.StatusSending:
		return m.styles.Muted.Render("●")
	case conversation.StatusError:
		return m.styles.Error.Render("✗")
	default:
		return m.styles.Success.Render("✓")
	}
}

// safeRenderMarkdown renders markdown with panic recovery.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
