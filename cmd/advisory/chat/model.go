// Package chat provides the interactive TUI for the AI Advisory client.
// The package is split across files:
//   - model.go: types and construction
//   - model_update.go: the Update loop
//   - process.go: message submission and the request lifecycle
//   - view.go: rendering
package chat

import (
	"context"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"advisory/cmd/advisory/ui"
	"advisory/internal/advisory"
	"advisory/internal/config"
	"advisory/internal/conversation"
	"advisory/internal/progress"
)

// Analyzer is the backend dependency of the chat loop.
type Analyzer interface {
	Analyze(ctx context.Context, message, companyID, userID string) (*advisory.Result, error)
}

// dialogField tracks focus inside the identifier dialog.
type dialogField int

const (
	fieldCompany dialogField = iota
	fieldUser
)

// noticeLevel selects the styling of a transient notice.
type noticeLevel int

const (
	noticeSuccess noticeLevel = iota
	noticeError
)

const noticeTTL = 4 * time.Second

type notice struct {
	title string
	body  string
	level noticeLevel
}

// Messages produced by async commands.
type (
	analysisDoneMsg struct {
		userMsgID string
		res       *advisory.Result
		seq       int
	}
	analysisFailedMsg struct {
		userMsgID string
		err       error
		seq       int
	}
	progressTickMsg struct {
		seq int
	}
	noticeExpiredMsg struct {
		seq int
	}
)

// Model is the main model for the advisory chat interface.
type Model struct {
	// UI components
	textarea     textarea.Model
	viewport     viewport.Model
	spinner      spinner.Model
	progressBar  progressbar.Model
	companyInput textinput.Model
	userInput    textinput.Model
	styles       ui.Styles
	renderer     *glamour.TermRenderer

	dialogFocus dialogField

	// Session state
	convo  *conversation.State
	client Analyzer

	// Synthetic progress
	timeline      progress.Timeline
	snap          *progress.Snapshot
	progressStart time.Time
	requestSeq    int

	// Transient notice (toast analogue)
	notice    *notice
	noticeSeq int

	width  int
	height int
	ready  bool
}

// InitChat builds the chat model from configuration and a backend client.
func InitChat(cfg *config.Config, client Analyzer) Model {
	theme := ui.FromName(cfg.Theme)
	styles := ui.NewStyles(theme)

	ta := textarea.New()
	ta.Placeholder = "Describe what you need. Include your Company ID and User ID, or I'll ask for them."
	ta.Focus()
	ta.Prompt = "| "
	ta.CharLimit = 4096
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	pb := progressbar.New(progressbar.WithDefaultGradient())

	companyField := textinput.New()
	companyField.Placeholder = "e.g. acme-42"
	companyField.CharLimit = 128
	companyField.Width = 32
	companyField.Focus()

	userField := textinput.New()
	userField.Placeholder = "e.g. u-100"
	userField.CharLimit = 128
	userField.Width = 32

	var renderer *glamour.TermRenderer
	if theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	return Model{
		textarea:     ta,
		viewport:     vp,
		spinner:      sp,
		progressBar:  pb,
		companyInput: companyField,
		userInput:    userField,
		styles:       styles,
		renderer:     renderer,
		convo:        conversation.NewState(),
		client:       client,
		timeline:     progress.NewTimeline(),
	}
}

// Init starts the cursor blink and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}
