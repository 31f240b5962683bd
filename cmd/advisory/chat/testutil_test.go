package chat

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"advisory/internal/advisory"
	"advisory/internal/config"
)

// analyzeCall records one Analyze invocation.
type analyzeCall struct {
	Message   string
	CompanyID string
	UserID    string
}

// mockAnalyzer is a scripted Analyzer for tests.
type mockAnalyzer struct {
	mu    sync.Mutex
	res   *advisory.Result
	err   error
	calls []analyzeCall
}

func (a *mockAnalyzer) Analyze(_ context.Context, message, companyID, userID string) (*advisory.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, analyzeCall{Message: message, CompanyID: companyID, UserID: userID})
	if a.err != nil {
		return nil, a.err
	}
	return a.res, nil
}

func (a *mockAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func (a *mockAnalyzer) lastCall() analyzeCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[len(a.calls)-1]
}

// TestModelOption customizes a test model.
type TestModelOption func(*Model)

// WithAnalyzer swaps the backend client.
func WithAnalyzer(a Analyzer) TestModelOption {
	return func(m *Model) { m.client = a }
}

// WithChatView starts the model on the chat view with the welcome seeded.
func WithChatView() TestModelOption {
	return func(m *Model) { m.convo.EnterChat() }
}

// WithSize marks the model ready at the given dimensions.
func WithSize(width, height int) TestModelOption {
	return func(m *Model) {
		m.width = width
		m.height = height
		m.ready = true
	}
}

// WithStashedDraft opens the identifier dialog over a stashed draft.
func WithStashedDraft(text, companyID, userID string) TestModelOption {
	return func(m *Model) {
		m.convo.StashPending(text, companyID, userID)
		m.companyInput.SetValue(companyID)
		m.userInput.SetValue(userID)
	}
}

// NewTestModel builds a chat model wired to a no-op analyzer.
func NewTestModel(t *testing.T, opts ...TestModelOption) Model {
	t.Helper()
	m := InitChat(config.DefaultConfig(), &mockAnalyzer{res: &advisory.Result{Status: 200}})
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }
func keyEsc() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyEsc} }
func keyTab() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyTab} }
