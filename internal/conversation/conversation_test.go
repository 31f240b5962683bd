package conversation

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState() *State {
	s := NewState()
	var n int
	s.newID = func() string {
		n++
		return fmt.Sprintf("msg-%d", n)
	}
	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	return s
}

func TestEnterChatSeedsWelcomeOnce(t *testing.T) {
	t.Parallel()

	s := newTestState()
	assert.Equal(t, ViewLanding, s.View)

	s.EnterChat()
	require.Len(t, s.Messages, 1)
	assert.Equal(t, SenderAssistant, s.Messages[0].Sender)
	assert.Equal(t, StatusSent, s.Messages[0].Status)
	assert.Contains(t, s.Messages[0].Content.Body, "Welcome to AI Advisory!")

	s.EnterLanding()
	assert.Equal(t, ViewLanding, s.View)
	s.EnterChat()
	assert.Len(t, s.Messages, 1, "welcome must not be re-seeded")
}

func TestUserMessageStatusSequence(t *testing.T) {
	t.Parallel()

	s := newTestState()
	id := s.AppendUser("hello")

	require.Len(t, s.Messages, 1)
	assert.Equal(t, StatusSending, s.Messages[0].Status)

	s.MarkSent(id)
	assert.Equal(t, StatusSent, s.Messages[0].Status)

	s.MarkError(id)
	assert.Equal(t, StatusError, s.Messages[0].Status)

	s.MarkSent(id)
	assert.Equal(t, StatusError, s.Messages[0].Status, "error is final")
}

func TestMarkErrorFromSending(t *testing.T) {
	t.Parallel()

	s := newTestState()
	id := s.AppendUser("hello")
	s.MarkError(id)
	assert.Equal(t, StatusError, s.Messages[0].Status)
}

func TestMarkUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	s := newTestState()
	s.AppendUser("hello")
	s.MarkSent("nope")
	s.MarkError("nope")
	assert.Equal(t, StatusSending, s.Messages[0].Status)
}

func TestRequestFlags(t *testing.T) {
	t.Parallel()

	s := newTestState()
	s.BeginRequest()
	assert.True(t, s.Busy)
	assert.True(t, s.Typing)

	s.EndRequest()
	assert.False(t, s.Busy)
	assert.False(t, s.Typing)
}

func TestPendingLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestState()
	assert.False(t, s.DialogOpen())

	s.StashPending("analyze our market position", "acme-42", "")
	require.True(t, s.DialogOpen())
	assert.Equal(t, "acme-42", s.Pending.CompanyID)
	assert.Empty(t, s.Pending.UserID)

	merged, ok := s.SubmitPending("acme-42", "u-7")
	require.True(t, ok)
	assert.False(t, s.DialogOpen())

	want := "analyze our market position\n\nCompany ID: acme-42\nUser ID: u-7"
	assert.Equal(t, want, merged)

	_, ok = s.SubmitPending("x", "y")
	assert.False(t, ok, "nothing stashed")
}

func TestCancelPendingDiscardsDraft(t *testing.T) {
	t.Parallel()

	s := newTestState()
	s.StashPending("draft", "", "")
	s.CancelPending()
	assert.False(t, s.DialogOpen())

	_, ok := s.SubmitPending("c", "u")
	assert.False(t, ok)
}

func TestGatingAppendsNothing(t *testing.T) {
	t.Parallel()

	s := newTestState()
	s.EnterChat()
	before := len(s.Messages)
	s.StashPending("needs ids", "", "")
	assert.Len(t, s.Messages, before, "stashing must not touch the transcript")
}

func TestTranscriptOrdering(t *testing.T) {
	t.Parallel()

	s := newTestState()
	s.EnterChat()
	s.AppendUser("first")
	s.AppendAssistant(Plain("second"))

	require.Len(t, s.Messages, 3)
	for i := 1; i < len(s.Messages); i++ {
		assert.True(t, s.Messages[i].Timestamp.After(s.Messages[i-1].Timestamp) ||
			s.Messages[i].Timestamp.Equal(s.Messages[i-1].Timestamp))
	}

	seen := map[string]bool{}
	for _, m := range s.Messages {
		assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
		seen[m.ID] = true
	}
}

func TestNewStateUsesUUIDs(t *testing.T) {
	t.Parallel()

	s := NewState()
	id := s.AppendUser("x")
	assert.Len(t, strings.Split(id, "-"), 5)
}
