// Package conversation holds the chat session state and its transitions.
// The container is deliberately dumb: no goroutines, no timers, no I/O.
// Callers drive it from a single event loop and every mutation goes through
// a named method, which keeps the message lifecycle auditable.
package conversation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Status tracks delivery of a user message. Assistant messages stay at
// StatusSent from birth.
type Status string

const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// Kind discriminates the Content variant.
type Kind int

const (
	PlainText Kind = iota
	RichText
)

// Content is a message body. RichText carries a download affordance built
// from known-safe url and name fields; upstream text never becomes markup.
type Content struct {
	Kind     Kind
	Body     string
	LinkURL  string
	LinkName string
}

// Plain wraps a plain-text body.
func Plain(body string) Content {
	return Content{Kind: PlainText, Body: body}
}

// Message is one entry in the transcript.
type Message struct {
	ID        string
	Content   Content
	Sender    Sender
	Timestamp time.Time
	Status    Status
}

// View names the visible screen.
type View int

const (
	ViewLanding View = iota
	ViewChat
)

// PendingIdentifiers is a stashed draft waiting on the identifier dialog.
type PendingIdentifiers struct {
	CompanyID string
	UserID    string
	Text      string
}

const welcomeText = "Welcome to AI Advisory! I'm here to provide comprehensive business insights and analysis. To get started, I'll need your Company ID and User ID. You can include them in your message, or I'll help you add them when needed."

// State is the whole conversation session.
type State struct {
	Messages []Message
	View     View
	Busy     bool
	Typing   bool
	Pending  *PendingIdentifiers

	now   func() time.Time
	newID func() string
}

// NewState returns an empty session on the landing view.
func NewState() *State {
	return &State{
		View:  ViewLanding,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// EnterChat switches to the chat view, seeding the welcome message the
// first time only.
func (s *State) EnterChat() {
	s.View = ViewChat
	if len(s.Messages) == 0 {
		s.Messages = append(s.Messages, Message{
			ID:        s.newID(),
			Content:   Plain(welcomeText),
			Sender:    SenderAssistant,
			Timestamp: s.now(),
			Status:    StatusSent,
		})
	}
}

// EnterLanding returns to the landing view. The transcript is kept.
func (s *State) EnterLanding() {
	s.View = ViewLanding
}

// AppendUser adds a user message in the sending state and returns its ID.
func (s *State) AppendUser(text string) string {
	id := s.newID()
	s.Messages = append(s.Messages, Message{
		ID:        id,
		Content:   Plain(text),
		Sender:    SenderUser,
		Timestamp: s.now(),
		Status:    StatusSending,
	})
	return id
}

// MarkSent moves a sending message to sent. Any other current status is
// left alone so a settled error is never overwritten.
func (s *State) MarkSent(id string) {
	if m := s.find(id); m != nil && m.Status == StatusSending {
		m.Status = StatusSent
	}
}

// MarkError moves a sending or sent message to error. Errors are final.
func (s *State) MarkError(id string) {
	if m := s.find(id); m != nil && (m.Status == StatusSending || m.Status == StatusSent) {
		m.Status = StatusError
	}
}

// AppendAssistant adds an assistant message and returns its ID.
func (s *State) AppendAssistant(content Content) string {
	id := s.newID()
	s.Messages = append(s.Messages, Message{
		ID:        id,
		Content:   content,
		Sender:    SenderAssistant,
		Timestamp: s.now(),
		Status:    StatusSent,
	})
	return id
}

// BeginRequest flags an in-flight analysis. Send is disabled and the
// typing indicator shows until EndRequest.
func (s *State) BeginRequest() {
	s.Busy = true
	s.Typing = true
}

// EndRequest clears the in-flight flags regardless of outcome.
func (s *State) EndRequest() {
	s.Busy = false
	s.Typing = false
}

// StashPending parks a draft that is missing identifiers and opens the
// dialog. Already-extracted IDs prefill the dialog fields.
func (s *State) StashPending(text, companyID, userID string) {
	s.Pending = &PendingIdentifiers{
		CompanyID: companyID,
		UserID:    userID,
		Text:      text,
	}
}

// DialogOpen reports whether the identifier dialog should be showing.
func (s *State) DialogOpen() bool {
	return s.Pending != nil
}

// SubmitPending merges the supplied identifiers into the stashed draft and
// clears it. ok is false when there is no draft to merge.
func (s *State) SubmitPending(companyID, userID string) (string, bool) {
	if s.Pending == nil {
		return "", false
	}
	merged := fmt.Sprintf("%s\n\nCompany ID: %s\nUser ID: %s", s.Pending.Text, companyID, userID)
	s.Pending = nil
	return merged, true
}

// CancelPending discards the stashed draft.
func (s *State) CancelPending() {
	s.Pending = nil
}

func (s *State) find(id string) *Message {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}
