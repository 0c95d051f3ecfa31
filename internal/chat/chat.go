// Package chat holds the conversation transcript about the loaded document.
package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystem // local notices such as a failed delivery
)

// Message is one transcript entry.
type Message struct {
	ID        string
	Text      string
	Role      Role
	Timestamp time.Time
}

// IsUser reports whether the learner wrote the message.
func (m Message) IsUser() bool { return m.Role == RoleUser }

// UndeliveredNotice is appended when a turn fails.
const UndeliveredNotice = "Message could not be delivered"

// Transcript is an append-only list of messages. Entries are never edited,
// reordered or removed.
type Transcript struct {
	messages []Message
	pending  int
	now      func() time.Time
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

func (t *Transcript) append(role Role, text string) Message {
	m := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Role:      role,
		Timestamp: t.now(),
	}
	t.messages = append(t.messages, m)
	return m
}

// AddUser appends a learner message.
func (t *Transcript) AddUser(text string) Message { return t.append(RoleUser, text) }

// AddAssistant appends a reply.
func (t *Transcript) AddAssistant(text string) Message { return t.append(RoleAssistant, text) }

// AddNotice appends a local system line.
func (t *Transcript) AddNotice(text string) Message { return t.append(RoleSystem, text) }

// Messages returns a copy of the transcript in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Begin marks a turn as in flight.
func (t *Transcript) Begin() { t.pending++ }

// End marks an in-flight turn as settled.
func (t *Transcript) End() {
	if t.pending > 0 {
		t.pending--
	}
}

// Pending reports whether any turn is still waiting for the service.
func (t *Transcript) Pending() bool { return t.pending > 0 }

// Normalize trims input and reports whether anything is left to send.
func Normalize(input string) (string, bool) {
	s := strings.TrimSpace(input)
	return s, s != ""
}
