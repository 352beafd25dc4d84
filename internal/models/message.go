package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether s is a known sender
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Message is a single entry of the chat log.
// Text is empty while Pending is true.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text,omitempty"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	Pending   bool      `json:"pending,omitempty"`
}

// NewUserMessage creates a user message stamped with now
func NewUserMessage(text string, now time.Time) Message {
	return newMessage(SenderUser, text, now)
}

// NewAssistantMessage creates a resolved assistant message stamped with now
func NewAssistantMessage(text string, now time.Time) Message {
	return newMessage(SenderAssistant, text, now)
}

// NewPendingMessage creates the placeholder shown while a reply is outstanding
func NewPendingMessage(now time.Time) Message {
	msg := newMessage(SenderAssistant, "", now)
	msg.Pending = true
	return msg
}

// NewGreeting creates the assistant greeting that opens every session
func NewGreeting(text string, now time.Time) Message {
	if text == "" {
		text = DefaultGreeting
	}
	return NewAssistantMessage(text, now)
}

func newMessage(sender Sender, text string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: FormatTimestamp(now),
		CreatedAt: now,
	}
}

// FormatTimestamp renders t as a local hour:minute display string
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// IsUser reports whether the message was authored by the user
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}
