// Package server hosts a local query backend speaking the same wire
// contract the chat client consumes.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoReply is returned when no responder in a chain handled the text
var ErrNoReply = errors.New("no responder produced a reply")

// Responder produces a reply for a user message. handled is false when
// the responder does not apply, letting the next one in a chain try.
type Responder interface {
	Name() string
	Respond(ctx context.Context, text string) (reply string, handled bool, err error)
}

// Chain tries each responder in order; the first that handles the text wins
type Chain []Responder

// Respond returns the first reply along with the name of the responder
func (c Chain) Respond(ctx context.Context, text string) (string, string, error) {
	for _, r := range c {
		reply, handled, err := r.Respond(ctx, text)
		if err != nil {
			return "", r.Name(), fmt.Errorf("%s: %w", r.Name(), err)
		}
		if handled {
			return reply, r.Name(), nil
		}
	}
	return "", "", ErrNoReply
}

// Names lists the responders in order
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, r := range c {
		names[i] = r.Name()
	}
	return names
}

// clockPhrases are matched against the whole lowercased message
var clockPhrases = map[string]struct{}{
	"what is the date":         {},
	"what is the current date": {},
	"give me current date":     {},
	"what is the time":         {},
	"what is the current time": {},
	"give me current time":     {},
	"current date":             {},
	"current time":             {},
}

// ClockResponder answers date and time questions locally
type ClockResponder struct {
	Now func() time.Time
}

func (ClockResponder) Name() string { return "clock" }

func (c ClockResponder) Respond(_ context.Context, text string) (string, bool, error) {
	if _, ok := clockPhrases[strings.ToLower(strings.TrimSpace(text))]; !ok {
		return "", false, nil
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return "Current date and time is: " + now().Format("2006-01-02 15:04:05"), true, nil
}

// EchoResponder repeats the message back. It always handles the text,
// so it belongs at the end of a chain.
type EchoResponder struct{}

func (EchoResponder) Name() string { return "echo" }

func (EchoResponder) Respond(_ context.Context, text string) (string, bool, error) {
	return "You said: " + text, true, nil
}
