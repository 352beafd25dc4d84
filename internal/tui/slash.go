package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/diogo/agui/internal/models"
	"github.com/diogo/agui/internal/transcript"
)

type slashKind int

const (
	slashNone slashKind = iota
	slashQuit
	slashCopy
	slashExport
)

type slashCommand struct {
	kind slashKind
	arg  string
}

// parseSlash recognizes the interface commands. Anything else, including
// unknown slash words, is an ordinary message.
func parseSlash(input string) slashCommand {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return slashCommand{}
	}

	switch strings.ToLower(fields[0]) {
	case "/exit", "/quit":
		if len(fields) == 1 {
			return slashCommand{kind: slashQuit}
		}
	case "/copy":
		if len(fields) == 1 {
			return slashCommand{kind: slashCopy}
		}
	case "/export":
		arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), fields[0]))
		return slashCommand{kind: slashExport, arg: arg}
	}
	return slashCommand{}
}

// copyLastReply puts the latest assistant reply on the clipboard
func (m *Model) copyLastReply() (string, error) {
	msg, ok := m.controller.Store().LastFrom(models.SenderAssistant)
	if !ok {
		return "", fmt.Errorf("nothing to copy yet")
	}
	if err := m.clipboardWrite(msg.Text); err != nil {
		return "", fmt.Errorf("clipboard unavailable: %w", err)
	}
	return "Copied last reply to clipboard", nil
}

// exportTranscript writes the conversation to path, or a timestamped
// markdown file in the working directory when path is empty
func (m *Model) exportTranscript(path string) (string, error) {
	now := m.now()
	if path == "" {
		path = transcript.DefaultPath(now)
	}

	opts := transcript.DefaultOptions(now)
	opts.Endpoint = m.endpoint
	if err := transcript.WriteFile(path, m.controller.Store().Messages(), opts); err != nil {
		return "", err
	}
	return "Saved transcript to " + path, nil
}

func defaultClipboardWrite(text string) error {
	return clipboard.WriteAll(text)
}
