// Package transcript exports a chat session to Markdown or JSON.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/agui/internal/models"
)

// Format is the encoding of an exported transcript
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// DefaultTitle heads every exported transcript
const DefaultTitle = "New Chat"

// Options configures how a transcript is exported
type Options struct {
	Format     Format
	Title      string
	Endpoint   string
	ExportedAt time.Time
}

// DefaultOptions returns markdown export options stamped with now
func DefaultOptions(now time.Time) Options {
	return Options{
		Format:     FormatMarkdown,
		Title:      DefaultTitle,
		ExportedAt: now,
	}
}

// FormatForPath picks JSON for .json files and Markdown otherwise
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// DefaultPath returns the file name used when /export gets no argument
func DefaultPath(now time.Time) string {
	return "agui-transcript-" + now.Format("20060102-150405") + ".md"
}

// settled drops the pending placeholder, which has no text to export
func settled(messages []models.Message) []models.Message {
	out := make([]models.Message, 0, len(messages))
	for _, msg := range messages {
		if !msg.Pending {
			out = append(out, msg)
		}
	}
	return out
}

// Markdown renders messages as a Markdown document
func Markdown(messages []models.Message, opts Options) string {
	messages = settled(messages)
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	if opts.Endpoint != "" {
		sb.WriteString("**Endpoint:** ")
		sb.WriteString(opts.Endpoint)
		sb.WriteString("\n")
	}
	if !opts.ExportedAt.IsZero() {
		sb.WriteString("**Exported:** ")
		sb.WriteString(opts.ExportedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(messages)))

	for i, msg := range messages {
		role := "User"
		if msg.Sender == models.SenderAssistant {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if msg.Timestamp != "" {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp)
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	Sender    models.Sender `json:"sender"`
	Text      string        `json:"text"`
	Timestamp string        `json:"timestamp"`
	CreatedAt time.Time     `json:"created_at"`
}

type exportTranscript struct {
	Title      string          `json:"title"`
	Endpoint   string          `json:"endpoint,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []exportMessage `json:"messages"`
}

// JSON renders messages as an indented JSON document
func JSON(messages []models.Message, opts Options) ([]byte, error) {
	messages = settled(messages)
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	export := exportTranscript{
		Title:      title,
		Endpoint:   opts.Endpoint,
		ExportedAt: opts.ExportedAt,
		Messages:   make([]exportMessage, len(messages)),
	}
	for i, msg := range messages {
		export.Messages[i] = exportMessage{
			Sender:    msg.Sender,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
			CreatedAt: msg.CreatedAt,
		}
	}

	return json.MarshalIndent(export, "", "  ")
}

// Render encodes messages in the format named by opts
func Render(messages []models.Message, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return JSON(messages, opts)
	case FormatMarkdown, "":
		return []byte(Markdown(messages, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported transcript format %q", opts.Format)
	}
}

// WriteFile exports messages to path, choosing the format from its extension
func WriteFile(path string, messages []models.Message, opts Options) error {
	opts.Format = FormatForPath(path)

	data, err := Render(messages, opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
