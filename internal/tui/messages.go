package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agui/internal/models"
)

const (
	userLabel      = "You"
	assistantLabel = "✦ Assistant"
	loaderDots     = 3
)

// MarkdownFunc renders assistant text for a bubble of the given width
type MarkdownFunc func(text string, width int) string

// plainText is the MarkdownFunc used when no renderer is configured
func plainText(text string, _ int) string {
	return text
}

// renderMessageList maps a store snapshot to the message area contents.
// It depends only on its arguments, so the same snapshot and frame
// always produce the same output.
func renderMessageList(messages []models.Message, frame, width int, md MarkdownFunc) string {
	if md == nil {
		md = plainText
	}
	if width < 20 {
		width = 20
	}
	bubbleWidth := width * 3 / 4

	rows := make([]string, 0, len(messages))
	for _, msg := range messages {
		var row string
		switch {
		case msg.Pending:
			row = renderPendingRow(frame)
		case msg.IsUser():
			row = renderUserRow(msg, bubbleWidth)
		default:
			row = renderAssistantRow(msg, bubbleWidth, md)
		}
		align := lipgloss.Left
		if msg.IsUser() {
			align = lipgloss.Right
		}
		rows = append(rows, lipgloss.PlaceHorizontal(width, align, row))
	}

	return strings.Join(rows, "\n\n")
}

func renderUserRow(msg models.Message, maxWidth int) string {
	text := msg.Text
	if w := lipgloss.Width(text) + 2; w < maxWidth {
		maxWidth = w
	}
	label := lipgloss.JoinHorizontal(lipgloss.Top,
		timestampStyle.Render(msg.Timestamp+"  "),
		userLabelStyle.Render(userLabel),
	)
	bubble := userBubbleStyle.Width(maxWidth).Render(text)
	return lipgloss.JoinVertical(lipgloss.Right, label, bubble)
}

func renderAssistantRow(msg models.Message, maxWidth int, md MarkdownFunc) string {
	label := lipgloss.JoinHorizontal(lipgloss.Top,
		assistantLabelStyle.Render(assistantLabel),
		timestampStyle.Render("  "+msg.Timestamp),
	)
	body := md(msg.Text, maxWidth-4)
	bubble := assistantBubbleStyle.Width(maxWidth).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// renderPendingRow draws the animated placeholder for an outstanding reply
func renderPendingRow(frame int) string {
	if frame < 0 {
		frame = 0
	}
	lit := frame % (loaderDots + 1)

	var dots strings.Builder
	for i := 0; i < loaderDots; i++ {
		if i > 0 {
			dots.WriteString(" ")
		}
		if i < lit {
			color := gradientColors[(frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(color).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	label := assistantLabelStyle.Render(assistantLabel)
	return lipgloss.JoinVertical(lipgloss.Left, label, pendingBubbleStyle.Render(dots.String()))
}
