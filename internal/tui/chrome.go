package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	sidebarWidth    = 26
	minWidthSidebar = 72
)

// renderSidebar draws the static conversation list
func renderSidebar(count, height int) string {
	inner := sidebarWidth - 3

	entry := lipgloss.JoinVertical(lipgloss.Left,
		sidebarItemStyle.Width(inner).Render("New Chat"),
		sidebarMetaStyle.Width(inner).Render(fmt.Sprintf("Today · %d messages", count)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		sidebarTitleStyle.Render("Chat History"),
		newChatButtonStyle.Width(inner).Render("+ New Chat"),
		entry,
	)

	return sidebarStyle.Width(sidebarWidth - 1).Height(max(height-2, 1)).Render(content)
}

// renderHeader draws the title bar above the message list
func renderHeader(count int, endpoint string, width int) string {
	title := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("AI Assistant ✦"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(fmt.Sprintf("%d messages exchanged", count)),
	)
	content := lipgloss.JoinVertical(lipgloss.Left, title, endpointStyle.Render(endpoint))
	return headerStyle.Width(width).Render(content)
}

// renderStatusBar renders the bottom status bar with shortcuts
func renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+S", "Send"},
		{"↑↓", "Scroll"},
		{"/copy", "Copy reply"},
		{"/export", "Save"},
		{"Esc", "Quit"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}
