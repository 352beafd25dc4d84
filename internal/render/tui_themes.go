package render

import (
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the chat interface
type TUITheme struct {
	Name        string
	Description string

	// Base colors
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	// Message bubbles
	UserBubble      lipgloss.Color
	UserText        lipgloss.Color
	AssistantBubble lipgloss.Color

	// Text colors
	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// DefaultTUITheme is used when the configured theme is unknown
const DefaultTUITheme = "tokyonight"

var (
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - dark with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		UserBubble:      lipgloss.Color("#3d59a1"),
		UserText:        lipgloss.Color("#ffffff"),
		AssistantBubble: lipgloss.Color("#292e42"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - warm pastels",

		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Border:     lipgloss.Color("#45475a"),

		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#a6e3a1"),
		Accent:    lipgloss.Color("#cba6f7"),
		Warning:   lipgloss.Color("#f9e2af"),
		Error:     lipgloss.Color("#f38ba8"),

		UserBubble:      lipgloss.Color("#7287fd"),
		UserText:        lipgloss.Color("#11111b"),
		AssistantBubble: lipgloss.Color("#313244"),

		Text:     lipgloss.Color("#cdd6f4"),
		TextDim:  lipgloss.Color("#6c7086"),
		TextMute: lipgloss.Color("#45475a"),
	}

	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord - cool arctic tones",

		Background: lipgloss.Color("#2e3440"),
		Surface:    lipgloss.Color("#3b4252"),
		Border:     lipgloss.Color("#4c566a"),

		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Error:     lipgloss.Color("#bf616a"),

		UserBubble:      lipgloss.Color("#5e81ac"),
		UserText:        lipgloss.Color("#eceff4"),
		AssistantBubble: lipgloss.Color("#3b4252"),

		Text:     lipgloss.Color("#eceff4"),
		TextDim:  lipgloss.Color("#7b88a1"),
		TextMute: lipgloss.Color("#4c566a"),
	}

	// LightTheme mirrors the light web chat: blue user bubbles on a white page
	LightTheme = TUITheme{
		Name:        "light",
		Description: "Light - white surface with blue user bubbles",

		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#f3f4f6"),
		Border:     lipgloss.Color("#e5e7eb"),

		Primary:   lipgloss.Color("#2563eb"),
		Secondary: lipgloss.Color("#16a34a"),
		Accent:    lipgloss.Color("#7c3aed"),
		Warning:   lipgloss.Color("#d97706"),
		Error:     lipgloss.Color("#dc2626"),

		UserBubble:      lipgloss.Color("#2563eb"),
		UserText:        lipgloss.Color("#ffffff"),
		AssistantBubble: lipgloss.Color("#f3f4f6"),

		Text:     lipgloss.Color("#111827"),
		TextDim:  lipgloss.Color("#6b7280"),
		TextMute: lipgloss.Color("#9ca3af"),
	}
)

var tuiThemes = map[string]TUITheme{
	TokyoNightTheme.Name:      TokyoNightTheme,
	CatppuccinMochaTheme.Name: CatppuccinMochaTheme,
	NordTheme.Name:            NordTheme,
	LightTheme.Name:           LightTheme,
}

var (
	tuiThemeMu      sync.RWMutex
	currentTUITheme = TokyoNightTheme
)

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	tuiThemeMu.RLock()
	defer tuiThemeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	tuiThemeMu.Lock()
	currentTUITheme = theme
	tuiThemeMu.Unlock()
	return true
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	theme, ok := tuiThemes[strings.ToLower(name)]
	return theme, ok
}

// AvailableTUIThemes returns every TUI theme, default first
func AvailableTUIThemes() []TUITheme {
	names := TUIThemeNames()
	themes := make([]TUITheme, len(names))
	for i, name := range names {
		themes[i] = tuiThemes[name]
	}
	return themes
}

// TUIThemeNames returns the theme names, default first then alphabetical
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		if name != DefaultTUITheme {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{DefaultTUITheme}, names...)
}
