package render

import "strings"

// Markdown style names accepted in the markdown.style config key
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeTokyoNight = "tokyonight"
	ThemeCatppuccin = "catppuccin"
	ThemeDracula    = "dracula"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// styleAliases maps our theme names onto glamour's standard styles.
// Catppuccin has no glamour style and falls back to dark.
var styleAliases = map[string]string{
	ThemeDark:       "dark",
	ThemeLight:      "light",
	ThemeTokyoNight: "tokyo-night",
	"tokyo-night":   "tokyo-night",
	ThemeCatppuccin: "dark",
	ThemeDracula:    "dracula",
	ThemeNoTTY:      "notty",
	ThemeASCII:      "ascii",
	"pink":          "pink",
	"auto":          "auto",
}

// ResolveStyle returns the glamour style name or file path for style.
// Anything that is not a known name is treated as a path to a JSON theme.
func ResolveStyle(style string) string {
	if style == "" {
		return styleAliases[ThemeDark]
	}
	if resolved, ok := styleAliases[strings.ToLower(style)]; ok {
		return resolved
	}
	return style
}

// IsBuiltinStyle returns true if style names a built-in theme rather than a file
func IsBuiltinStyle(style string) bool {
	_, ok := styleAliases[strings.ToLower(style)]
	return ok
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes lists the markdown themes shown by `agui config show`
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeCatppuccin, Description: "Catppuccin (rendered with the dark palette)"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
