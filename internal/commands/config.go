package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/agui/internal/config"
	"github.com/diogo/agui/internal/render"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change agui settings stored in ~/.agui/config.json.

Environment variables override the file: AGUI_ENDPOINT, AGUI_DEBUG,
AGUI_THEME and GLAMOUR_STYLE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(deps)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(deps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long:  "Change a setting. Valid keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(deps, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "themes",
		Short: "List interface and markdown themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(deps.Stdout, "Interface themes (tui_theme):")
			for _, name := range render.TUIThemeNames() {
				fmt.Fprintf(deps.Stdout, "  %s\n", name)
			}
			fmt.Fprintln(deps.Stdout, "Markdown themes (markdown.style):")
			for _, t := range render.AvailableThemes() {
				fmt.Fprintf(deps.Stdout, "  %-12s %s\n", t.Name, t.Description)
			}
			return nil
		},
	})

	return cmd
}

func showConfig(deps *Dependencies) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v (showing defaults)\n", err)
	}

	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(deps.Stdout, "%-18s %s\n", key, value)
	}
	return nil
}

func setConfig(deps *Dependencies, key, value string) error {
	switch key {
	case "tui_theme":
		if _, ok := render.GetTUIThemeByName(value); !ok {
			return fmt.Errorf("unknown tui_theme %q (valid: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
		}
	case "markdown.style":
		if !render.IsBuiltinStyle(value) {
			if _, err := os.Stat(value); err != nil {
				return fmt.Errorf("markdown.style %q is neither a theme (%s) nor a readable file",
					value, strings.Join(render.ThemeNames(), ", "))
			}
		}
	}

	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "✓ %s = %s\n", key, value)
	return nil
}
