package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/agui/internal/chat"
	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/render"
	"github.com/diogo/agui/internal/tui"
)

func newChatCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Each message is sent to the configured endpoint and the reply replaces
the loading bubble once it arrives. Type /copy to copy the last reply,
/export [file] to save the transcript, and /exit or Ctrl+C to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatCommand(deps, global)
		},
	}
}

func runChatCommand(deps *Dependencies, global *globalFlags) error {
	cfg, err := loadConfig(deps, global)
	if err != nil {
		return err
	}
	initFileLogger(deps, cfg)
	defer logger.Close()

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		logger.Warn("unknown tui theme, keeping default", "theme", cfg.TUITheme)
	}
	tui.UpdateTheme()

	client, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	controller := chat.NewSession(cfg.Greeting, client, chat.WithClock(deps.Now))
	logger.Info("chat session started", "endpoint", client.Endpoint())

	return deps.TUI.RunChat(controller, tui.Options{
		Endpoint:  client.Endpoint(),
		Render:    render.OptionsFromConfig(cfg),
		Clipboard: deps.Clipboard,
		Now:       deps.Now,
	})
}
