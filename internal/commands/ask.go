package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/agui/internal/chat"
	"github.com/diogo/agui/internal/config"
	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/render"
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// askFlags configure a one-shot query
type askFlags struct {
	output string
	file   string
	raw    bool
}

func bindAskFlags(cmd *cobra.Command, f *askFlags) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Print only the reply text")
}

func newAskCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	flags := &askFlags{}
	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single message and print the reply",
		Long: `Send a single message to the endpoint and print the reply.

The prompt is taken from the arguments, from --file, or from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if flags.file != "" {
				data, err := os.ReadFile(flags.file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				prompt = string(data)
			} else if prompt == "" {
				piped, _, err := readPiped(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				prompt = piped
			}
			return runAskCommand(cmd, deps, global, flags, prompt)
		},
	}
	bindAskFlags(cmd, flags)
	return cmd
}

func runAskCommand(cmd *cobra.Command, deps *Dependencies, global *globalFlags, flags *askFlags, prompt string) error {
	cfg, err := loadConfig(deps, global)
	if err != nil {
		return err
	}
	initFileLogger(deps, cfg)
	defer logger.Close()

	return runAsk(cmd, deps, cfg, flags, prompt)
}

// runAsk executes a single query and outputs the reply.
// With raw set only the reply text is printed, without decoration.
func runAsk(cmd *cobra.Command, deps *Dependencies, cfg config.Config, flags *askFlags, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	client, err := deps.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	controller := chat.NewSession(cfg.Greeting, client, chat.WithClock(deps.Now))

	var spin *spinner
	if !flags.raw && isTerminal(deps.Stderr) {
		spin = newSpinner(deps.Stderr, "Waiting for the assistant")
		spin.start()
	}

	started := time.Now()
	out, err := controller.Send(cmd.Context(), prompt)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}
	// A failed query still settles with the text the chat would show
	if out.Failed() {
		if spin != nil {
			spin.stopWithError()
		}
		logger.Warn("ask settled without a reply", "outcome", out.Kind.String(), "error", out.Err)
	} else if spin != nil {
		spin.stopWithSuccess("Done")
	}
	logger.Debug("ask answered", "elapsed", time.Since(started).Round(time.Millisecond))

	text := out.Text

	if flags.raw {
		if flags.output != "" {
			return writeOutput(flags.output, text)
		}
		fmt.Fprint(deps.Stdout, text)
		return nil
	}

	if cfg.CopyToClipboard && !out.Failed() {
		if err := deps.Clipboard(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(deps.Stderr, clipMsg)
		}
	}

	if flags.output != "" {
		if err := writeOutput(flags.output, text); err != nil {
			return err
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Response saved to %s", flags.output),
		)
		fmt.Fprintln(deps.Stderr, successMsg)
		return nil
	}

	fmt.Fprintln(deps.Stdout, formatReply(text, terminalWidth(deps.Stdout), render.OptionsFromConfig(cfg)))
	return nil
}

// formatReply renders text as an assistant bubble that fits width
func formatReply(text string, width int, opts render.Options) string {
	bubbleWidth := width - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	rendered := render.NewRenderer(opts).Reply(text, contentWidth)
	label := assistantLabelStyle.Render("✦ Assistant")
	return label + "\n" + assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
}

func writeOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
