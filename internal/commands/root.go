// Package commands provides CLI commands for agui.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/agui/internal/config"
	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/tui"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	endpoint string
	debug    bool
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	global := &globalFlags{}
	ask := &askFlags{}

	cmd := &cobra.Command{
		Use:   "agui [prompt]",
		Short: "Terminal chat client for an AG-UI query backend",
		Long: `agui is a terminal chat client. Every message is posted to a query
endpoint as {"message": ...} and the {"response": ...} it answers with is
shown as the assistant's reply.

Examples:
  agui                                  Start interactive chat
  agui "What is Go?"                    Send a single query
  agui -f prompt.md                     Read prompt from file
  cat prompt.md | agui                  Read prompt from stdin
  agui "Hello" -o response.md           Save response to file
  agui serve                            Run a local backend on :8000
  agui config set endpoint http://host:8000/query`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "agui %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if ask.file != "" {
				data, err := os.ReadFile(ask.file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runAskCommand(cmd, deps, global, ask, string(data))
			}

			if len(args) > 0 {
				return runAskCommand(cmd, deps, global, ask, args[0])
			}

			piped, ok, err := readPiped(deps.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			if ok {
				return runAskCommand(cmd, deps, global, ask, piped)
			}

			return runChatCommand(deps, global)
		},
	}

	cmd.PersistentFlags().StringVar(&global.endpoint, "endpoint", "", "Query endpoint URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&global.debug, "debug", false, "Enable debug logging")
	bindAskFlags(cmd, ask)
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.AddCommand(newChatCmd(deps, global))
	cmd.AddCommand(newAskCmd(deps, global))
	cmd.AddCommand(newServeCmd(deps, global))
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes a styled error with any structured context it carries
func printError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, tui.FormatError(err))
}

// loadConfig reads the config and applies flag overrides on top
func loadConfig(deps *Dependencies, global *globalFlags) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v (using defaults)\n", err)
	}

	if global != nil {
		if global.endpoint != "" {
			cfg.Endpoint = global.endpoint
		}
		if global.debug {
			cfg.Debug = true
		}
	}

	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// initFileLogger routes logs to the configured file. Failure to open it
// only costs the logs, so it is reported and otherwise ignored.
func initFileLogger(deps *Dependencies, cfg config.Config) {
	logger.SetDebug(cfg.Debug)
	path, err := config.GetLogPath(cfg)
	if err != nil {
		return
	}
	if err := logger.Init(path); err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v\n", err)
	}
}

// readPiped returns stdin content when it is redirected and not blank
func readPiped(r io.Reader) (string, bool, error) {
	if r == nil {
		return "", false, nil
	}
	if f, ok := r.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", false, nil
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", false, nil
	}
	return string(data), true, nil
}
