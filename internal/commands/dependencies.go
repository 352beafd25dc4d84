package commands

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"

	"github.com/diogo/agui/internal/api"
	"github.com/diogo/agui/internal/chat"
	"github.com/diogo/agui/internal/config"
	"github.com/diogo/agui/internal/server"
	"github.com/diogo/agui/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(controller *chat.Controller, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the user configuration.
	LoadConfig func() (config.Config, error)

	// NewClient builds the query client for cfg.
	NewClient func(cfg config.Config) (api.QueryClientInterface, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Serve runs the local backend until its context ends.
	Serve func(ctx context.Context, srv *server.Server) error

	Clipboard func(string) error
	Getenv    func(string) string
	Now       func() time.Time

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(controller *chat.Controller, opts tui.Options) error {
	return tui.RunChat(controller, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig: config.LoadConfig,
		NewClient: func(cfg config.Config) (api.QueryClientInterface, error) {
			return api.NewClientFromConfig(cfg, api.WithUserAgent("agui/"+Version))
		},
		TUI:       &DefaultTUI{},
		Serve:     serveUntilSignal,
		Clipboard: clipboard.WriteAll,
		Getenv:    os.Getenv,
		Now:       time.Now,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// withDefaults fills any nil field from NewDependencies
func (d *Dependencies) withDefaults() *Dependencies {
	def := NewDependencies()
	if d == nil {
		return def
	}
	out := *d
	if out.LoadConfig == nil {
		out.LoadConfig = def.LoadConfig
	}
	if out.NewClient == nil {
		out.NewClient = def.NewClient
	}
	if out.TUI == nil {
		out.TUI = def.TUI
	}
	if out.Serve == nil {
		out.Serve = def.Serve
	}
	if out.Clipboard == nil {
		out.Clipboard = def.Clipboard
	}
	if out.Getenv == nil {
		out.Getenv = def.Getenv
	}
	if out.Now == nil {
		out.Now = def.Now
	}
	if out.Stdin == nil {
		out.Stdin = def.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = def.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = def.Stderr
	}
	return &out
}
