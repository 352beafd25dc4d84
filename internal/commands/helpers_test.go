package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/diogo/agui/internal/api"
	"github.com/diogo/agui/internal/chat"
	"github.com/diogo/agui/internal/config"
	"github.com/diogo/agui/internal/server"
	"github.com/diogo/agui/internal/tui"
)

// fakeTUI records the chat it was asked to run
type fakeTUI struct {
	calls      int
	controller *chat.Controller
	opts       tui.Options
	err        error
}

func (f *fakeTUI) RunChat(controller *chat.Controller, opts tui.Options) error {
	f.calls++
	f.controller = controller
	f.opts = opts
	return f.err
}

type testEnv struct {
	deps      *Dependencies
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	client    *api.MockClient
	tui       *fakeTUI
	cfg       config.Config
	clientCfg config.Config
	clipboard []string
	served    *server.Server
	env       map[string]string
}

func newTestEnv(t *testing.T, reply string) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	e := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		client: api.NewMockClient(reply),
		tui:    &fakeTUI{},
		cfg:    config.DefaultConfig(),
		env:    map[string]string{},
	}
	e.deps = &Dependencies{
		LoadConfig: func() (config.Config, error) { return e.cfg, nil },
		NewClient: func(cfg config.Config) (api.QueryClientInterface, error) {
			e.clientCfg = cfg
			e.client.EndpointVal = cfg.Endpoint
			return e.client, nil
		},
		TUI: e.tui,
		Serve: func(ctx context.Context, srv *server.Server) error {
			e.served = srv
			return nil
		},
		Clipboard: func(s string) error {
			e.clipboard = append(e.clipboard, s)
			return nil
		},
		Getenv: func(key string) string { return e.env[key] },
		Now: func() time.Time {
			return time.Date(2025, 1, 2, 15, 4, 0, 0, time.Local)
		},
		Stdin:  strings.NewReader(""),
		Stdout: e.stdout,
		Stderr: e.stderr,
	}
	return e
}

// run executes a fresh root command with args
func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
