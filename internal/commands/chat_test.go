package commands

import (
	"errors"
	"testing"

	"github.com/diogo/agui/internal/chat"
	"github.com/diogo/agui/internal/models"
	"github.com/diogo/agui/internal/render"
)

func TestChatCommand(t *testing.T) {
	cmd := newChatCmd(NewDependencies(), &globalFlags{})
	if cmd.Use != "chat" {
		t.Errorf("Expected use 'chat', got %s", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("descriptions should not be empty")
	}
	if err := cmd.Args(cmd, []string{"extra"}); err == nil {
		t.Error("chat should reject arguments")
	}
}

func TestChatCommand_StartsSession(t *testing.T) {
	env := newTestEnv(t, "hi!")
	env.cfg.Greeting = "Welcome back"
	env.cfg.Markdown.Style = render.ThemeLight

	if err := env.run("chat"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if env.tui.calls != 1 {
		t.Fatalf("expected the TUI to run once, got %d", env.tui.calls)
	}

	msgs := env.tui.controller.Store().Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected only the greeting, got %d messages", len(msgs))
	}
	if msgs[0].Sender != models.SenderAssistant || msgs[0].Text != "Welcome back" {
		t.Errorf("unexpected greeting %+v", msgs[0])
	}
	if env.tui.controller.State() != chat.StateIdle {
		t.Errorf("expected idle controller, got %s", env.tui.controller.State())
	}

	if env.tui.opts.Endpoint != models.DefaultEndpoint {
		t.Errorf("expected endpoint %s, got %s", models.DefaultEndpoint, env.tui.opts.Endpoint)
	}
	if env.tui.opts.Render.Style != render.ThemeLight {
		t.Errorf("expected render style from config, got %s", env.tui.opts.Render.Style)
	}
	if env.tui.opts.Clipboard == nil || env.tui.opts.Now == nil {
		t.Error("clipboard and clock should be passed through")
	}
	if !env.client.CloseCalled() {
		t.Error("client should be closed when the chat ends")
	}
}

func TestChatCommand_AppliesTheme(t *testing.T) {
	defer render.SetTUITheme(render.DefaultTUITheme)

	env := newTestEnv(t, "hi!")
	env.cfg.TUITheme = "nord"
	if err := env.run("chat"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := render.GetTUITheme().Name; got != "nord" {
		t.Errorf("expected nord theme, got %s", got)
	}
}

func TestChatCommand_UnknownThemeKeepsCurrent(t *testing.T) {
	defer render.SetTUITheme(render.DefaultTUITheme)
	render.SetTUITheme(render.DefaultTUITheme)

	env := newTestEnv(t, "hi!")
	env.cfg.TUITheme = "does-not-exist"
	if err := env.run("chat"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := render.GetTUITheme().Name; got != render.DefaultTUITheme {
		t.Errorf("expected default theme, got %s", got)
	}
}

func TestChatCommand_TUIError(t *testing.T) {
	env := newTestEnv(t, "hi!")
	env.tui.err = errors.New("no tty")
	if err := env.run("chat"); err == nil {
		t.Fatal("expected TUI error to propagate")
	}
}
