package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetOutput_LevelSwitch(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Close()

	SetDebug(false)
	Debug("hidden message")
	Info("visible message", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "key=value") {
		t.Errorf("expected info line with attributes, got: %s", out)
	}

	SetDebug(true)
	defer SetDebug(false)
	Debug("now shown")
	if !strings.Contains(buf.String(), "now shown") {
		t.Error("debug line missing after SetDebug(true)")
	}
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "agui.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Warn("disk message", "n", 3)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "disk message") {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Close()

	With("component", "chat").Info("hello")
	if !strings.Contains(buf.String(), "component=chat") {
		t.Errorf("missing attribute: %s", buf.String())
	}
}
