package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleRules = `
rules:
  - name: ping
    equals: ["ping"]
    reply: pong
  - name: thanks
    contains: ["thank"]
    reply: "You're welcome!"
  - name: weather
    pattern: "^(what's|what is) the weather"
    reply: I can't see outside.
`

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]byte(sampleRules))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}
	if rules[0].Name != "ping" {
		t.Errorf("rules[0].Name = %q", rules[0].Name)
	}
	if rules[2].re == nil {
		t.Error("pattern rule was not compiled")
	}
}

func TestParseRulesInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "rules: [", "invalid rules file"},
		{"missing reply", "rules:\n  - equals: [hi]\n", "reply is required"},
		{"missing matcher", "rules:\n  - name: lonely\n    reply: hi\n", "needs equals, contains or pattern"},
		{"bad pattern", "rules:\n  - pattern: \"(\"\n    reply: hi\n", "invalid pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestRulesResponder(t *testing.T) {
	rules, err := ParseRules([]byte(sampleRules))
	if err != nil {
		t.Fatalf("ParseRules() error = %v", err)
	}
	rr := RulesResponder{Rules: rules}

	tests := []struct {
		text    string
		reply   string
		handled bool
	}{
		{"ping", "pong", true},
		{"  PING ", "pong", true},
		{"ping me", "", false},
		{"Thanks a lot", "You're welcome!", true},
		{"What is the weather like?", "I can't see outside.", true},
		{"is the weather nice", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			reply, handled, err := rr.Respond(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Respond() error = %v", err)
			}
			if handled != tt.handled || reply != tt.reply {
				t.Errorf("Respond() = %q, %v; want %q, %v", reply, handled, tt.reply, tt.handled)
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(sampleRules), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules) != 3 {
		t.Errorf("got %d rules, want 3", len(rules))
	}

	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
