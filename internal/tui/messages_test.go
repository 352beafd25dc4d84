package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/diogo/agui/internal/models"
)

func sampleConversation() []models.Message {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	return []models.Message{
		models.NewGreeting("", at),
		models.NewUserMessage("hello", at.Add(time.Minute)),
		models.NewPendingMessage(at.Add(time.Minute)),
	}
}

func lineContaining(out, needle string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}
	return ""
}

func TestRenderMessageList_Order(t *testing.T) {
	out := renderMessageList(sampleConversation(), 0, 80, nil)

	greeting := strings.Index(out, "How can I help")
	user := strings.Index(out, "hello")
	if greeting < 0 || user < 0 || greeting > user {
		t.Errorf("messages should render in insertion order:\n%s", out)
	}
}

func TestRenderMessageList_Alignment(t *testing.T) {
	out := renderMessageList(sampleConversation(), 0, 80, nil)

	userLine := lineContaining(out, "hello")
	if !strings.HasPrefix(userLine, "    ") {
		t.Errorf("user rows should be right-aligned, got %q", userLine)
	}

	assistantLine := lineContaining(out, assistantLabel)
	if strings.HasPrefix(assistantLine, " ") {
		t.Errorf("assistant rows should be left-aligned, got %q", assistantLine)
	}
}

func TestRenderMessageList_Timestamps(t *testing.T) {
	out := renderMessageList(sampleConversation(), 0, 80, nil)

	if !strings.Contains(out, "09:30") || !strings.Contains(out, "09:31") {
		t.Errorf("resolved rows should show their timestamps:\n%s", out)
	}
	if strings.Count(out, "09:31") != 1 {
		t.Errorf("the pending row has no timestamp:\n%s", out)
	}
}

func TestRenderMessageList_PendingLoader(t *testing.T) {
	msgs := sampleConversation()

	for frame, wantLit := range map[int]int{0: 0, 1: 1, 2: 2, 3: 3, 4: 0} {
		out := renderMessageList(msgs, frame, 80, nil)
		if got := strings.Count(out, "●"); got != wantLit {
			t.Errorf("frame %d: %d lit dots, want %d", frame, got, wantLit)
		}
		if got := strings.Count(out, "●") + strings.Count(out, "○"); got != loaderDots {
			t.Errorf("frame %d: %d dots, want %d", frame, got, loaderDots)
		}
	}
}

func TestRenderMessageList_Deterministic(t *testing.T) {
	msgs := sampleConversation()
	if renderMessageList(msgs, 2, 80, nil) != renderMessageList(msgs, 2, 80, nil) {
		t.Error("same snapshot and frame should render identically")
	}
}

func TestRenderMessageList_MarkdownOnlyForAssistant(t *testing.T) {
	var seen []string
	md := func(text string, _ int) string {
		seen = append(seen, text)
		return "<" + text + ">"
	}

	at := time.Now()
	msgs := []models.Message{
		models.NewUserMessage("**raw**", at),
		models.NewAssistantMessage("**styled**", at),
	}
	out := renderMessageList(msgs, 0, 80, md)

	if len(seen) != 1 || seen[0] != "**styled**" {
		t.Errorf("markdown should run for assistant rows only, ran for %v", seen)
	}
	if !strings.Contains(out, "**raw**") || !strings.Contains(out, "<**styled**>") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRenderMessageList_Empty(t *testing.T) {
	if out := renderMessageList(nil, 0, 80, nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestRenderHeaderAndSidebar(t *testing.T) {
	header := renderHeader(5, "http://localhost:8000/query", 70)
	if !strings.Contains(header, "5 messages exchanged") || !strings.Contains(header, "localhost:8000") {
		t.Errorf("unexpected header:\n%s", header)
	}

	sidebar := renderSidebar(5, 20)
	for _, want := range []string{"Chat History", "+ New Chat", "New Chat", "Today · 5 messages"} {
		if !strings.Contains(sidebar, want) {
			t.Errorf("sidebar should contain %q:\n%s", want, sidebar)
		}
	}
}
