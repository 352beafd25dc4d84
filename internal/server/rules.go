package server

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is a canned reply. A rule matches when the message equals one of
// Equals, contains one of Contains, or matches Pattern (case-insensitive).
type Rule struct {
	Name     string   `yaml:"name,omitempty"`
	Equals   []string `yaml:"equals,omitempty"`
	Contains []string `yaml:"contains,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Reply    string   `yaml:"reply"`

	re *regexp.Regexp
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// ParseRules decodes and validates a YAML rules document
func ParseRules(data []byte) ([]Rule, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid rules file: %w", err)
	}

	for i := range file.Rules {
		r := &file.Rules[i]
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if strings.TrimSpace(r.Reply) == "" {
			return nil, fmt.Errorf("rule %s: reply is required", label)
		}
		if len(r.Equals) == 0 && len(r.Contains) == 0 && r.Pattern == "" {
			return nil, fmt.Errorf("rule %s: needs equals, contains or pattern", label)
		}
		if r.Pattern != "" {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %s: invalid pattern: %w", label, err)
			}
			r.re = re
		}
	}
	return file.Rules, nil
}

// LoadRules reads a YAML rules file from path
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return ParseRules(data)
}

func (r Rule) matches(lowered string) bool {
	for _, s := range r.Equals {
		if lowered == strings.ToLower(strings.TrimSpace(s)) {
			return true
		}
	}
	for _, s := range r.Contains {
		if s != "" && strings.Contains(lowered, strings.ToLower(s)) {
			return true
		}
	}
	return r.re != nil && r.re.MatchString(lowered)
}

// RulesResponder replies with the first matching rule
type RulesResponder struct {
	Rules []Rule
}

func (RulesResponder) Name() string { return "rules" }

func (rr RulesResponder) Respond(_ context.Context, text string) (string, bool, error) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	for _, r := range rr.Rules {
		if r.matches(lowered) {
			return r.Reply, true, nil
		}
	}
	return "", false, nil
}
