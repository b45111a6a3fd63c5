package ai

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"bookingbot/models"
)

//go:embed rules.yaml
var defaultRules []byte

const (
	ruleConfidence      = 0.9
	smallTalkConfidence = 0.8
	assistantToken      = "{assistant}"
)

type rulesFile struct {
	Intents []struct {
		Intent  string   `yaml:"intent"`
		Phrases []string `yaml:"phrases"`
	} `yaml:"intents"`
	SmallTalk []struct {
		Phrases []string `yaml:"phrases"`
		Reply   string   `yaml:"reply"`
	} `yaml:"small_talk"`
}

type intentRule struct {
	intent   models.Intent
	patterns []*regexp.Regexp
}

type smallTalkRule struct {
	patterns []*regexp.Regexp
	reply    string
}

// RuleTable is the ordered, deterministic intent table.
type RuleTable struct {
	intents   []intentRule
	smallTalk []smallTalkRule
}

// LoadRules parses a YAML rule table. Unknown intent names are rejected.
func LoadRules(data []byte) (*RuleTable, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	t := &RuleTable{}
	for _, r := range f.Intents {
		intent := models.Intent(r.Intent)
		if !intent.Valid() || intent == models.IntentUnknown || intent == models.IntentSmallTalk {
			return nil, fmt.Errorf("rules: intent %q is not allowed in the intent table", r.Intent)
		}
		t.intents = append(t.intents, intentRule{intent: intent, patterns: compilePhrases(r.Phrases)})
	}
	for _, r := range f.SmallTalk {
		if r.Reply == "" {
			return nil, fmt.Errorf("rules: small talk group %v has no reply", r.Phrases)
		}
		t.smallTalk = append(t.smallTalk, smallTalkRule{patterns: compilePhrases(r.Phrases), reply: r.Reply})
	}
	return t, nil
}

// DefaultRules returns the embedded rule table.
func DefaultRules() *RuleTable {
	t, err := LoadRules(defaultRules)
	if err != nil {
		panic(err)
	}
	return t
}

func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`(^|[^a-z0-9])`+regexp.QuoteMeta(p)+`($|[^a-z0-9])`))
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Normalize lower-cases and trims an utterance.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Match returns the first intent whose phrases occur in text, falling back to
// small talk and then unknown.
func (t *RuleTable) Match(text string) (models.Intent, float64) {
	norm := Normalize(text)
	if norm == "" {
		return models.IntentUnknown, 0
	}
	for _, r := range t.intents {
		if matchAny(r.patterns, norm) {
			return r.intent, ruleConfidence
		}
	}
	if _, ok := t.SmallTalk(norm, ""); ok {
		return models.IntentSmallTalk, smallTalkConfidence
	}
	return models.IntentUnknown, 0
}

// SmallTalk returns the canned reply for a small-talk utterance.
func (t *RuleTable) SmallTalk(text, assistant string) (string, bool) {
	norm := Normalize(text)
	for _, r := range t.smallTalk {
		if matchAny(r.patterns, norm) {
			return strings.ReplaceAll(r.reply, assistantToken, assistant), true
		}
	}
	return "", false
}
