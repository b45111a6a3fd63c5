package ai

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"bookingbot/models"
)

const (
	// DefaultRewriteTimeout bounds a single rewrite call.
	DefaultRewriteTimeout = 4 * time.Second

	rewriteTemperature = 0.12
	rewriteMaxTokens   = 200
)

var (
	factToken = regexp.MustCompile(`[A-Za-z0-9+\-:.]{2,}`)
	digit     = regexp.MustCompile(`\d`)
)

const rewriteSystemPrompt = "Rewrite the assistant message to match the user's tone. " +
	"Keep every number, date, time, amount, phone number, booking id and quoted word exactly as written. " +
	"Do not add facts, offers or links. No emojis. Return only the rewritten message."

// Composer adapts the tone of a reply without changing its facts.
type Composer struct {
	llm     Generator
	limiter *RateLimiter
	timeout time.Duration
	logger  *zap.Logger
}

// NewComposer wires a composer. With a nil llm Rewrite is the identity.
func NewComposer(llm Generator, limiter *RateLimiter, timeout time.Duration, logger *zap.Logger) *Composer {
	if timeout <= 0 {
		timeout = DefaultRewriteTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{llm: llm, limiter: limiter, timeout: timeout, logger: logger}
}

// Rewrite returns either core unchanged or a rewrite that keeps every
// preserved token of core and introduces no new numeric tokens.
func (c *Composer) Rewrite(ctx context.Context, core, userText string, hints models.StyleHints) string {
	if c == nil || c.llm == nil || strings.TrimSpace(core) == "" {
		return core
	}
	if !c.limiter.Allow() {
		return core
	}

	hintJSON, _ := json.Marshal(hints)
	req := GenerateRequest{
		System:          rewriteSystemPrompt,
		Prompt:          "USER: " + userText + "\nSTYLE: " + string(hintJSON) + "\nMESSAGE: " + core,
		Temperature:     rewriteTemperature,
		MaxOutputTokens: rewriteMaxTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := c.llm.Generate(ctx, req)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		c.logger.Debug("rewrite timed out", zap.Duration("timeout", c.timeout))
		return core
	case r := <-done:
		if r.err != nil {
			c.logger.Debug("rewrite failed", zap.Error(r.err))
			return core
		}
		out := strings.TrimSpace(r.text)
		if out == "" || !PreservesFacts(core, out) {
			return core
		}
		return out
	}
}

// PreservedTokens lists every token of core that a rewrite must keep
// verbatim. Sentence punctuation trailing a token is not part of it.
func PreservedTokens(core string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tok := range factToken.FindAllString(core, -1) {
		tok = trimToken(tok)
		if len(tok) < 2 || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func trimToken(tok string) string {
	return strings.TrimRight(tok, ".:")
}

// PreservesFacts reports whether out keeps every preserved token of core and
// adds no digit-bearing token that core lacks.
func PreservesFacts(core, out string) bool {
	for _, tok := range PreservedTokens(core) {
		if !strings.Contains(out, tok) {
			return false
		}
	}
	for _, tok := range factToken.FindAllString(out, -1) {
		tok = trimToken(tok)
		if digit.MatchString(tok) && !strings.Contains(core, tok) {
			return false
		}
	}
	return true
}
