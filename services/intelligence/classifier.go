package ai

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"bookingbot/models"
	"bookingbot/services/slots"
)

const (
	// DefaultCacheTTL is how long an interpretation is reused for the same text.
	DefaultCacheTTL = 30 * time.Second

	interpretTemperature = 0.0
	interpretMaxTokens   = 256
	cacheSweepThreshold  = 512
)

type cacheEntry struct {
	result  models.Interpretation
	expires time.Time
}

// Classifier resolves an utterance to an intent using the rule table first
// and, for otherwise unknown input, the optional language model.
//
// Classifier is safe for concurrent use.
type Classifier struct {
	rules   *RuleTable
	llm     Generator
	limiter *RateLimiter
	schema  *jsonschema.Schema
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClassifier wires a classifier. llm may be nil, which disables the model
// path entirely.
func NewClassifier(rules *RuleTable, llm Generator, limiter *RateLimiter, ttl time.Duration, logger *zap.Logger) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		rules:   rules,
		llm:     llm,
		limiter: limiter,
		schema:  compileInterpretationSchema(),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
}

// Rules exposes the underlying table for small-talk replies.
func (c *Classifier) Rules() *RuleTable { return c.rules }

// Classify never fails: every model problem degrades to the rule result.
func (c *Classifier) Classify(ctx context.Context, text string, snap models.Snapshot) models.Interpretation {
	key := Normalize(text)
	if hit, ok := c.cached(key); ok {
		return hit
	}

	intent, conf := c.rules.Match(key)
	result := models.Interpretation{
		Intent:     intent,
		Confidence: conf,
		StyleHints: models.DefaultStyleHints,
		Source:     models.SourceRules,
	}

	if intent == models.IntentUnknown && key != "" && c.llm != nil && c.limiter.Allow() {
		if interp, err := c.interpret(ctx, text, snap); err != nil {
			c.logger.Debug("model interpretation failed, using rules", zap.Error(err))
		} else {
			result = interp
		}
	}

	c.store(key, result)
	return result
}

func (c *Classifier) interpret(ctx context.Context, text string, snap models.Snapshot) (models.Interpretation, error) {
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return models.Interpretation{}, err
	}
	raw, err := c.llm.Generate(ctx, GenerateRequest{
		System:          interpretSystemPrompt(),
		Prompt:          "SESSION: " + string(snapJSON) + "\nUSER: " + text,
		Temperature:     interpretTemperature,
		MaxOutputTokens: interpretMaxTokens,
		JSON:            true,
	})
	if err != nil {
		return models.Interpretation{}, err
	}
	return c.parseInterpretation(raw)
}

type rawInterpretation struct {
	Intent     string                     `json:"intent"`
	Confidence *float64                   `json:"confidence"`
	Slots      map[string]json.RawMessage `json:"slots"`
	StyleHints *models.StyleHints         `json:"style_hints"`
}

// parseInterpretation validates model output against the schema and maps it
// onto the closed intent set.
func (c *Classifier) parseInterpretation(raw string) (models.Interpretation, error) {
	raw = stripCodeFence(raw)
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return models.Interpretation{}, err
	}
	if err := c.schema.Validate(doc); err != nil {
		return models.Interpretation{}, err
	}

	var r rawInterpretation
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return models.Interpretation{}, err
	}

	out := models.Interpretation{
		Intent:     models.Intent(strings.ToLower(strings.TrimSpace(r.Intent))),
		Confidence: 0.5,
		StyleHints: models.DefaultStyleHints,
		Source:     models.SourceModel,
	}
	if !out.Intent.Valid() {
		out.Intent = models.IntentUnknown
	}
	if r.Confidence != nil {
		out.Confidence = *r.Confidence
	}
	if r.StyleHints != nil {
		out.StyleHints = *r.StyleHints
		if out.StyleHints.Formality == "" {
			out.StyleHints.Formality = models.DefaultStyleHints.Formality
		}
	}
	out.Slots = modelSlots(r.Slots)
	return out, nil
}

// modelSlots keeps only known slot keys. The booking id is never taken from
// the model.
func modelSlots(in map[string]json.RawMessage) models.SlotSet {
	var s models.SlotSet
	for _, key := range models.AllSlots {
		if key == models.SlotBookingID {
			continue
		}
		msg, ok := in[string(key)]
		if !ok {
			continue
		}
		if key == models.SlotAddons {
			var list []string
			if json.Unmarshal(msg, &list) == nil {
				s.Set(key, strings.Join(list, ","))
				continue
			}
		}
		var v string
		if json.Unmarshal(msg, &v) != nil {
			continue
		}
		v = strings.TrimSpace(v)
		switch key {
		case models.SlotPhone:
			v = slots.Digits(v)
		case models.SlotCountryCode:
			if d := slots.Digits(v); d != "" {
				v = "+" + d
			} else {
				v = ""
			}
		case models.SlotMode, models.SlotGenre:
			v = strings.ToLower(v)
		}
		if v != "" {
			s.Set(key, v)
		}
	}
	if s.Mode != "" && s.Mode != models.ModeAgent && s.Mode != models.ModeCall {
		s.Mode = ""
	}
	return s
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func (c *Classifier) cached(key string) (models.Interpretation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[key]
	if !ok {
		return models.Interpretation{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.cache, key)
		return models.Interpretation{}, false
	}
	return e.result, true
}

func (c *Classifier) store(key string, result models.Interpretation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.cache) >= cacheSweepThreshold {
		for k, e := range c.cache {
			if !now.Before(e.expires) {
				delete(c.cache, k)
			}
		}
	}
	c.cache[key] = cacheEntry{result: result, expires: now.Add(c.ttl)}
}
