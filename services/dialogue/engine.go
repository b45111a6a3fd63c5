package dialogue

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	bookingRepo "bookingbot/database/repository/booking"
	"bookingbot/models"
	"bookingbot/services/booking"
	"bookingbot/services/media"
	"bookingbot/services/notification"
	"bookingbot/services/session"
	"bookingbot/services/slots"
	"bookingbot/services/speech"
)

// Interpreter classifies an utterance. It must never fail.
type Interpreter interface {
	Classify(ctx context.Context, text string, snap models.Snapshot) models.Interpretation
}

// SmallTalker returns canned small-talk replies.
type SmallTalker interface {
	SmallTalk(text, assistant string) (string, bool)
}

// Rewriter adapts the tone of a reply without changing its facts.
type Rewriter interface {
	Rewrite(ctx context.Context, core, userText string, hints models.StyleHints) string
}

// Deps are the collaborators an Engine drives.
type Deps struct {
	Sessions    session.Store
	Interpreter Interpreter
	SmallTalk   SmallTalker
	Extractor   slots.Extractor
	Composer    Rewriter
	Pricing     booking.PriceBook
	Bookings    bookingRepo.BookingRepository
	Notifier    notification.Sender
	QR          media.QRGenerator
	Catalog     media.CatalogProvider
	Location    media.LocationProvider
	Transcriber speech.Transcriber
	Validator   DateTimeValidator

	AssistantName string
	OwnerTopic    string
	Logger        *zap.Logger
}

// Engine is the per-session booking state machine.
type Engine struct {
	deps  Deps
	log   *zap.Logger
	locks *keyedMutex
}

// NewEngine validates deps and fills optional collaborators with inert
// defaults.
func NewEngine(deps Deps) (*Engine, error) {
	switch {
	case deps.Sessions == nil:
		return nil, errors.New("dialogue: session store is required")
	case deps.Interpreter == nil:
		return nil, errors.New("dialogue: interpreter is required")
	case deps.Bookings == nil:
		return nil, errors.New("dialogue: booking repository is required")
	case deps.Validator == nil:
		return nil, errors.New("dialogue: datetime validator is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Extractor == nil {
		deps.Extractor = slots.NewRuleExtractor()
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.NewLogSender(deps.Logger)
	}
	if deps.Catalog == nil {
		deps.Catalog = media.StaticCatalog{}
	}
	if deps.Location == nil {
		deps.Location = media.StaticLocation{}
	}
	if deps.Pricing.BaseUSD == nil {
		deps.Pricing = booking.DefaultPriceBook(80, "₹")
	}
	return &Engine{deps: deps, log: deps.Logger, locks: newKeyedMutex()}, nil
}

// turn is the working state of one HandleTurn call.
type turn struct {
	ctx     context.Context
	sess    *models.Session
	text    string
	lower   string
	words   map[string]bool
	interp  models.Interpretation
	written []models.SlotKey
	found   models.SlotSet
	payload models.Payload
}

var wordSplit = regexp.MustCompile(`[^a-z0-9'\-]+`)

func newTurn(ctx context.Context, sess *models.Session, text string) *turn {
	lower := strings.ToLower(text)
	words := map[string]bool{}
	for _, w := range wordSplit.Split(lower, -1) {
		if w != "" {
			words[w] = true
		}
	}
	return &turn{ctx: ctx, sess: sess, text: text, lower: lower, words: words}
}

func (t *turn) has(words ...string) bool {
	for _, w := range words {
		if t.words[w] {
			return true
		}
	}
	return false
}

func (t *turn) wrote(key models.SlotKey) bool {
	for _, k := range t.written {
		if k == key {
			return true
		}
	}
	return false
}

// HandleTurn processes one utterance end to end. Turns for the same session
// are serialised. It never returns an error: every failure maps to a reply.
func (e *Engine) HandleTurn(ctx context.Context, req models.TurnRequest) models.TurnResponse {
	unlock := e.locks.Lock(req.SessionID)
	defer unlock()

	var transcript *string
	text := strings.TrimSpace(req.Text)
	if len(req.Audio) > 0 {
		heard := e.transcribe(ctx, req)
		transcript = &heard
		text = heard
		if text == "" {
			text = VoicePlaceholder
		}
	}

	sess, err := e.deps.Sessions.GetOrCreate(ctx, req.SessionID, req.SeedPhone)
	if err != nil {
		e.log.Error("failed to load session", zap.String("session", req.SessionID), zap.Error(err))
		return models.TurnResponse{ReplyText: replyTryLater, Transcript: transcript}
	}
	if text == "" {
		e.save(ctx, sess)
		return models.TurnResponse{ReplyText: replyEmpty, Transcript: transcript}
	}

	sess.Record(models.RoleUser, text)
	t := newTurn(ctx, sess, text)
	core := e.step(t)

	reply := core
	if e.deps.Composer != nil {
		reply = e.deps.Composer.Rewrite(ctx, core, text, t.interp.StyleHints)
	}
	sess.Record(models.RoleAssistant, reply)
	e.save(ctx, sess)

	e.log.Debug("turn handled",
		zap.String("session", sess.ID),
		zap.String("intent", string(t.interp.Intent)),
		zap.String("stage", string(sess.Stage)),
	)
	return models.TurnResponse{ReplyText: reply, Transcript: transcript, Structured: t.payload}
}

func (e *Engine) transcribe(ctx context.Context, req models.TurnRequest) string {
	if e.deps.Transcriber == nil {
		return ""
	}
	text, err := e.deps.Transcriber.Transcribe(ctx, req.Audio, req.AudioMIME)
	if err != nil {
		e.log.Warn("transcription failed", zap.String("session", req.SessionID), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *Engine) save(ctx context.Context, sess *models.Session) {
	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		e.log.Error("failed to save session", zap.String("session", sess.ID), zap.Error(err))
	}
}

// step interprets the utterance, merges slots and dispatches on stage.
func (e *Engine) step(t *turn) string {
	sess := t.sess
	t.interp = e.deps.Interpreter.Classify(t.ctx, t.text, sess.Snapshot())

	editing := sess.Editing || (sess.Stage == models.StageConfirming && t.has("change"))
	t.found = e.deps.Extractor.Extract(t.text)
	t.written = slots.Merge(&sess.Slots, t.found, editing)
	t.written = append(t.written, slots.Merge(&sess.Slots, t.interp.Slots, editing)...)
	slots.Merge(&t.found, t.interp.Slots, false)
	if t.wrote(models.SlotPhone) {
		sess.Slots.ConfirmedPhone = false
		sess.Slots.AskedConfirm = false
	}

	if sess.Stage == models.StageBooked && offlineChoice(t) {
		return e.payOffline(t)
	}
	if t.interp.Intent.IsQuickAction() {
		return join(e.quickAction(t), e.stagePrompt(t))
	}

	switch sess.Stage {
	case models.StageCollecting:
		return e.collecting(t)
	case models.StageConfirming:
		return e.confirming(t)
	case models.StageBooked:
		return e.booked(t)
	case models.StageDone:
		return e.done(t)
	default:
		return e.idle(t)
	}
}

func (e *Engine) smallTalk(t *turn) string {
	if e.deps.SmallTalk != nil {
		if reply, ok := e.deps.SmallTalk.SmallTalk(t.text, e.deps.AssistantName); ok {
			return reply
		}
	}
	return replyGreeting
}

// stagePrompt repeats what the current stage is waiting for.
func (e *Engine) stagePrompt(t *turn) string {
	s := &t.sess.Slots
	switch t.sess.Stage {
	case models.StageCollecting:
		if s.Phone != "" && !s.ConfirmedPhone && s.AskedConfirm {
			return phoneConfirmPrompt(s)
		}
		if k := slots.NextMissing(s); k != "" {
			return question(k)
		}
	case models.StageConfirming:
		return replyConfirmOrChange
	case models.StageBooked:
		return replyPaymentAsk
	}
	return ""
}

// notify sends a best-effort message; failures are only logged.
func (e *Engine) notify(ctx context.Context, to, body string) {
	if to == "" {
		return
	}
	if err := e.deps.Notifier.SendText(ctx, to, body); err != nil {
		e.log.Warn("notification failed", zap.String("to", to), zap.Error(err))
	}
}

func (e *Engine) notifyCustomer(t *turn, body string) {
	e.notify(t.ctx, t.sess.Slots.FullPhone(), body)
}

func (e *Engine) notifyOwner(t *turn, body string) {
	e.notify(t.ctx, e.deps.OwnerTopic, body)
}
