package dialogue

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"bookingbot/models"
	"bookingbot/services/slots"
)

var (
	bookingWords     = []string{"book", "booking", "reserve", "appointment", "schedule"}
	affirmativeWords = []string{"yes", "y", "yeah", "yep", "confirm", "confirmed", "ok", "okay", "correct", "right", "sure"}
	offlineWords     = []string{"offline", "cash", "later"}
	onlinePayWords   = []string{"upi", "qr", "pay", "online"}

	bareCountryCode = regexp.MustCompile(`^\+?(\d{1,3})$`)
	bareName        = regexp.MustCompile(`^[A-Za-z][A-Za-z.'\-]*(?:\s+[A-Za-z][A-Za-z.'\-]*){0,3}$`)
)

// contactSlots survive a new booking started after a completed one.
var contactSlots = map[models.SlotKey]bool{
	models.SlotName:        true,
	models.SlotCountryCode: true,
	models.SlotPhone:       true,
}

type changeTarget struct {
	words []string
	keys  []models.SlotKey
}

var changeTargets = []changeTarget{
	{words: []string{"name"}, keys: []models.SlotKey{models.SlotName}},
	{words: []string{"phone", "number"}, keys: []models.SlotKey{models.SlotCountryCode, models.SlotPhone}},
	{words: []string{"date", "day"}, keys: []models.SlotKey{models.SlotDate}},
	{words: []string{"time"}, keys: []models.SlotKey{models.SlotTime}},
	{words: []string{"category", "business", "genre", "type"}, keys: []models.SlotKey{models.SlotGenre}},
	{words: []string{"add-on", "add-ons", "addon", "addons", "features"}, keys: []models.SlotKey{models.SlotAddons, models.SlotCustomFeatures}},
	{words: []string{"mode"}, keys: []models.SlotKey{models.SlotMode}},
}

func offlineChoice(t *turn) bool { return t.has(offlineWords...) }

func (e *Engine) wantsBooking(t *turn) bool {
	switch t.interp.Intent {
	case models.IntentBookAgent, models.IntentBookCall:
		return true
	}
	return t.has(bookingWords...)
}

func (e *Engine) idle(t *turn) string {
	if e.wantsBooking(t) {
		return e.startBooking(t)
	}
	if t.interp.Intent == models.IntentSmallTalk {
		return e.smallTalk(t)
	}
	if len(t.written) > 0 {
		return replyNoted
	}
	return replyMenu
}

// startBooking enters collecting. Coming from a finished booking, only the
// contact slots and anything given in this turn are kept.
func (e *Engine) startBooking(t *turn) string {
	sess := t.sess
	if sess.Stage == models.StageDone || sess.Stage == models.StageBooked {
		resetBookingSlots(&sess.Slots)
		slots.Merge(&sess.Slots, t.found, false)
	}
	sess.Proposed = nil
	sess.Editing = false
	sess.Stage = models.StageCollecting
	inferMode(t)
	return join(startReply(sess.Slots.Mode), e.collecting(t))
}

func resetBookingSlots(s *models.SlotSet) {
	for _, k := range models.AllSlots {
		if !contactSlots[k] {
			s.Set(k, "")
		}
	}
}

func inferMode(t *turn) {
	s := &t.sess.Slots
	if s.Mode != "" {
		return
	}
	switch {
	case t.interp.Intent == models.IntentBookAgent || t.has("agent"):
		s.Mode = models.ModeAgent
	case t.interp.Intent == models.IntentBookCall || t.has("call"):
		s.Mode = models.ModeCall
	}
}

func (e *Engine) collecting(t *turn) string {
	sess := t.sess
	s := &sess.Slots
	inferMode(t)

	if reply, pending := e.phoneConfirmation(t); pending {
		return reply
	} else if reply != "" {
		return join(reply, e.collectRest(t))
	}

	if t.interp.Intent == models.IntentSmallTalk && len(t.written) == 0 {
		return join(e.smallTalk(t), e.stagePrompt(t))
	}
	if len(t.written) == 0 {
		fillPending(t, slots.NextMissing(s))
	}
	return e.collectRest(t)
}

// collectRest asks for the next missing slot or, with everything present,
// builds the proposal.
func (e *Engine) collectRest(t *turn) string {
	sess := t.sess
	s := &sess.Slots

	cleared := false
	if sess.Editing {
		cleared = clearChangeTargets(t)
	}
	if s.Phone != "" && !s.ConfirmedPhone && !s.AskedConfirm {
		s.AskedConfirm = true
		return phoneConfirmPrompt(s)
	}
	if k := slots.NextMissing(s); k != "" {
		return question(k)
	}
	if sess.Editing && !cleared && len(t.written) == 0 {
		return replyWhatToChange
	}

	if _, err := e.deps.Validator.Validate(s.Date, s.Time); err != nil {
		reason := err.Error()
		var dtErr *DateTimeError
		if errors.As(err, &dtErr) {
			reason = dtErr.Reason
		}
		s.Date, s.Time = "", ""
		return fmt.Sprintf("Sorry, %s. %s", reason, question(models.SlotDate))
	}

	p := &models.Proposal{
		Mode:        s.Mode,
		Name:        s.Name,
		CountryCode: s.CountryCode,
		Phone:       s.Phone,
		Date:        s.Date,
		Time:        s.Time,
		Genre:       s.Genre,
		Addons:      append([]string(nil), s.Addons...),
		Amount:      e.deps.Pricing.Quote(s.Genre, s.Addons),
	}
	sess.Proposed = p
	sess.Editing = false
	sess.Stage = models.StageConfirming
	t.payload.Proposal = p
	return proposalReply(p, e.deps.Pricing.Format(p.Amount))
}

// phoneConfirmation runs the one-time phone check. pending reports that the
// turn must end with reply; otherwise a non-empty reply acknowledges the
// resolved number.
func (e *Engine) phoneConfirmation(t *turn) (reply string, pending bool) {
	s := &t.sess.Slots
	if s.Phone == "" || s.ConfirmedPhone || !s.AskedConfirm {
		return "", false
	}
	if cc, phone := slots.FindPhone(t.text); cc != "" && phone != "" {
		s.CountryCode, s.Phone = cc, phone
		s.ConfirmedPhone, s.AskedConfirm = true, false
		return replyPhoneOK, false
	}
	if t.interp.Intent == models.IntentConfirm || t.has(affirmativeWords...) {
		s.ConfirmedPhone, s.AskedConfirm = true, false
		return replyPhoneOK, false
	}
	return phoneConfirmPrompt(s), true
}

// fillPending is the free-text fallback for the slot that was just asked
// about, used only when no rule extracted anything.
func fillPending(t *turn, key models.SlotKey) {
	s := &t.sess.Slots
	text := strings.TrimSpace(t.text)
	switch key {
	case models.SlotCountryCode:
		if m := bareCountryCode.FindStringSubmatch(text); m != nil {
			s.CountryCode = "+" + m[1]
			t.written = append(t.written, key)
		}
	case models.SlotName:
		if t.interp.Intent != models.IntentUnknown || !bareName.MatchString(text) || t.has(affirmativeWords...) {
			return
		}
		s.Name = titleCase(text)
		t.written = append(t.written, key)
	}
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + strings.ToLower(f[1:])
	}
	return strings.Join(fields, " ")
}

// clearChangeTargets empties the slots named in a change request, except
// those given new values in the same turn.
func clearChangeTargets(t *turn) bool {
	s := &t.sess.Slots
	cleared := false
	for _, target := range changeTargets {
		if !t.has(target.words...) {
			continue
		}
		for _, k := range target.keys {
			if t.wrote(k) || s.IsEmpty(k) {
				continue
			}
			s.Set(k, "")
			cleared = true
			if k == models.SlotPhone {
				s.ConfirmedPhone, s.AskedConfirm = false, false
			}
		}
	}
	return cleared
}

func (e *Engine) confirming(t *turn) string {
	sess := t.sess
	switch {
	case t.has("change"):
		sess.Editing = true
		sess.Proposed = nil
		sess.Stage = models.StageCollecting
		return e.collectRest(t)
	case t.interp.Intent == models.IntentConfirm || t.has(affirmativeWords...):
		return e.persist(t)
	case t.interp.Intent == models.IntentSmallTalk:
		return join(e.smallTalk(t), replyConfirmOrChange)
	}
	return replyConfirmOrChange
}

// persist saves the proposal as a booking and notifies both parties.
func (e *Engine) persist(t *turn) string {
	sess := t.sess
	p := sess.Proposed
	if p == nil {
		sess.Stage = models.StageCollecting
		return e.collectRest(t)
	}

	b := models.Booking{
		SessionID:   sess.ID,
		CountryCode: p.CountryCode,
		Phone:       p.Phone,
		Name:        p.Name,
		Type:        p.Mode,
		Category:    p.Genre,
		BaseAmount:  e.deps.Pricing.Base(p.Genre),
		Addons:      p.Addons,
		Date:        p.Date,
		Time:        p.Time,
		Status:      models.PaymentPending,
		FinalAmount: p.Amount,
	}
	if cf := strings.TrimSpace(sess.Slots.CustomFeatures); cf != "" {
		b.CustomFeatures = []string{cf}
	}

	id, err := e.deps.Bookings.Save(t.ctx, b)
	if err != nil {
		e.log.Error("failed to save booking", zap.String("session", sess.ID), zap.Error(err))
		return replySaveFailed
	}

	sess.LastBookingID = id
	sess.Slots.BookingID = id
	t.payload.BookingID = id
	t.payload.Proposal = p

	price := e.deps.Pricing.Format(p.Amount)
	e.notifyOwner(t, fmt.Sprintf("New booking %s: %s (%s) for %s on %s at %s, %s", id, p.Genre, p.Mode, p.Name, p.Date, p.Time, price))
	e.notifyCustomer(t, fmt.Sprintf("Hi %s, your booking %s is confirmed for %s at %s. Amount: %s.", p.Name, id, p.Date, p.Time, price))

	if p.Mode == models.ModeCall {
		sess.Stage = models.StageDone
		return join(confirmedReply(id, price), fmt.Sprintf("We'll call you on %s at %s.", p.Date, p.Time))
	}
	sess.Stage = models.StageBooked
	return join(confirmedReply(id, price), replyPaymentAsk)
}

func (e *Engine) booked(t *turn) string {
	switch {
	case t.has(onlinePayWords...):
		return e.pay(t)
	case e.wantsBooking(t):
		return e.startBooking(t)
	case t.interp.Intent == models.IntentSmallTalk:
		return join(e.smallTalk(t), replyPaymentAsk)
	}
	return replyPaymentAsk
}

func (e *Engine) done(t *turn) string {
	if e.wantsBooking(t) {
		return e.startBooking(t)
	}
	if t.interp.Intent == models.IntentSmallTalk {
		return e.smallTalk(t)
	}
	return replyDoneMenu
}
