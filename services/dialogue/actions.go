package dialogue

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	bookingRepo "bookingbot/database/repository/booking"
	"bookingbot/models"
)

var bookingIDPattern = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\b`)

// bookingIDIn returns an explicit booking id mentioned in the text.
func bookingIDIn(text string) string {
	for _, m := range bookingIDPattern.FindAllString(text, -1) {
		if strings.IndexFunc(m, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return strings.ToUpper(m)
		}
	}
	return ""
}

func (e *Engine) quickAction(t *turn) string {
	switch t.interp.Intent {
	case models.IntentPay:
		return e.pay(t)
	case models.IntentGetCatalog:
		return e.catalog(t)
	case models.IntentGetLocation:
		return e.location(t)
	case models.IntentCancel:
		return e.cancel(t)
	}
	return replyMenu
}

// lookupBooking resolves the booking a post-booking action refers to. A
// non-empty reply means the action cannot continue.
func (e *Engine) lookupBooking(t *turn) (*models.Booking, string) {
	id := bookingIDIn(t.text)
	if id == "" {
		id = t.sess.LastBookingID
	}
	if id == "" {
		return nil, replyNoBooking
	}
	b, err := e.deps.Bookings.GetByID(t.ctx, id)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, fmt.Sprintf("I couldn't find booking %s.", id)
	}
	if err != nil {
		e.log.Error("failed to load booking", zap.String("booking", id), zap.Error(err))
		return nil, replyTryLater
	}
	return b, ""
}

func (e *Engine) pay(t *turn) string {
	b, reply := e.lookupBooking(t)
	if reply != "" {
		return reply
	}
	if b.Cancelled() {
		return fmt.Sprintf("Booking %s is cancelled, so there is nothing to pay.", b.ID)
	}
	if e.deps.QR == nil {
		e.log.Warn("payment requested but no QR generator is configured")
		return replyTryLater
	}
	phone := b.CountryCode + b.Phone
	ref, err := e.deps.QR.GenerateQR(t.ctx, b.ID, b.FinalAmount, phone)
	if err != nil {
		e.log.Error("failed to generate QR", zap.String("booking", b.ID), zap.Error(err))
		return replyTryLater
	}

	price := e.deps.Pricing.Format(b.FinalAmount)
	t.payload.BookingID = b.ID
	t.payload.QRURL = ref
	e.notify(t.ctx, phone, fmt.Sprintf("Your payment QR for booking %s (%s) is ready: %s", b.ID, price, ref))
	if t.sess.Stage == models.StageBooked {
		t.sess.Stage = models.StageDone
	}
	return fmt.Sprintf("Here is your payment QR for %s (booking %s): %s", price, b.ID, ref)
}

func (e *Engine) payOffline(t *turn) string {
	t.sess.Stage = models.StageDone
	id := t.sess.LastBookingID
	t.payload.BookingID = id
	return fmt.Sprintf("Noted, you can pay offline. Booking %s stays reserved.", id)
}

func (e *Engine) catalog(t *turn) string {
	ref, err := e.deps.Catalog.Catalog(t.ctx)
	if err != nil {
		e.log.Warn("catalog unavailable", zap.Error(err))
		return replyTryLater
	}
	t.payload.CatalogURL = ref
	e.notifyCustomer(t, "Our catalog: "+ref)
	return "Here is our catalog: " + ref
}

func (e *Engine) location(t *turn) string {
	loc, err := e.deps.Location.Location(t.ctx)
	if err != nil {
		e.log.Warn("location unavailable", zap.Error(err))
		return replyTryLater
	}
	t.payload.LocationURL = loc.URL
	t.payload.LocationText = loc.Address
	var reply string
	switch {
	case loc.Address != "" && loc.URL != "":
		reply = fmt.Sprintf("We're at %s. Map: %s", loc.Address, loc.URL)
	case loc.Address != "":
		reply = fmt.Sprintf("We're at %s.", loc.Address)
	default:
		reply = "Here is our location: " + loc.URL
	}
	e.notifyCustomer(t, reply)
	return reply
}

// cancel cancels an explicitly named booking, drops an in-progress request,
// or cancels the session's last booking, in that order.
func (e *Engine) cancel(t *turn) string {
	sess := t.sess
	id := bookingIDIn(t.text)
	if id == "" {
		switch sess.Stage {
		case models.StageCollecting, models.StageConfirming:
			resetBookingSlots(&sess.Slots)
			sess.Proposed = nil
			sess.Editing = false
			sess.Stage = models.StageIdle
			return replyDropped
		}
		id = sess.LastBookingID
	}
	if id == "" {
		return replyCancelWhich
	}

	err := e.deps.Bookings.Cancel(t.ctx, id)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return fmt.Sprintf("I couldn't find booking %s.", id)
	}
	if err != nil {
		e.log.Error("failed to cancel booking", zap.String("booking", id), zap.Error(err))
		return replyTryLater
	}

	resetBookingSlots(&sess.Slots)
	sess.Proposed = nil
	sess.Editing = false
	sess.Stage = models.StageIdle
	t.payload.Cancelled = id
	e.notifyOwner(t, fmt.Sprintf("Booking %s was cancelled.", id))
	e.notifyCustomer(t, fmt.Sprintf("Your booking %s has been cancelled.", id))
	return fmt.Sprintf("Booking %s has been cancelled.", id)
}
