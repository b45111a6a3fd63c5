package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"bookingbot/models"
	"bookingbot/services/booking"
	ai "bookingbot/services/intelligence"
	"bookingbot/services/media"
	"bookingbot/services/session"
)

const testCatalogURL = "https://example.com/catalog.pdf"

type harness struct {
	engine   *Engine
	store    *session.MemoryStore
	bookings *fakeBookings
	notifier *fakeNotifier
	qr       *fakeQR
}

func acceptFuture(date, clock string) (time.Time, error) {
	if date == "1 Jan" {
		return time.Time{}, &DateTimeError{Reason: date + " " + clock + " is in the past"}
	}
	return time.Now().Add(24 * time.Hour), nil
}

func newHarness(t *testing.T, mutate ...func(*Deps)) *harness {
	t.Helper()
	h := &harness{
		store:    session.NewMemoryStore(),
		bookings: newFakeBookings(),
		notifier: &fakeNotifier{},
		qr:       &fakeQR{},
	}
	classifier := ai.NewClassifier(ai.DefaultRules(), nil, nil, 0, nil)
	deps := Deps{
		Sessions:      h.store,
		Interpreter:   classifier,
		SmallTalk:     classifier.Rules(),
		Pricing:       booking.DefaultPriceBook(80, "₹"),
		Bookings:      h.bookings,
		Notifier:      h.notifier,
		QR:            h.qr,
		Catalog:       media.StaticCatalog{URL: testCatalogURL},
		Location:      media.StaticLocation{MapLink: "https://maps.example/x", Address: "496 Lakeview Street"},
		Validator:     ValidatorFunc(acceptFuture),
		AssistantName: "Acme",
		OwnerTopic:    "owner",
	}
	for _, m := range mutate {
		m(&deps)
	}
	e, err := NewEngine(deps)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	h.engine = e
	return h
}

func (h *harness) say(id string, texts ...string) models.TurnResponse {
	var resp models.TurnResponse
	for _, text := range texts {
		resp = h.engine.HandleTurn(context.Background(), models.TurnRequest{SessionID: id, Text: text})
	}
	return resp
}

func (h *harness) session(t *testing.T, id string) *models.Session {
	t.Helper()
	s, err := h.store.GetOrCreate(context.Background(), id, "")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

var bookingScript = []string{
	"book an agent",
	"+91 9876543210",
	"confirm phone: yes",
	"Aarush Verma",
	"25 Oct",
	"7pm",
	"restaurant",
}

func TestEngine_GreetingStaysIdle(t *testing.T) {
	h := newHarness(t)
	resp := h.say("s1", "hello")
	if resp.ReplyText != "Hello! How can I assist you today?" {
		t.Errorf("reply = %q", resp.ReplyText)
	}
	if got := h.session(t, "s1").Stage; got != models.StageIdle {
		t.Errorf("stage = %q, want idle", got)
	}
}

func TestEngine_IdentityUsesAssistantName(t *testing.T) {
	h := newHarness(t)
	resp := h.say("s1", "who are you")
	if !strings.Contains(resp.ReplyText, "Acme") {
		t.Errorf("reply = %q", resp.ReplyText)
	}
}

func TestEngine_FullBookingFlow(t *testing.T) {
	h := newHarness(t)
	replies := make([]string, 0, len(bookingScript))
	var resp models.TurnResponse
	for _, line := range bookingScript {
		resp = h.say("s1", line)
		replies = append(replies, resp.ReplyText)
	}

	wantContains := []string{
		"May I have your name?",
		"+91 9876543210",
		"May I have your name?",
		"What date",
		"What time",
		"What type of business",
		"restaurant",
	}
	for i, want := range wantContains {
		if !strings.Contains(replies[i], want) {
			t.Errorf("turn %d (%q): reply %q does not contain %q", i, bookingScript[i], replies[i], want)
		}
	}

	if !strings.Contains(resp.ReplyText, "₹20000") {
		t.Errorf("proposal reply %q lacks the amount", resp.ReplyText)
	}
	if resp.Structured.Proposal == nil || resp.Structured.Proposal.Amount != 20000 {
		t.Errorf("proposal payload = %+v", resp.Structured.Proposal)
	}

	s := h.session(t, "s1")
	if s.Stage != models.StageConfirming {
		t.Errorf("stage = %q, want confirming", s.Stage)
	}
	want := models.SlotSet{Mode: "agent", Name: "Aarush Verma", CountryCode: "+91", Phone: "9876543210", Date: "25 Oct", Time: "7pm", Genre: "restaurant", ConfirmedPhone: true}
	if fmt.Sprint(s.Slots) != fmt.Sprint(want) {
		t.Errorf("slots = %+v\nwant    %+v", s.Slots, want)
	}
	if h.bookings.saves != 0 {
		t.Error("nothing should be saved before confirmation")
	}
}

func TestEngine_RelativeDateReachesProposal(t *testing.T) {
	saturday := time.Date(2026, time.October, 17, 10, 0, 0, 0, time.Local)
	h := newHarness(t, func(d *Deps) { d.Validator = fixedValidator(saturday) })

	resp := h.say("s1", "book an agent", "+91 9876543210", "confirm phone: yes", "Aarush Verma", "next friday", "18:30", "restaurant")
	if resp.Structured.Proposal == nil {
		t.Fatalf("no proposal, reply = %q", resp.ReplyText)
	}
	if !strings.Contains(resp.ReplyText, "next friday at 18:30") {
		t.Errorf("proposal reply %q should quote the date as given", resp.ReplyText)
	}
	if got := h.session(t, "s1").Stage; got != models.StageConfirming {
		t.Errorf("stage = %q, want confirming", got)
	}
}

func TestEngine_ConfirmPersistsOnce(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	resp := h.say("s1", "confirm")

	if h.bookings.saves != 1 {
		t.Fatalf("saves = %d, want 1", h.bookings.saves)
	}
	s := h.session(t, "s1")
	if s.LastBookingID != "AB12CD34" {
		t.Errorf("last booking = %q", s.LastBookingID)
	}
	if !strings.Contains(resp.ReplyText, "AB12CD34") || resp.Structured.BookingID != "AB12CD34" {
		t.Errorf("reply = %q payload = %+v", resp.ReplyText, resp.Structured)
	}
	if s.Stage != models.StageBooked {
		t.Errorf("stage = %q, want booked", s.Stage)
	}
	saved := h.bookings.bookings["AB12CD34"]
	if saved.FinalAmount != 20000 || saved.Category != "restaurant" || saved.Type != "agent" || saved.BaseAmount != 250 {
		t.Errorf("saved booking = %+v", saved)
	}
	if h.notifier.sentTo("owner") != 1 || h.notifier.sentTo("+919876543210") != 1 {
		t.Errorf("notifications = %+v", h.notifier.sent)
	}

	// A repeated confirm in the payment stage must not save again.
	h.say("s1", "confirm")
	if h.bookings.saves != 1 {
		t.Errorf("saves after second confirm = %d", h.bookings.saves)
	}
}

func TestEngine_PastDateIsRejected(t *testing.T) {
	h := newHarness(t)
	script := append([]string(nil), bookingScript...)
	script[4] = "1 Jan"
	resp := h.say("s1", script...)

	if !strings.Contains(resp.ReplyText, "in the past") {
		t.Errorf("reply = %q", resp.ReplyText)
	}
	s := h.session(t, "s1")
	if s.Slots.Date != "" || s.Slots.Time != "" {
		t.Errorf("date/time not cleared: %+v", s.Slots)
	}
	if s.Stage != models.StageCollecting {
		t.Errorf("stage = %q, want collecting", s.Stage)
	}
	if s.Slots.Genre != "restaurant" || s.Slots.Name != "Aarush Verma" {
		t.Errorf("other slots lost: %+v", s.Slots)
	}
}

func TestEngine_CatalogFromDone(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	h.say("s1", "confirm", "offline")
	if got := h.session(t, "s1").Stage; got != models.StageDone {
		t.Fatalf("stage = %q, want done", got)
	}

	resp := h.say("s1", "catalog")
	if !strings.Contains(resp.ReplyText, testCatalogURL) || resp.Structured.CatalogURL != testCatalogURL {
		t.Errorf("reply = %q payload = %+v", resp.ReplyText, resp.Structured)
	}
	if got := h.session(t, "s1").Stage; got != models.StageDone {
		t.Errorf("stage = %q after catalog, want done", got)
	}
}

func TestEngine_QuickActionsFromIdle(t *testing.T) {
	h := newHarness(t)
	resp := h.say("s1", "where are you located?")
	if resp.Structured.LocationURL != "https://maps.example/x" || !strings.Contains(resp.ReplyText, "496 Lakeview Street") {
		t.Errorf("location: %q %+v", resp.ReplyText, resp.Structured)
	}
	if resp := h.say("s1", "pay now"); resp.ReplyText != replyNoBooking {
		t.Errorf("pay without booking: %q", resp.ReplyText)
	}
	if resp := h.say("s1", "cancel"); resp.ReplyText != replyCancelWhich {
		t.Errorf("cancel without booking: %q", resp.ReplyText)
	}
	if got := h.session(t, "s1").Stage; got != models.StageIdle {
		t.Errorf("stage = %q", got)
	}
}

func TestEngine_CatalogWhileCollectingRepeatsQuestion(t *testing.T) {
	h := newHarness(t)
	h.say("s1", "book an agent")
	resp := h.say("s1", "what are your prices?")
	if !strings.Contains(resp.ReplyText, testCatalogURL) || !strings.HasSuffix(resp.ReplyText, "May I have your name?") {
		t.Errorf("reply = %q", resp.ReplyText)
	}
}

func TestEngine_PayWithUPI(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	h.say("s1", "confirm")
	resp := h.say("s1", "UPI please")

	if h.qr.calls != 1 || h.qr.amount != 20000 {
		t.Errorf("qr calls=%d amount=%d", h.qr.calls, h.qr.amount)
	}
	if resp.Structured.QRURL == "" || !strings.Contains(resp.ReplyText, resp.Structured.QRURL) {
		t.Errorf("reply = %q payload = %+v", resp.ReplyText, resp.Structured)
	}
	if got := h.session(t, "s1").Stage; got != models.StageDone {
		t.Errorf("stage = %q, want done", got)
	}
}

func TestEngine_PayOfflineBeatsPayKeyword(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	h.say("s1", "confirm")
	resp := h.say("s1", "I'll pay offline")
	if h.qr.calls != 0 || !strings.Contains(resp.ReplyText, "offline") {
		t.Errorf("reply = %q qr calls = %d", resp.ReplyText, h.qr.calls)
	}
}

func TestEngine_QRFailureKeepsStage(t *testing.T) {
	h := newHarness(t)
	h.qr.err = errBoom
	h.say("s1", bookingScript...)
	h.say("s1", "confirm")
	resp := h.say("s1", "qr")
	if !strings.HasPrefix(resp.ReplyText, replyTryLater) {
		t.Errorf("reply = %q", resp.ReplyText)
	}
	if got := h.session(t, "s1").Stage; got != models.StageBooked {
		t.Errorf("stage = %q, want booked", got)
	}
}

func TestEngine_SaveFailure(t *testing.T) {
	h := newHarness(t)
	h.bookings.saveErr = errBoom
	h.say("s1", bookingScript...)
	resp := h.say("s1", "confirm")
	if resp.ReplyText != replySaveFailed {
		t.Errorf("reply = %q", resp.ReplyText)
	}
	s := h.session(t, "s1")
	if s.Stage != models.StageConfirming || s.LastBookingID != "" {
		t.Errorf("stage=%q last=%q", s.Stage, s.LastBookingID)
	}
}

func TestEngine_NotificationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errBoom
	h.say("s1", bookingScript...)
	resp := h.say("s1", "confirm")
	if !strings.Contains(resp.ReplyText, "Booking confirmed") {
		t.Errorf("reply = %q", resp.ReplyText)
	}
}

func TestEngine_CancelLastBooking(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	h.say("s1", "confirm", "offline")
	resp := h.say("s1", "cancel my booking")

	if resp.Structured.Cancelled != "AB12CD34" {
		t.Errorf("payload = %+v", resp.Structured)
	}
	if h.bookings.bookings["AB12CD34"].Status != models.StatusCancelled {
		t.Error("booking not cancelled in store")
	}
	s := h.session(t, "s1")
	if s.Stage != models.StageIdle || s.Slots.Date != "" || s.Slots.Name != "Aarush Verma" {
		t.Errorf("after cancel: stage=%q slots=%+v", s.Stage, s.Slots)
	}

	resp = h.say("s1", "pay")
	if !strings.Contains(resp.ReplyText, "cancelled") {
		t.Errorf("pay on cancelled booking: %q", resp.ReplyText)
	}
}

func TestEngine_CancelNamedBookingOverridesLast(t *testing.T) {
	h := newHarness(t)
	h.bookings.bookings["7E3D9C1A"] = &models.Booking{ID: "7E3D9C1A", SessionID: "other"}
	h.say("s1", bookingScript...)
	h.say("s1", "confirm", "offline")
	phone := h.session(t, "s1").Slots.Phone

	resp := h.say("s1", "cancel 7E3D9C1A")
	if resp.Structured.Cancelled != "7E3D9C1A" {
		t.Errorf("cancelled = %q, reply = %q", resp.Structured.Cancelled, resp.ReplyText)
	}
	if h.bookings.bookings["7E3D9C1A"].Status != models.StatusCancelled {
		t.Error("named booking not cancelled")
	}
	if h.bookings.bookings["AB12CD34"].Status == models.StatusCancelled {
		t.Error("last booking was cancelled instead of the named one")
	}
	if got := h.session(t, "s1").Slots.Phone; got != phone {
		t.Errorf("phone changed from %q to %q", phone, got)
	}
}

func TestBookingIDIn(t *testing.T) {
	tests := map[string]string{
		"cancel 7e3d9c1a":         "7E3D9C1A",
		"cancel booking AB12CD34": "AB12CD34",
		"cancel 12345678":         "",
		"cancel":                  "",
	}
	for in, want := range tests {
		if got := bookingIDIn(in); got != want {
			t.Errorf("bookingIDIn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEngine_CancelUnknownID(t *testing.T) {
	h := newHarness(t)
	resp := h.say("s1", "cancel booking DEADBEEF")
	if resp.ReplyText != "I couldn't find booking DEADBEEF." {
		t.Errorf("reply = %q", resp.ReplyText)
	}
}

func TestEngine_CancelDropsRequestInProgress(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	resp := h.say("s1", "cancel")
	if resp.ReplyText != replyDropped {
		t.Errorf("reply = %q", resp.ReplyText)
	}
	s := h.session(t, "s1")
	if s.Stage != models.StageIdle || s.Proposed != nil {
		t.Errorf("stage=%q proposed=%v", s.Stage, s.Proposed)
	}
}

func TestEngine_CallModeSkipsPayment(t *testing.T) {
	h := newHarness(t)
	script := append([]string{"book a call"}, bookingScript[1:]...)
	h.say("s1", script...)
	resp := h.say("s1", "yes")
	if !strings.Contains(resp.ReplyText, "We'll call you") {
		t.Errorf("reply = %q", resp.ReplyText)
	}
	if got := h.session(t, "s1").Stage; got != models.StageDone {
		t.Errorf("stage = %q, want done", got)
	}
}

func TestEngine_PhoneReplacement(t *testing.T) {
	h := newHarness(t)
	resp := h.engine.HandleTurn(context.Background(), models.TurnRequest{SessionID: "s1", Text: "book an agent", SeedPhone: "+91 9876543210"})
	if !strings.Contains(resp.ReplyText, "9876543210") {
		t.Fatalf("expected phone confirmation first, got %q", resp.ReplyText)
	}

	resp = h.say("s1", "maybe")
	if !strings.Contains(resp.ReplyText, "Reply 'yes'") {
		t.Errorf("ambiguous answer should re-ask, got %q", resp.ReplyText)
	}

	resp = h.say("s1", "use +1 5551234567 instead")
	s := h.session(t, "s1")
	if s.Slots.CountryCode != "+1" || s.Slots.Phone != "5551234567" || !s.Slots.ConfirmedPhone || s.Slots.AskedConfirm {
		t.Errorf("slots = %+v", s.Slots)
	}
	if !strings.Contains(resp.ReplyText, "May I have your name?") {
		t.Errorf("reply = %q", resp.ReplyText)
	}
}

func TestEngine_SlotsAreNotOverwritten(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript[:5]...)
	h.say("s1", "my name is Bob Stone")
	if got := h.session(t, "s1").Slots.Name; got != "Aarush Verma" {
		t.Errorf("name = %q", got)
	}
}

func TestEngine_ChangeWithValue(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	resp := h.say("s1", "change the date to 27 Oct")

	if resp.Structured.Proposal == nil || resp.Structured.Proposal.Date != "27 Oct" {
		t.Fatalf("reply = %q payload = %+v", resp.ReplyText, resp.Structured)
	}
	s := h.session(t, "s1")
	if s.Stage != models.StageConfirming || s.Editing {
		t.Errorf("stage=%q editing=%v", s.Stage, s.Editing)
	}
}

func TestEngine_ChangeNamedTarget(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)

	if resp := h.say("s1", "change"); resp.ReplyText != replyWhatToChange {
		t.Errorf("change: %q", resp.ReplyText)
	}
	if got := h.session(t, "s1").Stage; got != models.StageCollecting {
		t.Errorf("stage = %q", got)
	}
	if resp := h.say("s1", "time"); resp.ReplyText != question(models.SlotTime) {
		t.Errorf("time: %q", resp.ReplyText)
	}
	resp := h.say("s1", "8:30pm")
	if resp.Structured.Proposal == nil || resp.Structured.Proposal.Time != "8:30pm" {
		t.Errorf("reply = %q payload = %+v", resp.ReplyText, resp.Structured)
	}
}

func TestEngine_NewBookingKeepsContact(t *testing.T) {
	h := newHarness(t)
	h.say("s1", bookingScript...)
	h.say("s1", "confirm", "offline")
	resp := h.say("s1", "book a call for my gym")

	s := h.session(t, "s1")
	if s.Stage != models.StageCollecting || s.Slots.Mode != models.ModeCall || s.Slots.Genre != "gym" {
		t.Errorf("stage=%q slots=%+v", s.Stage, s.Slots)
	}
	if s.Slots.Name != "Aarush Verma" || s.Slots.Date != "" || s.Slots.BookingID != "" {
		t.Errorf("slots = %+v", s.Slots)
	}
	if !strings.Contains(resp.ReplyText, "What date") {
		t.Errorf("reply = %q", resp.ReplyText)
	}
}

func TestEngine_EmptyUtterance(t *testing.T) {
	h := newHarness(t)
	resp := h.say("s1", "   ")
	if resp.ReplyText != replyEmpty {
		t.Errorf("reply = %q", resp.ReplyText)
	}
	if len(h.session(t, "s1").History) != 0 {
		t.Error("empty utterance should not be recorded")
	}
}

func TestEngine_Voice(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Transcriber = fakeTranscriber{text: "book a call"} })
	resp := h.engine.HandleTurn(context.Background(), models.TurnRequest{SessionID: "v1", Audio: []byte{1, 2}, AudioMIME: "audio/webm"})
	if resp.Transcript == nil || *resp.Transcript != "book a call" {
		t.Errorf("transcript = %v", resp.Transcript)
	}
	if got := h.session(t, "v1").Slots.Mode; got != models.ModeCall {
		t.Errorf("mode = %q", got)
	}

	h = newHarness(t, func(d *Deps) { d.Transcriber = fakeTranscriber{err: errBoom} })
	resp = h.engine.HandleTurn(context.Background(), models.TurnRequest{SessionID: "v2", Audio: []byte{1}})
	if resp.Transcript == nil || *resp.Transcript != "" {
		t.Errorf("transcript = %v", resp.Transcript)
	}
	hist := h.session(t, "v2").History
	if len(hist) == 0 || hist[0].Text != VoicePlaceholder {
		t.Errorf("history = %+v", hist)
	}
}

type upperRewriter struct{}

func (upperRewriter) Rewrite(_ context.Context, core, _ string, _ models.StyleHints) string {
	return strings.ToUpper(core)
}

func TestEngine_RepliesGoThroughComposer(t *testing.T) {
	h := newHarness(t, func(d *Deps) { d.Composer = upperRewriter{} })
	resp := h.say("s1", "hello")
	if resp.ReplyText != "HELLO! HOW CAN I ASSIST YOU TODAY?" {
		t.Errorf("reply = %q", resp.ReplyText)
	}
}

func TestEngine_SerialisesSameSession(t *testing.T) {
	h := newHarness(t)
	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.say("shared", "hello")
		}()
	}
	wg.Wait()
	if got := len(h.session(t, "shared").History); got != 2*n {
		t.Errorf("history entries = %d, want %d", got, 2*n)
	}
	if h.engine.locks.size() != 0 {
		t.Errorf("lock table not drained: %d", h.engine.locks.size())
	}
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	if _, err := NewEngine(Deps{}); err == nil {
		t.Error("expected error for missing collaborators")
	}
}
