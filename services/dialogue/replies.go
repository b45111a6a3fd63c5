package dialogue

import (
	"fmt"
	"strings"

	"bookingbot/models"
)

// Fixed reply texts.
const (
	VoicePlaceholder = "[voice]"

	replyEmpty           = "I didn't catch that, please repeat."
	replyGreeting        = "Hello! How can I assist you today?"
	replyTryLater        = "Sorry, something went wrong on our side. Please try again later."
	replySaveFailed      = "Sorry, I couldn't save your booking right now. Please try again later."
	replyMenu            = "I can book an AI agent or a call for you, share our catalog or location, and handle payments or cancellations. What would you like to do?"
	replyDoneMenu        = "Anything else? You can ask for the catalog or our location, pay for or cancel your booking, or say 'book an agent' to start a new one."
	replyNoted           = "Got it, noted. Say 'book an agent' or 'book a call' when you're ready."
	replyConfirmOrChange = "Please reply 'confirm' to book or 'change' to edit."
	replyPaymentAsk      = "How would you like to pay? Reply 'UPI' for a payment QR or 'offline' to pay later."
	replyWhatToChange    = "Sure. What would you like to change? You can say name, phone, date, time, category or add-ons."
	replyNoBooking       = "You don't have a booking yet. Say 'book an agent' or 'book a call' to start."
	replyCancelWhich     = "Please share the booking ID you want to cancel."
	replyDropped         = "Okay, I've dropped this booking request."
	replyPhoneOK         = "Thanks, number confirmed."
)

var slotQuestions = map[models.SlotKey]string{
	models.SlotMode:        "Would you like to book an AI agent or a call?",
	models.SlotName:        "May I have your name?",
	models.SlotCountryCode: "What's your country code (for example +91)?",
	models.SlotPhone:       "What's the best phone number to reach you?",
	models.SlotDate:        "What date works for you?",
	models.SlotTime:        "What time works for you?",
	models.SlotGenre:       "What type of business is this for? (gym, salon, spa, restaurant, plumbing, electrician or other)",
}

func question(key models.SlotKey) string {
	return slotQuestions[key]
}

func phoneConfirmPrompt(s *models.SlotSet) string {
	return fmt.Sprintf("I have your number as %s %s. Reply 'yes' to confirm or send the correct number with country code.",
		s.CountryCode, s.Phone)
}

func startReply(mode string) string {
	switch mode {
	case models.ModeAgent:
		return "Great, let's book an AI agent."
	case models.ModeCall:
		return "Great, let's book a call."
	}
	return "Great, let's get you booked."
}

func humanAddons(addons []string) string {
	out := make([]string, len(addons))
	for i, a := range addons {
		out[i] = strings.ReplaceAll(a, "_", " ")
	}
	return strings.Join(out, ", ")
}

func proposalReply(p *models.Proposal, price string) string {
	what := "AI agent"
	if p.Mode == models.ModeCall {
		what = "Consultation call"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Proposal: %s for your %s", what, p.Genre)
	if len(p.Addons) > 0 {
		fmt.Fprintf(&b, " with %s", humanAddons(p.Addons))
	}
	fmt.Fprintf(&b, ", %s, on %s at %s. ", price, p.Date, p.Time)
	b.WriteString("Reply 'confirm' to book or 'change' to edit.")
	return b.String()
}

func confirmedReply(id, price string) string {
	return fmt.Sprintf("Booking confirmed. ID: %s. Amount: %s.", id, price)
}

func join(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
