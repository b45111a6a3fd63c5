package session

import (
	"context"
	"errors"

	"bookingbot/models"
	"bookingbot/services/slots"
)

// ErrEmptySessionID is returned for a blank session id.
var ErrEmptySessionID = errors.New("session id is required")

// Store maps session ids to conversation state. Sessions are created lazily;
// there is no delete operation.
type Store interface {
	// GetOrCreate loads the session or creates an idle one. A non-empty
	// seedPhone fills the phone slots only while they are still empty.
	GetOrCreate(ctx context.Context, id, seedPhone string) (*models.Session, error)
	// Save persists the session after a turn.
	Save(ctx context.Context, s *models.Session) error
}

// seedPhone applies a client-supplied phone to a session without a phone yet.
func seedPhone(s *models.Session, raw string) bool {
	if raw == "" || !s.Slots.IsEmpty(models.SlotPhone) {
		return false
	}
	cc, phone := slots.ParsePhone(raw)
	if phone == "" {
		return false
	}
	s.Slots.Phone = phone
	if s.Slots.IsEmpty(models.SlotCountryCode) {
		s.Slots.CountryCode = cc
	}
	return true
}
