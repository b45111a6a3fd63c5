package bookingRepo

import (
	"context"
	"errors"
	"strings"

	"bookingbot/models"

	"github.com/google/uuid"
)

// ErrBookingNotFound is returned when no booking matches the given id.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepository persists confirmed bookings.
type BookingRepository interface {
	Save(ctx context.Context, booking models.Booking) (string, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Cancel(ctx context.Context, id string) error
}

// NewBookingID returns a short upper-case hex booking identifier. It always
// carries a letter so it cannot be read as a phone number.
func NewBookingID() string {
	for {
		id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
		if strings.ContainsAny(id, "ABCDEF") {
			return id
		}
	}
}
