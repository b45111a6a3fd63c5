package notification

import (
	"context"
	"errors"
)

// ErrNoRecipient is returned when a message has no destination.
var ErrNoRecipient = errors.New("notification: recipient is required")

// Sender delivers short text messages. Callers treat every error as
// non-fatal.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}
