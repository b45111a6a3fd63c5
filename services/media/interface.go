package media

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by providers with nothing to serve.
var ErrNotConfigured = errors.New("media: not configured")

// QRGenerator renders a payment QR for a booking and returns where it lives.
type QRGenerator interface {
	GenerateQR(ctx context.Context, bookingID string, amount int, phone string) (string, error)
}

// Uploader stores a PNG under name and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, name string, png []byte) (string, error)
}

// CatalogProvider returns a reference to the service catalog.
type CatalogProvider interface {
	Catalog(ctx context.Context) (string, error)
}

// Location is the business address and a map link.
type Location struct {
	URL     string
	Address string
}

// LocationProvider returns the business location.
type LocationProvider interface {
	Location(ctx context.Context) (Location, error)
}
