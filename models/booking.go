package models

import "time"

// BookingStatus values.
const (
	PaymentPending  = "pending"
	StatusCancelled = "cancelled"
)

// Booking is a persisted, confirmed booking.
type Booking struct {
	ID             string    `json:"id" bson:"id"`
	SessionID      string    `json:"sessionId" bson:"sessionId"`
	CountryCode    string    `json:"countryCode" bson:"countryCode"`
	Phone          string    `json:"phone" bson:"phone"`
	Name           string    `json:"name" bson:"name"`
	Type           string    `json:"type" bson:"type"`
	Category       string    `json:"category" bson:"category"`
	BaseAmount     float64   `json:"baseAmount" bson:"baseAmount"`
	Addons         []string  `json:"addons" bson:"addons"`
	CustomFeatures []string  `json:"customFeatures" bson:"customFeatures"`
	Date           string    `json:"date" bson:"date"`
	Time           string    `json:"time" bson:"time"`
	Status         string    `json:"status" bson:"status"`
	FinalAmount    int       `json:"finalAmount" bson:"finalAmount"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Cancelled reports whether the booking has been cancelled.
func (b *Booking) Cancelled() bool {
	return b.Status == StatusCancelled
}
