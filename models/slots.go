package models

import "strings"

// SlotKey names a single piece of booking information collected from the user.
type SlotKey string

const (
	SlotMode           SlotKey = "mode"
	SlotName           SlotKey = "name"
	SlotCountryCode    SlotKey = "country_code"
	SlotPhone          SlotKey = "phone"
	SlotDate           SlotKey = "date"
	SlotTime           SlotKey = "time"
	SlotGenre          SlotKey = "genre"
	SlotAddons         SlotKey = "addons"
	SlotCustomFeatures SlotKey = "custom_features"
	SlotBookingID      SlotKey = "booking_id"
)

// RequiredSlots is the order in which missing booking details are requested.
var RequiredSlots = []SlotKey{
	SlotMode,
	SlotName,
	SlotCountryCode,
	SlotPhone,
	SlotDate,
	SlotTime,
	SlotGenre,
}

// Booking modes.
const (
	ModeAgent = "agent"
	ModeCall  = "call"
)

// SlotSet holds the slots collected for one conversation.
type SlotSet struct {
	Mode           string   `json:"mode,omitempty" bson:"mode,omitempty"`
	Name           string   `json:"name,omitempty" bson:"name,omitempty"`
	CountryCode    string   `json:"country_code,omitempty" bson:"countryCode,omitempty"`
	Phone          string   `json:"phone,omitempty" bson:"phone,omitempty"`
	Date           string   `json:"date,omitempty" bson:"date,omitempty"`
	Time           string   `json:"time,omitempty" bson:"time,omitempty"`
	Genre          string   `json:"genre,omitempty" bson:"genre,omitempty"`
	Addons         []string `json:"addons,omitempty" bson:"addons,omitempty"`
	CustomFeatures string   `json:"custom_features,omitempty" bson:"customFeatures,omitempty"`
	ConfirmedPhone bool     `json:"confirmed_phone,omitempty" bson:"confirmedPhone,omitempty"`
	AskedConfirm   bool     `json:"asked_confirm,omitempty" bson:"askedConfirm,omitempty"`
	BookingID      string   `json:"booking_id,omitempty" bson:"bookingId,omitempty"`
}

// Get returns the textual value of a slot. Add-ons are joined with commas.
func (s *SlotSet) Get(key SlotKey) string {
	switch key {
	case SlotMode:
		return s.Mode
	case SlotName:
		return s.Name
	case SlotCountryCode:
		return s.CountryCode
	case SlotPhone:
		return s.Phone
	case SlotDate:
		return s.Date
	case SlotTime:
		return s.Time
	case SlotGenre:
		return s.Genre
	case SlotAddons:
		return strings.Join(s.Addons, ",")
	case SlotCustomFeatures:
		return s.CustomFeatures
	case SlotBookingID:
		return s.BookingID
	}
	return ""
}

// Set writes a textual slot value. Add-ons are split on commas.
func (s *SlotSet) Set(key SlotKey, value string) {
	switch key {
	case SlotMode:
		s.Mode = value
	case SlotName:
		s.Name = value
	case SlotCountryCode:
		s.CountryCode = value
	case SlotPhone:
		s.Phone = value
	case SlotDate:
		s.Date = value
	case SlotTime:
		s.Time = value
	case SlotGenre:
		s.Genre = value
	case SlotAddons:
		s.Addons = nil
		for _, a := range strings.Split(value, ",") {
			if a = strings.TrimSpace(a); a != "" {
				s.Addons = append(s.Addons, a)
			}
		}
	case SlotCustomFeatures:
		s.CustomFeatures = value
	case SlotBookingID:
		s.BookingID = value
	}
}

// IsEmpty reports whether the slot has no value yet.
func (s *SlotSet) IsEmpty(key SlotKey) bool {
	return s.Get(key) == ""
}

// Keys returns every slot key that currently holds a value.
func (s *SlotSet) Keys() []SlotKey {
	var keys []SlotKey
	for _, k := range AllSlots {
		if !s.IsEmpty(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// AllSlots lists every value-bearing slot in a stable order.
var AllSlots = []SlotKey{
	SlotMode,
	SlotName,
	SlotCountryCode,
	SlotPhone,
	SlotDate,
	SlotTime,
	SlotGenre,
	SlotAddons,
	SlotCustomFeatures,
	SlotBookingID,
}

// FullPhone returns the country code and phone concatenated.
func (s *SlotSet) FullPhone() string {
	return s.CountryCode + s.Phone
}
