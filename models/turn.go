package models

// TurnRequest is one inbound utterance for a session.
type TurnRequest struct {
	SessionID string
	Text      string
	Audio     []byte
	AudioMIME string
	SeedPhone string
}

// Payload carries machine-readable extras for the presentation layer.
type Payload struct {
	Proposal     *Proposal `json:"proposal,omitempty"`
	BookingID    string    `json:"booking_id,omitempty"`
	QRURL        string    `json:"qr_url,omitempty"`
	CatalogURL   string    `json:"catalog_url,omitempty"`
	LocationURL  string    `json:"location_url,omitempty"`
	LocationText string    `json:"location_text,omitempty"`
	Cancelled    string    `json:"cancelled,omitempty"`
}

// TurnResponse is the reply produced for one turn.
type TurnResponse struct {
	ReplyText  string  `json:"reply_text"`
	Transcript *string `json:"transcript"`
	Structured Payload `json:"structured"`
}
