package models

import "time"

// Stage is the current phase of a booking conversation.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageCollecting Stage = "collecting"
	StageConfirming Stage = "confirming"
	StageBooked     Stage = "booked"
	StageDone       Stage = "done"
)

// Conversation roles recorded in the history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryEntry is one line of the diagnostic conversation log.
type HistoryEntry struct {
	At   time.Time `json:"at"`
	Role string    `json:"role"`
	Text string    `json:"text"`
}

// Proposal is the computed, not yet persisted booking awaiting confirmation.
type Proposal struct {
	Mode        string   `json:"mode"`
	Name        string   `json:"name"`
	CountryCode string   `json:"country_code"`
	Phone       string   `json:"phone"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Genre       string   `json:"genre"`
	Addons      []string `json:"addons,omitempty"`
	Amount      int      `json:"amount"`
}

// Session is the mutable state of one conversation.
type Session struct {
	ID            string         `json:"id"`
	Stage         Stage          `json:"stage"`
	Slots         SlotSet        `json:"slots"`
	Proposed      *Proposal      `json:"proposed,omitempty"`
	LastBookingID string         `json:"last_booking_id,omitempty"`
	Editing       bool           `json:"editing,omitempty"`
	History       []HistoryEntry `json:"history,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewSession returns an idle session with no slots.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Stage:     StageIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Record appends a history line.
func (s *Session) Record(role, text string) {
	s.History = append(s.History, HistoryEntry{At: time.Now().UTC(), Role: role, Text: text})
}

// Snapshot is the read-only view of a session handed to the interpreter.
type Snapshot struct {
	Stage         Stage   `json:"stage"`
	Slots         SlotSet `json:"slots"`
	LastBookingID string  `json:"last_booking,omitempty"`
}

// Snapshot copies the parts of the session relevant to interpretation.
func (s *Session) Snapshot() Snapshot {
	slots := s.Slots
	slots.Addons = append([]string(nil), s.Slots.Addons...)
	return Snapshot{Stage: s.Stage, Slots: slots, LastBookingID: s.LastBookingID}
}
