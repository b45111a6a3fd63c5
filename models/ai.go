package models

// Intent is the closed set of interpretations an utterance can receive.
type Intent string

const (
	IntentBookAgent   Intent = "book_agent"
	IntentBookCall    Intent = "book_call"
	IntentCancel      Intent = "cancel"
	IntentGetCatalog  Intent = "get_catalog"
	IntentGetLocation Intent = "get_location"
	IntentPay         Intent = "pay"
	IntentConfirm     Intent = "confirm"
	IntentSmallTalk   Intent = "small_talk"
	IntentUnknown     Intent = "unknown"
)

// AllowedIntents is every intent the interpreter may return.
var AllowedIntents = []Intent{
	IntentBookAgent,
	IntentBookCall,
	IntentCancel,
	IntentGetCatalog,
	IntentGetLocation,
	IntentPay,
	IntentConfirm,
	IntentSmallTalk,
	IntentUnknown,
}

// Valid reports whether the intent belongs to the allowed set.
func (i Intent) Valid() bool {
	for _, a := range AllowedIntents {
		if a == i {
			return true
		}
	}
	return false
}

// IsQuickAction reports whether the intent is a stage-independent command.
func (i Intent) IsQuickAction() bool {
	switch i {
	case IntentCancel, IntentGetCatalog, IntentGetLocation, IntentPay:
		return true
	}
	return false
}

// StyleHints describe the user's tone for the rewrite step.
type StyleHints struct {
	Formality string `json:"formality"`
	UsesSlang bool   `json:"uses_slang"`
}

// DefaultStyleHints is used when the interpreter does not supply any.
var DefaultStyleHints = StyleHints{Formality: "formal"}

// Interpretation sources.
const (
	SourceRules = "rules"
	SourceModel = "model"
)

// Interpretation is the classifier's reading of one utterance.
type Interpretation struct {
	Intent     Intent     `json:"intent"`
	Confidence float64    `json:"confidence"`
	Slots      SlotSet    `json:"slots"`
	StyleHints StyleHints `json:"style_hints"`
	Source     string     `json:"source"`
}
