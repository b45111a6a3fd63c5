package dialogue

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// DateTimeError explains why a date and time were rejected.
type DateTimeError struct {
	Reason string
}

func (e *DateTimeError) Error() string { return e.Reason }

// DateTimeValidator checks that a date and time describe a future instant.
type DateTimeValidator interface {
	Validate(date, clock string) (time.Time, error)
}

// ValidatorFunc adapts a function to DateTimeValidator.
type ValidatorFunc func(date, clock string) (time.Time, error)

func (f ValidatorFunc) Validate(date, clock string) (time.Time, error) { return f(date, clock) }

var (
	nextWeekday = regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	nextWeek    = regexp.MustCompile(`(?i)\bnext\s+week\b`)
)

// parserText rewrites the relative phrases the slot extractor accepts into
// forms the date parser reads. "next friday" is the coming friday and "next
// week" is seven days from now.
func parserText(text string, now time.Time) string {
	text = nextWeekday.ReplaceAllString(text, "$1")
	return nextWeek.ReplaceAllString(text, now.AddDate(0, 0, 7).Format("2 January 2006"))
}

// DateParserValidator parses natural-language dates, preferring future
// readings. The raw slot text is never rewritten.
type DateParserValidator struct {
	now func() time.Time
}

func NewDateParserValidator() *DateParserValidator {
	return &DateParserValidator{now: time.Now}
}

func (v *DateParserValidator) Validate(date, clock string) (time.Time, error) {
	text := strings.TrimSpace(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
	if text == "" {
		return time.Time{}, &DateTimeError{Reason: "I need both a date and a time"}
	}
	now := v.now()
	cfg := &dps.Configuration{
		CurrentTime:         now,
		DefaultTimezone:     now.Location(),
		PreferredDateSource: dps.Future,
	}
	parsed, err := dps.Parse(cfg, parserText(text, now))
	if err != nil || parsed.Time.IsZero() {
		return time.Time{}, &DateTimeError{Reason: fmt.Sprintf("I couldn't understand %q as a date and time", text)}
	}
	if !parsed.Time.After(now) {
		return time.Time{}, &DateTimeError{Reason: fmt.Sprintf("%s is in the past", text)}
	}
	return parsed.Time, nil
}
