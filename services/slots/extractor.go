package slots

import (
	"regexp"
	"strconv"
	"strings"

	"bookingbot/models"
)

// Extractor turns an utterance into a partial slot set. Implementations must
// never panic and must drop ambiguous matches silently.
type Extractor interface {
	Extract(text string) models.SlotSet
}

// Genres is the fixed category vocabulary, matched in this order.
var Genres = []string{"gym", "salon", "spa", "restaurant", "plumbing", "electrician", "other"}

type addonRule struct {
	id       string
	keywords []string
}

// addonRules maps add-on ids to the phrases that select them.
var addonRules = []addonRule{
	{id: "web_integration", keywords: []string{"web integration", "website integration"}},
	{id: "payment_integration", keywords: []string{"upi", "payment integration", "payment gateway"}},
	{id: "whatsapp_integration", keywords: []string{"whatsapp integration", "whatsapp api"}},
}

const monthNames = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*`

var (
	namePattern = regexp.MustCompile(`(?i)\b(?:my name is|name is|i am|i'm|this is|name\s*:)\s*([a-z][a-z.]*(?:\s+[a-z][a-z.]*){0,3})`)
	datePattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `|` + monthNames + `\s+\d{1,2}(?:st|nd|rd|th)?|\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}(?:/\d{2,4})?|tomorrow|today|next\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|week))\b`)
	timePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s?(am|pm)\b|\b(\d{1,2}):(\d{2})\b`)
	customCue   = regexp.MustCompile(`(?i)\b(?:custom|features?|add-ons?|addons?)\s*[:\-]\s*(.+)$`)
	bareToken   = regexp.MustCompile(`^[A-Z][A-Za-z.'\-]*$`)
	genreRegexp = map[string]*regexp.Regexp{}
)

func init() {
	for _, g := range Genres {
		genreRegexp[g] = regexp.MustCompile(`(?i)\b` + g + `s?\b`)
	}
}

// notNameWords disqualify a name candidate. They cover booking and action
// vocabulary plus the words that usually follow "i am" in other sentences.
var notNameWords = map[string]bool{
	"book": true, "booking": true, "agent": true, "call": true, "want": true, "need": true,
	"looking": true, "interested": true, "here": true, "fine": true, "good": true, "ok": true,
	"okay": true, "ready": true, "not": true, "sure": true, "going": true, "trying": true,
	"yes": true, "no": true, "confirm": true, "change": true, "cancel": true, "pay": true,
	"catalog": true, "price": true, "location": true, "address": true, "tomorrow": true,
	"today": true, "next": true, "hello": true, "hi": true, "hey": true, "thanks": true,
	"please": true, "a": true, "an": true, "the": true, "for": true, "with": true, "at": true,
	"on": true, "to": true, "from": true, "and": true, "phone": true, "number": true,
	"date": true, "time": true, "qr": true, "upi": true, "offline": true, "menu": true,
	"great": true, "it": true, "me": true, "my": true, "just": true, "back": true, "done": true,
}

// RuleExtractor is the pattern-rule Extractor.
type RuleExtractor struct{}

// NewRuleExtractor returns the default pattern-rule extractor.
func NewRuleExtractor() RuleExtractor { return RuleExtractor{} }

// Extract implements Extractor.
func (RuleExtractor) Extract(text string) models.SlotSet {
	var out models.SlotSet
	t := strings.TrimSpace(text)
	if t == "" {
		return out
	}
	low := strings.ToLower(t)

	out.CountryCode, out.Phone = FindPhone(t)
	if out.Phone == "" {
		out.CountryCode = ""
	}

	if m := namePattern.FindStringSubmatch(t); m != nil {
		out.Name = cleanName(m[1])
	}
	if out.Name == "" {
		out.Name = bareName(t)
	}

	if m := datePattern.FindStringSubmatch(t); m != nil {
		out.Date = m[1]
	}
	out.Time = findTime(t)

	for _, g := range Genres {
		if genreRegexp[g].MatchString(low) {
			out.Genre = g
			break
		}
	}

	for _, rule := range addonRules {
		for _, kw := range rule.keywords {
			if strings.Contains(low, kw) {
				out.Addons = append(out.Addons, rule.id)
				break
			}
		}
	}

	if m := customCue.FindStringSubmatch(t); m != nil {
		out.CustomFeatures = strings.TrimSpace(m[1])
	}
	return out
}

// findTime accepts a number as a time only with a colon or an am/pm marker.
func findTime(text string) string {
	for _, m := range timePattern.FindAllStringSubmatchIndex(text, -1) {
		full := text[m[0]:m[1]]
		var hourStr, minStr string
		twelveHour := m[2] >= 0
		if twelveHour {
			hourStr = text[m[2]:m[3]]
			if m[4] >= 0 {
				minStr = text[m[4]:m[5]]
			}
		} else {
			hourStr = text[m[8]:m[9]]
			minStr = text[m[10]:m[11]]
		}
		hour, _ := strconv.Atoi(hourStr)
		minute := 0
		if minStr != "" {
			minute, _ = strconv.Atoi(minStr)
		}
		if minute > 59 {
			continue
		}
		if twelveHour && (hour < 1 || hour > 12) {
			continue
		}
		if !twelveHour && hour > 23 {
			continue
		}
		return full
	}
	return ""
}

func cleanName(candidate string) string {
	words := strings.Fields(candidate)
	var kept []string
	for _, w := range words {
		lw := strings.ToLower(strings.Trim(w, "."))
		if notNameWords[lw] {
			break
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, " ")
}

// bareName accepts the whole utterance as a name when it is two to four
// capitalised alphabetic tokens with no booking vocabulary.
func bareName(text string) string {
	words := strings.Fields(strings.Trim(text, " .!"))
	if len(words) < 2 || len(words) > 4 {
		return ""
	}
	for _, w := range words {
		if !bareToken.MatchString(w) {
			return ""
		}
		lw := strings.ToLower(strings.Trim(w, "."))
		if notNameWords[lw] || isGenre(lw) {
			return ""
		}
	}
	return strings.Join(words, " ")
}

func isGenre(word string) bool {
	for _, g := range Genres {
		if word == g || word == g+"s" {
			return true
		}
	}
	return false
}
