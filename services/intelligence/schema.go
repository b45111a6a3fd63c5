package ai

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"bookingbot/models"
)

const interpretationSchemaURL = "bookingbot://interpretation.json"

// interpretationSchema constrains the model's interpretation object. Intent is
// left as a free string so an out-of-set value degrades to unknown instead of
// discarding the rest of the object.
const interpretationSchema = `{
  "type": "object",
  "required": ["intent"],
  "properties": {
    "intent": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "slots": {
      "type": "object",
      "additionalProperties": {
        "anyOf": [
          {"type": "string"},
          {"type": "array", "items": {"type": "string"}},
          {"type": "null"}
        ]
      }
    },
    "style_hints": {
      "type": "object",
      "properties": {
        "formality": {"type": "string"},
        "uses_slang": {"type": "boolean"}
      }
    }
  }
}`

func compileInterpretationSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(interpretationSchemaURL, strings.NewReader(interpretationSchema)); err != nil {
		panic(fmt.Sprintf("interpretation schema: %v", err))
	}
	return c.MustCompile(interpretationSchemaURL)
}

func intentList() string {
	names := make([]string, len(models.AllowedIntents))
	for i, in := range models.AllowedIntents {
		names[i] = string(in)
	}
	return strings.Join(names, ", ")
}

func interpretSystemPrompt() string {
	return "You are an intent classifier for a booking assistant. " +
		"Return ONLY one JSON object with keys intent, confidence, slots, style_hints. " +
		"intent must be one of: " + intentList() + ". " +
		"slots may contain mode, name, country_code, phone, date, time, genre, addons (array), custom_features. " +
		"style_hints has formality (formal|casual) and uses_slang (boolean). " +
		"Do not invent values that are not present in the user text."
}
