package engines

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// autoDetectSchemaJSON is the contract the prompt asks the model to follow
// for auto-detect requests: a single-line JSON object with the detected
// source language and the translated text. Sent as a response-format schema
// where the backend supports one, and used locally to validate extracted
// replies before the lenient fallback parse.
const autoDetectSchemaJSON = `{
	"type": "object",
	"properties": {
		"detectedSourceLanguageCode": {"type": "string"},
		"translatedText": {"type": "string"}
	},
	"required": ["detectedSourceLanguageCode", "translatedText"],
	"additionalProperties": false
}`

var autoDetectSchema = jsonschema.MustCompileString("autodetect.json", autoDetectSchemaJSON)

// Key variants seen across prompt revisions. Models drift between camelCase
// and snake_case regardless of what the prompt shows.
var (
	translatedKeys = []string{
		"translatedText", "translated_text", "translation", "text",
	}
	detectedKeys = []string{
		"detectedSourceLanguageCode", "detected_source_language_code",
		"detectedSourceLanguage", "detected_source_language",
	}
)

// extractAutoDetectReply pulls (translatedText, detectedSource) out of a raw
// auto-detect reply. Models wrap the JSON in code fences or add prose, so
// after the strict parse fails this falls back to slicing from the first '{'
// to the last '}'. Non-string JSON values are coerced to strings.
func extractAutoDetectReply(raw string) (text, detected string, err error) {
	candidate := strings.TrimSpace(raw)

	// Strict path: the reply is exactly the contract object.
	var strict struct {
		DetectedSourceLanguageCode string `json:"detectedSourceLanguageCode"`
		TranslatedText             string `json:"translatedText"`
	}
	var probe any
	if json.Unmarshal([]byte(candidate), &probe) == nil && autoDetectSchema.Validate(probe) == nil {
		if json.Unmarshal([]byte(candidate), &strict) == nil {
			return strict.TranslatedText, strict.DetectedSourceLanguageCode, nil
		}
	}

	// Lenient path: locate the object inside fences/prose.
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return "", "", fmt.Errorf("no JSON object in auto-detect reply")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate[start:end+1]), &obj); err != nil {
		return "", "", fmt.Errorf("malformed JSON in auto-detect reply: %w", err)
	}

	text, ok := lookupString(obj, translatedKeys)
	if !ok {
		return "", "", fmt.Errorf("auto-detect reply missing translated text")
	}
	detected, _ = lookupString(obj, detectedKeys)
	return text, detected, nil
}

func lookupString(obj map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			return s, true
		default:
			return fmt.Sprint(s), true
		}
	}
	return "", false
}
