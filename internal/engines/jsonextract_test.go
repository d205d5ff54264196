package engines

import "testing"

func TestExtractAutoDetectReply(t *testing.T) {
	cases := []struct {
		name         string
		raw          string
		wantText     string
		wantDetected string
		wantErr      bool
	}{
		{
			name:         "strict object",
			raw:          `{"detectedSourceLanguageCode":"ru","translatedText":"Привет"}`,
			wantText:     "Привет",
			wantDetected: "ru",
		},
		{
			name: "fenced with trailing prose",
			raw: "```json\n{\"detectedSourceLanguageCode\":\"ru\",\"translatedText\":\"Привет\"}\n```\n" +
				"I hope this helps!",
			wantText:     "Привет",
			wantDetected: "ru",
		},
		{
			name:         "snake_case variant",
			raw:          `{"detected_source_language_code":"es","translated_text":"Hola"}`,
			wantText:     "Hola",
			wantDetected: "es",
		},
		{
			name:         "legacy key names",
			raw:          `{"detectedSourceLanguage":"de","translation":"Hallo"}`,
			wantText:     "Hallo",
			wantDetected: "de",
		},
		{
			name:         "non-string values coerced",
			raw:          `{"detectedSourceLanguageCode":404,"translatedText":42}`,
			wantText:     "42",
			wantDetected: "404",
		},
		{
			name:         "missing detected language tolerated",
			raw:          `{"translatedText":"hello"}`,
			wantText:     "hello",
			wantDetected: "",
		},
		{
			name:    "no JSON object",
			raw:     "sorry, I cannot help with that",
			wantErr: true,
		},
		{
			name:    "malformed object",
			raw:     `{"translatedText": "unterminated`,
			wantErr: true,
		},
		{
			name:    "object without text field",
			raw:     `{"foo":"bar"}`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, detected, err := extractAutoDetectReply(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got text=%q detected=%q", text, detected)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tc.wantText {
				t.Errorf("text = %q, want %q", text, tc.wantText)
			}
			if detected != tc.wantDetected {
				t.Errorf("detected = %q, want %q", detected, tc.wantDetected)
			}
		})
	}
}
