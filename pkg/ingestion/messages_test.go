package ingestion

import (
	"strings"
	"testing"
)

func TestNewMessageParser(t *testing.T) {
	// Test with default config
	parser := NewMessageParser()
	if !parser.config.LogSkipped {
		t.Error("Expected default LogSkipped to be true")
	}

	// Test with custom config
	parser2 := NewMessageParser(ParserConfig{LogSkipped: false})
	if parser2.config.LogSkipped {
		t.Error("Expected LogSkipped to be false")
	}
}

func TestMessageParser_Parse(t *testing.T) {
	validJSON := `[
		{"text": "Hello world", "user": "U01234567", "ts": "1599934232.150700"},
		{"text": "This is a reply", "user": "U87654321", "ts": "1599934240.150700", "thread_ts": "1599934232.150700"},
		{"text": "<@U01234567> has joined the channel", "user": "U01234567", "ts": "1599934250.150700", "subtype": "channel_join"}
	]`

	parser := NewMessageParser(ParserConfig{LogSkipped: false})
	messages, err := parser.Parse(strings.NewReader(validJSON), "2020-09-12.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// The channel_join record carries a subtype and must never be content.
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}

	if messages[0].Text != "Hello world" {
		t.Errorf("Expected text 'Hello world', got '%s'", messages[0].Text)
	}
	if messages[0].User != "U01234567" {
		t.Errorf("Expected user 'U01234567', got '%s'", messages[0].User)
	}
	if messages[0].ThreadTS != "" {
		t.Errorf("Expected empty thread_ts, got '%s'", messages[0].ThreadTS)
	}

	// Check threaded message
	if messages[1].ThreadTS != "1599934232.150700" {
		t.Errorf("Expected thread_ts '1599934232.150700', got '%s'", messages[1].ThreadTS)
	}
}

func TestMessageParser_SubtypeAlwaysSkipped(t *testing.T) {
	// A subtype record is skipped even when every required field is present,
	// and it produces no diagnostic.
	input := `[{"text": "shared a file", "user": "U1", "ts": "1.0", "subtype": "file_share"}]`

	parser := NewMessageParser(ParserConfig{LogSkipped: false})
	messages, err := parser.Parse(strings.NewReader(input), "day.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(messages) != 0 {
		t.Errorf("Expected 0 messages, got %d", len(messages))
	}
	if len(parser.GetErrors()) != 0 {
		t.Errorf("Expected no recorded errors, got %v", parser.GetErrors())
	}
}

func TestMessageParser_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		record  string
		missing string
	}{
		{
			name:    "missing text",
			record:  `{"user": "U1", "ts": "1.0"}`,
			missing: "text",
		},
		{
			name:    "missing user",
			record:  `{"text": "hi", "ts": "1.0"}`,
			missing: "user",
		},
		{
			name:    "missing ts",
			record:  `{"text": "hi", "user": "U1"}`,
			missing: "ts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewMessageParser(ParserConfig{LogSkipped: false})
			messages, err := parser.Parse(strings.NewReader("["+tt.record+"]"), "day.json")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			// The record is skipped whole; no partial message is built.
			if len(messages) != 0 {
				t.Errorf("Expected 0 messages, got %d", len(messages))
			}

			errs := parser.GetErrors()
			if len(errs) != 1 {
				t.Fatalf("Expected 1 recorded error, got %d", len(errs))
			}
			if !strings.Contains(errs[0].Error(), tt.missing) {
				t.Errorf("Expected diagnostic naming %q, got: %v", tt.missing, errs[0])
			}
			if !strings.Contains(errs[0].Error(), "day.json") {
				t.Errorf("Expected diagnostic naming the file, got: %v", errs[0])
			}
		})
	}
}

func TestMessageParser_NonStringField(t *testing.T) {
	input := `[{"text": 42, "user": "U1", "ts": "1.0"}]`

	parser := NewMessageParser(ParserConfig{LogSkipped: false})
	messages, err := parser.Parse(strings.NewReader(input), "day.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(messages) != 0 {
		t.Errorf("Expected 0 messages, got %d", len(messages))
	}
	if len(parser.GetErrors()) != 1 {
		t.Errorf("Expected 1 recorded error, got %d", len(parser.GetErrors()))
	}
}

func TestMessageParser_MalformedFile(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "not JSON",
			input: "this is not json",
		},
		{
			name:  "not a list",
			input: `{"text": "hi"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewMessageParser(ParserConfig{LogSkipped: false})
			_, err := parser.Parse(strings.NewReader(tt.input), "broken.json")
			if err == nil {
				t.Error("Expected fatal error for malformed file")
			}
		})
	}
}

func TestMessageParser_PreservesInputOrder(t *testing.T) {
	// Input order is not sorted; the loader must not reorder.
	input := `[
		{"text": "third", "user": "U1", "ts": "3.0"},
		{"text": "first", "user": "U1", "ts": "1.0"},
		{"text": "second", "user": "U1", "ts": "2.0"}
	]`

	parser := NewMessageParser(ParserConfig{LogSkipped: false})
	messages, err := parser.Parse(strings.NewReader(input), "day.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"third", "first", "second"}
	for i, text := range want {
		if messages[i].Text != text {
			t.Errorf("messages[%d].Text = %q, want %q", i, messages[i].Text, text)
		}
	}
}

func TestMessageParser_Stats(t *testing.T) {
	input := `[
		{"text": "ok", "user": "U1", "ts": "1.0"},
		{"user": "U1", "ts": "2.0"},
		{"text": "meta", "user": "U1", "ts": "3.0", "subtype": "channel_topic"}
	]`

	parser := NewMessageParser(ParserConfig{LogSkipped: false})
	if _, err := parser.Parse(strings.NewReader(input), "day.json"); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	total, processed, skipped := parser.GetStats()
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1", processed)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}
