package render

import (
	"strings"
	"testing"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
)

func testUsers() map[string]models.User {
	return map[string]models.User{
		"U01234567": {ID: "U01234567", Name: "jsmith", RealNameNormalized: "John (Johnny) Smith", Initials: "JS"},
		"U87654321": {ID: "U87654321", Name: "jdoe", RealNameNormalized: "Jane Doe", Initials: "JD"},
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		ts      string
		want    string
		wantErr bool
	}{
		{
			name: "epoch",
			ts:   "0",
			want: "1970-01-01 00:00:00 UTC",
		},
		{
			name: "with microseconds",
			ts:   "1599934232.150700",
			want: "2020-09-12 18:10:32 UTC",
		},
		{
			name: "whole seconds",
			ts:   "1599934232",
			want: "2020-09-12 18:10:32 UTC",
		},
		{
			name:    "not a number",
			ts:      "yesterday",
			wantErr: true,
		},
		{
			name:    "empty",
			ts:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatTimestamp(tt.ts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("formatTimestamp() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("formatTimestamp() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderer_Message(t *testing.T) {
	m := models.Message{Text: "hello <@U87654321>", User: "U01234567", TS: "0"}

	t.Run("with user directory", func(t *testing.T) {
		r := NewRenderer(testUsers())
		got, err := r.Message(m)
		if err != nil {
			t.Fatalf("Message() error = %v", err)
		}
		want := "**JS:** hello **@JD** *[1970-01-01 00:00:00 UTC]*"
		if got != want {
			t.Errorf("Message() = %q, want %q", got, want)
		}
	})

	t.Run("without user directory", func(t *testing.T) {
		// Raw ids pass through untouched, no error.
		r := NewRenderer(nil)
		got, err := r.Message(m)
		if err != nil {
			t.Fatalf("Message() error = %v", err)
		}
		want := "**U01234567:** hello <@U87654321> *[1970-01-01 00:00:00 UTC]*"
		if got != want {
			t.Errorf("Message() = %q, want %q", got, want)
		}
	})

	t.Run("unknown author is fatal", func(t *testing.T) {
		r := NewRenderer(testUsers())
		_, err := r.Message(models.Message{Text: "hi", User: "U00000000", TS: "0"})
		if err == nil {
			t.Error("Expected error for unknown author id")
		}
	})

	t.Run("unknown mention is fatal", func(t *testing.T) {
		r := NewRenderer(testUsers())
		_, err := r.Message(models.Message{Text: "ping <@U00000000>", User: "U01234567", TS: "0"})
		if err == nil {
			t.Error("Expected error for unknown mentioned id")
		}
	})

	t.Run("invalid timestamp is fatal", func(t *testing.T) {
		r := NewRenderer(testUsers())
		_, err := r.Message(models.Message{Text: "hi", User: "U01234567", TS: "nope"})
		if err == nil {
			t.Error("Expected error for invalid timestamp")
		}
	})
}

func TestRenderer_MentionPattern(t *testing.T) {
	r := NewRenderer(testUsers())

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "single mention",
			text: "cc <@U87654321>",
			want: "cc **@JD**",
		},
		{
			name: "multiple mentions",
			text: "<@U01234567> and <@U87654321>",
			want: "**@JS** and **@JD**",
		},
		{
			name: "lowercase id is not a mention",
			text: "<@u87654321>",
			want: "<@u87654321>",
		},
		{
			name: "plain text untouched",
			text: "no mentions here",
			want: "no mentions here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.replaceMentions(tt.text)
			if err != nil {
				t.Fatalf("replaceMentions() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("replaceMentions() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderer_Thread(t *testing.T) {
	r := NewRenderer(testUsers())

	thread := &models.Thread{
		Message: models.Message{Text: "question", User: "U01234567", TS: "0", ThreadTS: "0"},
		ID:      "0",
		Replies: []models.Message{
			{Text: "answer one", User: "U87654321", TS: "60", ThreadTS: "0"},
			{Text: "answer two", User: "U01234567", TS: "120", ThreadTS: "0"},
		},
	}

	got, err := r.Thread(thread)
	if err != nil {
		t.Fatalf("Thread() error = %v", err)
	}

	want := "## **JS:** question *[1970-01-01 00:00:00 UTC]*\n\n" +
		"### Replies\n" +
		"**JD:** answer one *[1970-01-01 00:01:00 UTC]*\n\n" +
		"**JS:** answer two *[1970-01-01 00:02:00 UTC]*"
	if got != want {
		t.Errorf("Thread() = %q, want %q", got, want)
	}
}

func TestRenderer_Channel(t *testing.T) {
	r := NewRenderer(testUsers())

	head := models.Message{Text: "question", User: "U01234567", TS: "30", ThreadTS: "30"}
	thread := &models.Thread{Message: head, ID: "30"}
	first := models.Message{Text: "hello", User: "U87654321", TS: "0"}
	last := models.Message{Text: "bye", User: "U87654321", TS: "90"}

	channel := &models.Channel{
		Name: "general",
		Timeline: []models.TimelineEntry{
			{Message: &first},
			{Thread: thread},
			{Message: &last},
		},
	}

	got, err := r.Channel(channel)
	if err != nil {
		t.Fatalf("Channel() error = %v", err)
	}

	if !strings.HasPrefix(got, "# general channel, in markdown\n\n") {
		t.Errorf("Channel() missing title, got prefix %q", got[:40])
	}

	// Threads are visually closed out with a rule.
	if !strings.Contains(got, "### Replies\n\n\n---\n\n") && !strings.Contains(got, "---\n\n") {
		t.Error("Channel() missing thread closing rule")
	}

	// Entries appear in timeline order.
	hello := strings.Index(got, "hello")
	question := strings.Index(got, "question")
	bye := strings.Index(got, "bye")
	if !(hello < question && question < bye) {
		t.Errorf("Channel() entries out of order: hello=%d question=%d bye=%d", hello, question, bye)
	}
}
