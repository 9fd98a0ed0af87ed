package processing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
	"github.com/boom-roasted/slack-export-to-md/pkg/vector"
)

// DocumentProcessor converts assembled channel content into search index
// documents. A standalone message becomes one document; a thread becomes one
// document holding the head and every reply, so a search hit always surfaces
// the whole conversation.
type DocumentProcessor struct {
	users map[string]models.User
}

// NewDocumentProcessor creates a new document processor. users may be nil;
// author names then stay raw ids.
func NewDocumentProcessor(users map[string]models.User) *DocumentProcessor {
	return &DocumentProcessor{users: users}
}

// ProcessChannel converts every timeline entry of a channel into documents.
func (p *DocumentProcessor) ProcessChannel(channel *models.Channel) ([]vector.Document, error) {
	documents := make([]vector.Document, 0, len(channel.Timeline))

	for _, entry := range channel.Timeline {
		doc, err := p.ProcessEntry(channel.Name, entry)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			documents = append(documents, *doc)
		}
	}

	return documents, nil
}

// ProcessEntry converts one timeline entry. Entries with no text at all are
// dropped rather than indexed as empty documents.
func (p *DocumentProcessor) ProcessEntry(channel string, entry models.TimelineEntry) (*vector.Document, error) {
	if entry.Thread != nil {
		return p.processThread(channel, entry.Thread)
	}
	return p.processMessage(channel, *entry.Message)
}

func (p *DocumentProcessor) processMessage(channel string, m models.Message) (*vector.Document, error) {
	if m.Text == "" {
		return nil, nil
	}

	createdAt, err := timestampTime(m.TS)
	if err != nil {
		return nil, err
	}

	return &vector.Document{
		ID:         documentID(channel, m.TS),
		Content:    m.Text,
		Channel:    channel,
		Author:     m.User,
		AuthorName: p.authorName(m.User),
		CreatedAt:  createdAt,
		Tags:       []string{"slack", channel},
	}, nil
}

func (p *DocumentProcessor) processThread(channel string, t *models.Thread) (*vector.Document, error) {
	createdAt, err := timestampTime(t.TS)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(t.Replies)+1)
	lines = append(lines, t.Text)
	for _, reply := range t.Replies {
		lines = append(lines, reply.Text)
	}

	tags := []string{"slack", channel, "thread"}
	if len(t.Replies) > 0 {
		tags = append(tags, "has-replies")
	}

	return &vector.Document{
		ID:         documentID(channel, t.ID),
		Content:    strings.Join(lines, "\n"),
		Channel:    channel,
		Author:     t.User,
		AuthorName: p.authorName(t.User),
		CreatedAt:  createdAt,
		IsThread:   true,
		ReplyCount: len(t.Replies),
		Tags:       tags,
	}, nil
}

// authorName resolves a user id to initials when a directory is present.
func (p *DocumentProcessor) authorName(id string) string {
	if p.users == nil {
		return id
	}
	if user, ok := p.users[id]; ok {
		return user.Initials
	}
	return id
}

// documentID derives a stable UUID from channel and timestamp so re-indexing
// the same export overwrites instead of duplicating.
func documentID(channel, ts string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(channel+"/"+ts)).String()
}

// timestampTime converts a decimal seconds-since-epoch string to time.Time.
func timestampTime(ts string) (time.Time, error) {
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}

	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}
