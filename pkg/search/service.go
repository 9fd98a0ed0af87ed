package search

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/boom-roasted/slack-export-to-md/pkg/vector"
)

// Query is the payload of a "search" WebSocket message.
type Query struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Result is one hit in a "results" payload.
type Result struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Channel    string    `json:"channel"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	IsThread   bool      `json:"isThread"`
	ReplyCount int       `json:"replyCount,omitempty"`
	Score      float64   `json:"score"`
}

// Results is the payload sent back for a search query.
type Results struct {
	Query   string   `json:"query"`
	Count   int      `json:"count"`
	Results []Result `json:"results"`
}

// Service answers search queries against the archive index.
type Service struct {
	store vector.Client
}

// NewService creates a new search service
func NewService(store vector.Client) *Service {
	return &Service{store: store}
}

// Search runs a keyword search and shapes the hits for transport.
func (s *Service) Search(ctx context.Context, query string, limit int) (*Results, error) {
	if limit <= 0 {
		limit = 10
	}

	docs, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, Result{
			ID:         doc.ID,
			Content:    doc.Content,
			Channel:    doc.Channel,
			Author:     doc.Author,
			AuthorName: doc.AuthorName,
			CreatedAt:  doc.CreatedAt,
			IsThread:   doc.IsThread,
			ReplyCount: doc.ReplyCount,
			Score:      doc.Score,
		})
	}

	return &Results{
		Query:   query,
		Count:   len(results),
		Results: results,
	}, nil
}

// HandleSearchMessage processes a search message from a WebSocket client.
func (s *Service) HandleSearchMessage(ctx context.Context, client *Client, msg Message) {
	var query Query
	if err := json.Unmarshal(msg.Payload, &query); err != nil {
		s.sendError(client, msg.ID, "Invalid search message format")
		return
	}

	if query.Query == "" {
		s.sendError(client, msg.ID, "Search query cannot be empty")
		return
	}

	results, err := s.Search(ctx, query.Query, query.Limit)
	if err != nil {
		s.sendError(client, msg.ID, "Search failed: "+err.Error())
		return
	}

	payload, err := json.Marshal(results)
	if err != nil {
		s.sendError(client, msg.ID, "Failed to encode results")
		return
	}

	client.send <- Message{
		Type:      MessageTypeResults,
		ID:        uuid.New().String(),
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// sendError sends an error message back to the client.
func (s *Service) sendError(client *Client, msgID, errMsg string) {
	client.send <- Message{
		Type:      MessageTypeError,
		ID:        msgID,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
}
