package api

import (
	"errors"
	"time"
)

// Search errors
var (
	ErrEmptyQuery   = errors.New("search query cannot be empty")
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
)

// SearchRequest represents a search query request
type SearchRequest struct {
	// Query is the search query text
	Query string `json:"query"`

	// Limit is the maximum number of results to return (default: 10, max: 100)
	Limit int `json:"limit,omitempty"`
}

// SearchResult represents a single search result
type SearchResult struct {
	// Document ID
	ID string `json:"id"`

	// Rendered message or thread content
	Content string `json:"content"`

	// Relevance score (higher is more relevant)
	Score float64 `json:"score"`

	// Archive metadata
	Channel    string    `json:"channel"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	IsThread   bool      `json:"isThread"`
	ReplyCount int       `json:"replyCount,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
}

// SearchResponse represents the search API response
type SearchResponse struct {
	// Search results
	Results []SearchResult `json:"results"`

	// Number of results returned in this response
	Count int `json:"count"`

	// Query processing time in milliseconds
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

// Validate validates the search request and applies defaults.
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return ErrEmptyQuery
	}

	if r.Limit <= 0 {
		r.Limit = 10
	} else if r.Limit > 100 {
		r.Limit = 100
	}

	return nil
}
