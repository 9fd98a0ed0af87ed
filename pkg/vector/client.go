package vector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// ClassName is the Weaviate class holding indexed archive documents.
const ClassName = "SlackMessage"

// Document represents an archive document stored in the search index. One
// document is either a standalone message or a whole thread flattened to
// text.
type Document struct {
	ID         string
	Content    string
	Channel    string
	Author     string
	AuthorName string
	CreatedAt  time.Time
	IsThread   bool
	ReplyCount int
	Tags       []string

	// Score is only populated on search results.
	Score float64
}

// Client interface for search index operations
type Client interface {
	// Initialize sets up the index schema
	Initialize(ctx context.Context) error

	// Store stores a document
	Store(ctx context.Context, doc Document) error

	// Search performs a BM25 keyword search
	Search(ctx context.Context, query string, limit int) ([]Document, error)

	// Delete removes a document by ID
	Delete(ctx context.Context, id string) error

	// HealthCheck verifies the connection to the index
	HealthCheck(ctx context.Context) error
}

// WeaviateClient implements the Client interface for Weaviate
type WeaviateClient struct {
	client *weaviate.Client
	scheme string
	host   string
}

// NewWeaviateClient creates a new Weaviate client
func NewWeaviateClient(scheme, host string, apiKey string) (*WeaviateClient, error) {
	if host == "" {
		return nil, fmt.Errorf("weaviate host cannot be empty")
	}

	cfg := weaviate.Config{
		Scheme: scheme,
		Host:   host,
	}

	// Add API key authentication if provided
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateClient{
		client: client,
		scheme: scheme,
		host:   host,
	}, nil
}

// Initialize sets up the Weaviate schema. Documents carry no vectors; search
// runs over the inverted index only.
func (c *WeaviateClient) Initialize(ctx context.Context) error {
	exists, err := c.client.Schema().ClassExistenceChecker().
		WithClassName(ClassName).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check class existence: %w", err)
	}

	if exists {
		return nil
	}

	classObj := &models.Class{
		Class:       ClassName,
		Description: "A message or thread from a converted Slack export",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:        "content",
				DataType:    []string{"text"},
				Description: "The rendered text of the message or thread",
			},
			{
				Name:        "channel",
				DataType:    []string{"string"},
				Description: "Channel the message was posted in",
			},
			{
				Name:        "author",
				DataType:    []string{"string"},
				Description: "Author user id",
			},
			{
				Name:        "authorName",
				DataType:    []string{"string"},
				Description: "Resolved author display name",
			},
			{
				Name:        "createdAt",
				DataType:    []string{"date"},
				Description: "Timestamp of the message or thread head",
			},
			{
				Name:        "isThread",
				DataType:    []string{"boolean"},
				Description: "Whether the document is a whole thread",
			},
			{
				Name:        "replyCount",
				DataType:    []string{"int"},
				Description: "Number of replies for thread documents",
			},
			{
				Name:        "tags",
				DataType:    []string{"string[]"},
				Description: "Tags associated with the document",
			},
		},
	}

	err = c.client.Schema().ClassCreator().
		WithClass(classObj).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create class schema: %w", err)
	}

	return nil
}

// Store stores a document in Weaviate
func (c *WeaviateClient) Store(ctx context.Context, doc Document) error {
	dataObj := map[string]interface{}{
		"content":    doc.Content,
		"channel":    doc.Channel,
		"author":     doc.Author,
		"authorName": doc.AuthorName,
		"createdAt":  doc.CreatedAt.Format(time.RFC3339),
		"isThread":   doc.IsThread,
		"replyCount": doc.ReplyCount,
		"tags":       doc.Tags,
	}

	_, err := c.client.Data().Creator().
		WithClassName(ClassName).
		WithID(doc.ID).
		WithProperties(dataObj).
		Do(ctx)

	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	return nil
}

// Search performs a BM25 keyword search over document content
func (c *WeaviateClient) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	result, err := c.client.GraphQL().Get().
		WithClassName(ClassName).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "channel"},
			graphql.Field{Name: "author"},
			graphql.Field{Name: "authorName"},
			graphql.Field{Name: "createdAt"},
			graphql.Field{Name: "isThread"},
			graphql.Field{Name: "replyCount"},
			graphql.Field{Name: "tags"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{
				{Name: "id"},
				{Name: "score"},
			}},
		).
		WithBM25(c.client.GraphQL().Bm25ArgBuilder().
			WithQuery(query).
			WithProperties("content", "authorName", "channel")).
		WithLimit(limit).
		Do(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search query failed: %s", result.Errors[0].Message)
	}

	return parseSearchResults(result)
}

// Delete removes a document from Weaviate
func (c *WeaviateClient) Delete(ctx context.Context, id string) error {
	err := c.client.Data().Deleter().
		WithClassName(ClassName).
		WithID(id).
		Do(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// HealthCheck verifies Weaviate connection
func (c *WeaviateClient) HealthCheck(ctx context.Context) error {
	ready, err := c.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate health check failed: %w", err)
	}

	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}

	return nil
}

// parseSearchResults converts Weaviate GraphQL results to a Document slice
func parseSearchResults(result *models.GraphQLResponse) ([]Document, error) {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected search response shape: missing Get")
	}

	raw, ok := get[ClassName].([]interface{})
	if !ok {
		// No matches comes back as an empty or absent list.
		return []Document{}, nil
	}

	documents := make([]Document, 0, len(raw))

	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		doc := Document{
			Content:    stringField(obj, "content"),
			Channel:    stringField(obj, "channel"),
			Author:     stringField(obj, "author"),
			AuthorName: stringField(obj, "authorName"),
		}

		if b, ok := obj["isThread"].(bool); ok {
			doc.IsThread = b
		}
		if n, ok := obj["replyCount"].(float64); ok {
			doc.ReplyCount = int(n)
		}
		if ts := stringField(obj, "createdAt"); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				doc.CreatedAt = t
			}
		}
		if tags, ok := obj["tags"].([]interface{}); ok {
			for _, tag := range tags {
				if s, ok := tag.(string); ok {
					doc.Tags = append(doc.Tags, s)
				}
			}
		}

		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			doc.ID = stringField(additional, "id")
			// BM25 scores come back as strings in _additional.
			switch score := additional["score"].(type) {
			case string:
				if f, err := strconv.ParseFloat(score, 64); err == nil {
					doc.Score = f
				}
			case float64:
				doc.Score = score
			}
		}

		documents = append(documents, doc)
	}

	return documents, nil
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}
