package processing

import (
	"context"
	"fmt"
	"testing"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
	"github.com/boom-roasted/slack-export-to-md/pkg/vector"
)

// mockVectorClient records stored documents and can fail on demand.
type mockVectorClient struct {
	documents []vector.Document
	failOn    string
}

func (m *mockVectorClient) Initialize(ctx context.Context) error { return nil }

func (m *mockVectorClient) Store(ctx context.Context, doc vector.Document) error {
	if m.failOn != "" && doc.Content == m.failOn {
		return fmt.Errorf("store failed for %s", doc.ID)
	}
	m.documents = append(m.documents, doc)
	return nil
}

func (m *mockVectorClient) Search(ctx context.Context, query string, limit int) ([]vector.Document, error) {
	if limit > len(m.documents) {
		limit = len(m.documents)
	}
	return m.documents[:limit], nil
}

func (m *mockVectorClient) Delete(ctx context.Context, id string) error { return nil }

func (m *mockVectorClient) HealthCheck(ctx context.Context) error { return nil }

func testChannel(name string) *models.Channel {
	a := models.Message{Text: "first", User: "U1", TS: "1"}
	b := models.Message{Text: "second", User: "U2", TS: "2"}
	return &models.Channel{
		Name: name,
		Timeline: []models.TimelineEntry{
			{Message: &a},
			{Message: &b},
		},
	}
}

func TestIndexer_IndexChannels(t *testing.T) {
	store := &mockVectorClient{}
	indexer := NewIndexer(store, NewDocumentProcessor(nil))

	stats, err := indexer.IndexChannels(context.Background(), []*models.Channel{
		testChannel("general"),
		testChannel("help"),
	})
	if err != nil {
		t.Fatalf("IndexChannels() error = %v", err)
	}

	if stats.Channels != 2 {
		t.Errorf("Channels = %d, want 2", stats.Channels)
	}
	if stats.TotalDocuments != 4 {
		t.Errorf("TotalDocuments = %d, want 4", stats.TotalDocuments)
	}
	if stats.StoredDocuments != 4 {
		t.Errorf("StoredDocuments = %d, want 4", stats.StoredDocuments)
	}
	if len(store.documents) != 4 {
		t.Errorf("Stored = %d, want 4", len(store.documents))
	}
}

func TestIndexer_StoreFailureIsRecorded(t *testing.T) {
	// A failing document is skipped and counted, not fatal.
	store := &mockVectorClient{failOn: "second"}
	indexer := NewIndexer(store, NewDocumentProcessor(nil))

	stats, err := indexer.IndexChannels(context.Background(), []*models.Channel{testChannel("general")})
	if err != nil {
		t.Fatalf("IndexChannels() error = %v", err)
	}

	if stats.StoredDocuments != 1 {
		t.Errorf("StoredDocuments = %d, want 1", stats.StoredDocuments)
	}
	if stats.FailedDocuments != 1 {
		t.Errorf("FailedDocuments = %d, want 1", stats.FailedDocuments)
	}
	if len(stats.Errors) != 1 {
		t.Errorf("Errors = %d, want 1", len(stats.Errors))
	}
}

func TestIndexer_BadTimestampFailsChannel(t *testing.T) {
	store := &mockVectorClient{}
	indexer := NewIndexer(store, NewDocumentProcessor(nil))

	bad := models.Message{Text: "hi", User: "U1", TS: "not-a-ts"}
	channel := &models.Channel{
		Name:     "general",
		Timeline: []models.TimelineEntry{{Message: &bad}},
	}

	stats, err := indexer.IndexChannels(context.Background(), []*models.Channel{channel})
	if err != nil {
		t.Fatalf("IndexChannels() error = %v", err)
	}

	// The channel's processing error is recorded; the run itself finishes.
	if len(stats.Errors) != 1 {
		t.Errorf("Errors = %d, want 1", len(stats.Errors))
	}
	if stats.Channels != 0 {
		t.Errorf("Channels = %d, want 0", stats.Channels)
	}
}
