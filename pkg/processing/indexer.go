package processing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
	"github.com/boom-roasted/slack-export-to-md/pkg/vector"
)

// Indexer stores processed documents in the search index. Indexing is
// sequential: the converter is a one-shot batch tool and the index round-trip
// is not a hot path.
type Indexer struct {
	processor *DocumentProcessor
	store     vector.Client
}

// NewIndexer creates a new indexer
func NewIndexer(store vector.Client, processor *DocumentProcessor) *Indexer {
	return &Indexer{
		processor: processor,
		store:     store,
	}
}

// IndexStats tracks indexing progress and statistics
type IndexStats struct {
	Channels        int
	TotalDocuments  int
	StoredDocuments int
	FailedDocuments int
	Errors          []error
	StartTime       time.Time
	EndTime         time.Time
}

// AddError adds an error to the stats
func (s *IndexStats) AddError(err error) {
	s.Errors = append(s.Errors, err)
}

// IndexChannel processes and stores one channel's documents, accumulating
// into stats. A document that fails to store is recorded and skipped; a
// channel that fails to process aborts with an error.
func (i *Indexer) IndexChannel(ctx context.Context, channel *models.Channel, stats *IndexStats) error {
	documents, err := i.processor.ProcessChannel(channel)
	if err != nil {
		return fmt.Errorf("failed to process channel %s: %w", channel.Name, err)
	}

	stored := 0
	for _, doc := range documents {
		if err := i.store.Store(ctx, doc); err != nil {
			stats.FailedDocuments++
			stats.AddError(fmt.Errorf("failed to store document %s: %w", doc.ID, err))
			continue
		}
		stored++
	}

	stats.Channels++
	stats.TotalDocuments += len(documents)
	stats.StoredDocuments += stored

	log.Printf("Channel %s: indexed %d/%d documents", channel.Name, stored, len(documents))
	return nil
}

// IndexChannels indexes a set of channels, continuing past per-channel
// failures the way the converter does.
func (i *Indexer) IndexChannels(ctx context.Context, channels []*models.Channel) (*IndexStats, error) {
	stats := &IndexStats{StartTime: time.Now()}

	for _, channel := range channels {
		if err := i.IndexChannel(ctx, channel, stats); err != nil {
			stats.AddError(err)
		}
	}

	stats.EndTime = time.Now()
	return stats, nil
}
