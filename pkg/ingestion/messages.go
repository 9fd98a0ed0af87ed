package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
)

// requiredFields are the record fields a content message must carry. A record
// missing any of them is skipped whole; no partial Message is constructed.
var requiredFields = []string{"text", "user", "ts"}

// ParserConfig contains configuration for the message parser
type ParserConfig struct {
	LogSkipped bool // Whether to log a diagnostic for each skipped record
}

// DefaultParserConfig returns default parser configuration
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		LogSkipped: true,
	}
}

// MessageParser parses per-day Slack export JSON files into Messages.
//
// Two error tiers apply: a record missing a required field is a recoverable
// problem (diagnostic, skip, keep going), while a file that is not a readable
// JSON array is fatal for that file.
type MessageParser struct {
	config           ParserConfig
	totalRecords     int
	processedRecords int
	skippedRecords   int
	errors           []error
}

// NewMessageParser creates a new message parser instance
func NewMessageParser(config ...ParserConfig) *MessageParser {
	cfg := DefaultParserConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return &MessageParser{
		config: cfg,
		errors: make([]error, 0),
	}
}

// ParseFile parses a single export day file into messages, in input order.
func (p *MessageParser) ParseFile(filename string) ([]models.Message, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file, filename)
}

// Parse parses export records from r. The name is used in diagnostics only.
func (p *MessageParser) Parse(r io.Reader, name string) ([]models.Message, error) {
	var records []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	messages := make([]models.Message, 0, len(records))

	for _, record := range records {
		p.totalRecords++

		// Records with a subtype are system/meta events (joins, renames,
		// file shares) and are never content, whatever else they carry.
		if _, ok := record["subtype"]; ok {
			continue
		}

		msg, err := p.parseRecord(record, name)
		if err != nil {
			p.recordSkip(err)
			continue
		}

		messages = append(messages, msg)
		p.processedRecords++
	}

	return messages, nil
}

// parseRecord converts one raw record to a Message. The first missing or
// wrong-typed required field fails the whole record.
func (p *MessageParser) parseRecord(record map[string]json.RawMessage, name string) (models.Message, error) {
	for _, field := range requiredFields {
		if _, ok := record[field]; !ok {
			return models.Message{}, fmt.Errorf("message in file %s does not have required attribute %q", name, field)
		}
	}

	getField := func(field string) (string, error) {
		var s string
		if err := json.Unmarshal(record[field], &s); err != nil {
			return "", fmt.Errorf("message in file %s has non-string attribute %q", name, field)
		}
		return s, nil
	}

	var msg models.Message
	var err error

	if msg.Text, err = getField("text"); err != nil {
		return models.Message{}, err
	}
	if msg.User, err = getField("user"); err != nil {
		return models.Message{}, err
	}
	if msg.TS, err = getField("ts"); err != nil {
		return models.Message{}, err
	}

	// thread_ts is optional; absence means the message is not part of a thread.
	if raw, ok := record["thread_ts"]; ok {
		if err := json.Unmarshal(raw, &msg.ThreadTS); err != nil {
			return models.Message{}, fmt.Errorf("message in file %s has non-string attribute %q", name, "thread_ts")
		}
	}

	return msg, nil
}

// recordSkip records a skipped record and optionally logs the diagnostic.
func (p *MessageParser) recordSkip(err error) {
	p.skippedRecords++
	p.errors = append(p.errors, err)
	if p.config.LogSkipped {
		log.Printf("WARNING: %v. Skipping.", err)
	}
}

// GetErrors returns all record-level errors encountered so far
func (p *MessageParser) GetErrors() []error {
	return p.errors
}

// GetStats returns parsing statistics
func (p *MessageParser) GetStats() (total, processed, skipped int) {
	return p.totalRecords, p.processedRecords, p.skippedRecords
}
