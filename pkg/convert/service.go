package convert

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/boom-roasted/slack-export-to-md/pkg/assembly"
	"github.com/boom-roasted/slack-export-to-md/pkg/ingestion"
	"github.com/boom-roasted/slack-export-to-md/pkg/models"
	"github.com/boom-roasted/slack-export-to-md/pkg/render"
)

// UsersFilename is the user directory file expected inside the export root.
const UsersFilename = "users.json"

// ServiceConfig contains configuration for the conversion service
type ServiceConfig struct {
	OutputDir string // Directory markdown files are written beneath
	PerThread bool   // Write one document per thread instead of per channel
}

// Service runs the batch conversion: load the user directory, then per
// channel load, assemble, render, and write. Everything is synchronous; a
// structural failure aborts the current channel and the run moves on.
type Service struct {
	config ServiceConfig
	users  map[string]models.User
}

// NewService creates a new conversion service
func NewService(config ServiceConfig) *Service {
	return &Service{config: config}
}

// ConversionStats tracks conversion progress and statistics
type ConversionStats struct {
	Channels       int
	TotalMessages  int
	TotalThreads   int
	SkippedRecords int
	Documents      int
	Errors         []error
	StartTime      time.Time
	EndTime        time.Time
}

// AddError records a per-channel failure without stopping the run.
func (s *ConversionStats) AddError(err error) {
	s.Errors = append(s.Errors, err)
}

// ConvertExport converts every channel directory under exportDir whose name
// matches glob. The user directory is loaded first; without it nothing can be
// rendered, so a missing or malformed users.json fails the whole run.
func (s *Service) ConvertExport(exportDir, glob string) (*ConversionStats, error) {
	stats := &ConversionStats{StartTime: time.Now()}

	users, err := ingestion.LoadUsers(filepath.Join(exportDir, UsersFilename))
	if err != nil {
		return stats, fmt.Errorf("failed to load user directory: %w", err)
	}
	s.users = users

	channelDirs, err := filepath.Glob(filepath.Join(exportDir, glob))
	if err != nil {
		return stats, fmt.Errorf("invalid channel pattern %q: %w", glob, err)
	}

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, dir := range channelDirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		channel, parser, err := s.LoadChannel(dir)
		if err != nil {
			stats.AddError(fmt.Errorf("failed to convert %s: %w", filepath.Base(dir), err))
			continue
		}

		written, err := s.writeChannel(channel)
		if err != nil {
			stats.AddError(fmt.Errorf("failed to convert %s: %w", channel.Name, err))
			continue
		}

		_, _, skipped := parser.GetStats()
		stats.Channels++
		stats.TotalMessages += len(channel.Messages)
		stats.TotalThreads += len(channel.Threads)
		stats.SkippedRecords += skipped
		stats.Documents += written

		log.Printf("Channel %s: Found %d total messages with %d discrete threads",
			channel.Name, len(channel.Messages), len(channel.Threads))
	}

	stats.EndTime = time.Now()
	return stats, nil
}

// LoadChannel loads every day file of one channel directory and assembles the
// result. The returned parser carries the record-level skip diagnostics.
func (s *Service) LoadChannel(channelDir string) (*models.Channel, *ingestion.MessageParser, error) {
	files, err := filepath.Glob(filepath.Join(channelDir, "*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list day files: %w", err)
	}

	parser := ingestion.NewMessageParser()
	var messages []models.Message

	for _, file := range files {
		fileMessages, err := parser.ParseFile(file)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, fileMessages...)
	}

	channel, err := assembly.Assemble(filepath.Base(channelDir), messages)
	if err != nil {
		return nil, nil, err
	}

	return channel, parser, nil
}

// writeChannel renders and writes one channel's output documents, returning
// how many files were written.
func (s *Service) writeChannel(channel *models.Channel) (int, error) {
	renderer := render.NewRenderer(s.users)

	if s.config.PerThread {
		for _, t := range channel.Threads {
			doc, err := renderer.Thread(t)
			if err != nil {
				return 0, err
			}
			path := filepath.Join(s.config.OutputDir, t.ID+".md")
			if err := os.WriteFile(path, []byte(doc+"\n"), 0o644); err != nil {
				return 0, fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
		return len(channel.Threads), nil
	}

	doc, err := renderer.Channel(channel)
	if err != nil {
		return 0, err
	}

	path := filepath.Join(s.config.OutputDir, channel.Name+".md")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return 1, nil
}
