package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/boom-roasted/slack-export-to-md/internal/config"
	"github.com/boom-roasted/slack-export-to-md/pkg/convert"
	"github.com/boom-roasted/slack-export-to-md/pkg/ingestion"
	"github.com/boom-roasted/slack-export-to-md/pkg/models"
	"github.com/boom-roasted/slack-export-to-md/pkg/processing"
	"github.com/boom-roasted/slack-export-to-md/pkg/vector"
)

func main() {
	// Define command-line flags
	var (
		exportDir = flag.String("export", "", "Path to the unzipped Slack export directory (required)")
		channels  = flag.String("channels", "*", "Glob pattern matching the channel directories to index")
		help      = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	if *help || *exportDir == "" {
		printUsage()
		if *help {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create Weaviate client
	log.Println("Connecting to Weaviate...")
	store, err := vector.NewWeaviateClient(
		cfg.Weaviate.Scheme,
		cfg.Weaviate.Host,
		cfg.Weaviate.APIKey,
	)
	if err != nil {
		log.Fatalf("Failed to create Weaviate client: %v", err)
	}

	// Initialize the index schema
	ctx := context.Background()
	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize Weaviate schema: %v", err)
	}

	// Load the export
	users, err := ingestion.LoadUsers(filepath.Join(*exportDir, convert.UsersFilename))
	if err != nil {
		log.Fatalf("Failed to load user directory: %v", err)
	}

	channelList, err := loadChannels(*exportDir, *channels)
	if err != nil {
		log.Fatalf("Failed to load channels: %v", err)
	}
	if len(channelList) == 0 {
		log.Fatalf("No channel directories matched %q in %s", *channels, *exportDir)
	}

	// Index everything
	indexer := processing.NewIndexer(store, processing.NewDocumentProcessor(users))

	startTime := time.Now()
	stats, err := indexer.IndexChannels(ctx, channelList)
	if err != nil {
		log.Fatalf("Indexing failed: %v", err)
	}

	// Print results
	duration := time.Since(startTime)
	fmt.Println("\n=== Indexing Complete ===")
	fmt.Printf("Duration: %s\n", duration.Round(time.Second))
	fmt.Printf("Channels indexed: %d\n", stats.Channels)
	fmt.Printf("Total documents: %d\n", stats.TotalDocuments)
	fmt.Printf("Documents stored: %d\n", stats.StoredDocuments)
	fmt.Printf("Documents failed: %d\n", stats.FailedDocuments)

	if len(stats.Errors) > 0 {
		fmt.Printf("\nErrors encountered: %d\n", len(stats.Errors))
		for i, err := range stats.Errors {
			if i >= 10 {
				fmt.Printf("... and %d more errors\n", len(stats.Errors)-10)
				break
			}
			fmt.Printf("  - %v\n", err)
		}
	}
}

// loadChannels loads and assembles every matching channel directory.
func loadChannels(exportDir, glob string) ([]*models.Channel, error) {
	dirs, err := filepath.Glob(filepath.Join(exportDir, glob))
	if err != nil {
		return nil, fmt.Errorf("invalid channel pattern %q: %w", glob, err)
	}

	service := convert.NewService(convert.ServiceConfig{})

	var channelList []*models.Channel
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		channel, _, err := service.LoadChannel(dir)
		if err != nil {
			return nil, err
		}
		channelList = append(channelList, channel)
	}

	return channelList, nil
}

func printUsage() {
	fmt.Println("index - store a converted Slack export in the archive search index")
	fmt.Println("\nUsage:")
	fmt.Println("  index -export <dir> [options]")
	fmt.Println("\nRequired:")
	fmt.Println("  -export string")
	fmt.Println("        Path to the unzipped Slack export directory")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
	fmt.Println("\nWeaviate connection settings come from the environment:")
	fmt.Println("  WEAVIATE_SCHEME (default http)")
	fmt.Println("  WEAVIATE_HOST   (default localhost:8000)")
	fmt.Println("  WEAVIATE_API_KEY")
}
