package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/boom-roasted/slack-export-to-md/pkg/convert"
)

func main() {
	// Define command-line flags
	var (
		exportDir = flag.String("export", "", "Path to the unzipped Slack export directory (required)")
		channels  = flag.String("channels", "*", "Glob pattern matching the channel directories to convert")
		outDir    = flag.String("out", "", "Output directory (default: a 'md' directory next to the export)")
		perThread = flag.Bool("per-thread", false, "Write one markdown file per thread instead of per channel")
		help      = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *exportDir == "" || flag.NArg() > 0 {
		printUsage()
		os.Exit(1)
	}

	// Resolve the export directory before any processing
	export, err := filepath.Abs(*exportDir)
	if err != nil {
		log.Fatalf("Invalid export directory: %v", err)
	}
	if info, err := os.Stat(export); err != nil || !info.IsDir() {
		log.Fatalf("Cannot find export directory %s", export)
	}

	out := *outDir
	if out == "" {
		out = filepath.Join(filepath.Dir(export), "md")
	}

	service := convert.NewService(convert.ServiceConfig{
		OutputDir: out,
		PerThread: *perThread,
	})

	startTime := time.Now()
	stats, err := service.ConvertExport(export, *channels)
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	// Print results
	duration := time.Since(startTime)
	fmt.Println("\n=== Conversion Complete ===")
	fmt.Printf("Duration: %s\n", duration.Round(time.Millisecond))
	fmt.Printf("Channels converted: %d\n", stats.Channels)
	fmt.Printf("Total messages: %d\n", stats.TotalMessages)
	fmt.Printf("Discrete threads: %d\n", stats.TotalThreads)
	fmt.Printf("Skipped records: %d\n", stats.SkippedRecords)
	fmt.Printf("Documents written: %d\n", stats.Documents)

	if len(stats.Errors) > 0 {
		fmt.Printf("\nErrors encountered: %d\n", len(stats.Errors))
		for i, err := range stats.Errors {
			if i >= 10 {
				fmt.Printf("... and %d more errors\n", len(stats.Errors)-10)
				break
			}
			fmt.Printf("  - %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("slack2md - convert a Slack export to markdown")
	fmt.Println("\nUsage:")
	fmt.Println("  slack2md -export <dir> [options]")
	fmt.Println("\nRequired:")
	fmt.Println("  -export string")
	fmt.Println("        Path to the unzipped Slack export directory")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
	fmt.Println("\nThe export directory must contain a users.json file; each channel is a")
	fmt.Println("subdirectory holding one JSON file per export day.")
	fmt.Println("\nExamples:")
	fmt.Println("  # Convert every channel")
	fmt.Println("  slack2md -export ./export")
	fmt.Println("\n  # Convert only the help channels, one file per thread")
	fmt.Println("  slack2md -export ./export -channels 'help*' -per-thread")
}
