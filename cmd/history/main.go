package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/equescalculi/newsfeed-media-dl/internal/history"
	"github.com/equescalculi/newsfeed-media-dl/internal/model"
)

func main() {
	dbPath := flag.String("db", history.FileName, "path to the download history database")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: history [-db path] <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  list        Show recorded downloads, newest first")
		fmt.Fprintln(os.Stderr, "  failed      Show failed downloads only")
		os.Exit(1)
	}

	ctx := context.Background()

	// Open brings the downloads schema up to date, so pointing this tool at
	// a fresh path also initializes it.
	store, err := history.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open history: %v", err)
	}
	defer func() { _ = store.Close() }()

	downloads, err := store.List(ctx)
	if err != nil {
		log.Fatalf("list downloads: %v", err)
	}

	switch cmd := args[0]; cmd {
	case "list":
		printDownloads(downloads, false)
	case "failed":
		printDownloads(downloads, true)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}

func printDownloads(downloads []model.Download, failedOnly bool) {
	for _, d := range downloads {
		if failedOnly && d.Status != model.DownloadFailed {
			continue
		}
		fmt.Printf("%s  %-6s  %s  (%s)", d.CreatedAt.Format("2006-01-02 15:04:05"), d.Status, d.Link, d.Downloader)
		if d.Error != "" {
			fmt.Printf("  %s", d.Error)
		}
		fmt.Println()
	}
}
