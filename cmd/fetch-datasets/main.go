package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-datasets/pkg/fetch"
	"github.com/dd0wney/cluso-datasets/pkg/manifest"
)

func main() {
	manifestPath := flag.String("manifest", "datasets.yaml", "Dataset manifest file")
	destDir := flag.String("dir", ".", "Base directory for downloaded datasets")
	only := flag.String("only", "", "Comma-separated dataset names to fetch (default: all)")
	s3Region := flag.String("s3-region", "us-east-1", "Region for s3:// sources")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		logger.Error("failed to load manifest", "path", *manifestPath, "error", err)
		os.Exit(1)
	}

	selected := m.Datasets
	if *only != "" {
		selected = selected[:0:0]
		for _, name := range strings.Split(*only, ",") {
			d := m.Find(strings.TrimSpace(name))
			if d == nil {
				logger.Error("dataset not in manifest", "name", name)
				os.Exit(1)
			}
			selected = append(selected, *d)
		}
	}

	ctx := context.Background()
	fetcher := fetch.New(logger)

	// Only build an S3 client when the selection needs one.
	for _, d := range selected {
		if strings.HasPrefix(d.URL, "s3://") {
			store, err := fetch.NewAnonymousS3(ctx, *s3Region)
			if err != nil {
				logger.Error("failed to build s3 client", "error", err)
				os.Exit(1)
			}
			fetcher.S3 = store
			break
		}
	}

	failed := 0
	for _, d := range selected {
		dest := d.Output
		if dest == "" {
			dest = filepath.Join(*destDir, d.Name)
		}

		logger.Info("fetching dataset", "name", d.Name, "url", d.URL, "format", d.Format, "dest", dest)
		if err := fetcher.Fetch(ctx, d.URL, dest); err != nil {
			logger.Error("fetch failed", "name", d.Name, "error", err)
			failed++
			continue
		}
		logger.Info("dataset ready", "name", d.Name, "dest", dest)
	}

	logger.Info("all fetches finished", "total", len(selected), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
