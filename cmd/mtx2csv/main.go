package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-datasets/pkg/convert"
	"github.com/dd0wney/cluso-datasets/pkg/mtx"
)

func main() {
	outDir := flag.String("out", "", "Output directory (default: directory of the input file)")
	workers := flag.Int("workers", 8, "Worker count for parallel read/write")
	chunkSize := flag.Int("chunk", 500000, "Edge rows per parallel write chunk")
	compact := flag.Bool("compact", false, "Drop isolated nodes and compact the ID space (default preserves them)")
	compress := flag.Bool("compress-chunks", false, "Snappy-compress temporary chunk files")
	force := flag.Bool("force", false, "Re-run even when nodes.csv/edges.csv already exist")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mtx2csv [flags] <mtx_file>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)

	if *outDir == "" {
		*outDir = filepath.Dir(input)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	job := convert.CSVJob{
		Input:            input,
		OutputDir:        *outDir,
		Workers:          *workers,
		ChunkSize:        *chunkSize,
		CompressChunks:   *compress,
		PreserveIsolated: !*compact,
		Force:            *force,
		Logger:           logger,
	}

	res, err := job.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, mtx.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "File %s not found\n", input)
		}
		os.Exit(1)
	}

	if res.Skipped {
		return
	}
	fmt.Println("Conversion complete")
	fmt.Printf("  Nodes: %d\n", res.Nodes)
	fmt.Printf("  Edges: %d\n", res.Edges)
}
