package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-datasets/pkg/typemeta"
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: typemeta <dataset-dir>")
		fmt.Fprintln(os.Stderr, "  Generates type_meta.json from nodes.csv and edges.csv in dataset-dir")
		os.Exit(1)
	}
	dir := flag.Arg(0)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	outPath := filepath.Join(dir, "type_meta.json")
	meta, err := typemeta.Generate(
		filepath.Join(dir, "nodes.csv"),
		filepath.Join(dir, "edges.csv"),
		outPath,
	)
	if err != nil {
		logger.Error("type inference failed", "error", err)
		os.Exit(1)
	}

	logger.Info("generated type_meta.json",
		"path", outPath,
		"node_properties", len(meta.NodeProperties),
		"edge_properties", len(meta.EdgeProperties),
	)
}
