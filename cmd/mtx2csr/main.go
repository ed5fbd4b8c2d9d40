package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dd0wney/cluso-datasets/pkg/convert"
	"github.com/dd0wney/cluso-datasets/pkg/csr"
)

func main() {
	workers := flag.Int("workers", 8, "Worker count for parallel read")
	force := flag.Bool("force", false, "Re-run even when the .bel files already exist")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: mtx2csr [flags] <mtx_file> <output_base>")
		fmt.Fprintln(os.Stderr, "  output_base may include a path (e.g. data/out/my_dataset);")
		fmt.Fprintln(os.Stderr, "  the directory is created if missing.")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	job := convert.CSRJob{
		Input:      flag.Arg(0),
		OutputBase: flag.Arg(1),
		Workers:    *workers,
		Force:      *force,
		Logger:     logger,
	}

	res, err := job.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if res.Skipped {
		return
	}

	colPath, dstPath, valPath := csr.FileNames(job.OutputBase)
	fmt.Println("Conversion successful! The following files have been generated:")
	fmt.Printf("- %s (CSR row offsets)\n", colPath)
	fmt.Printf("- %s (CSR column indices)\n", dstPath)
	fmt.Printf("- %s (CSR edge weights)\n", valPath)
}
