// preview-graph inspects converted datasets from the terminal: a plain
// head mode for any text file, and a TUI dashboard with node/edge
// counts, out-degree statistics and sample edges for a dataset
// directory.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	head := flag.Int("head", 0, "Print the first k lines of the given file and exit")
	tuiDir := flag.String("tui", "", "Dataset directory to open in the stats dashboard")
	workers := flag.Int("workers", 8, "Worker count for line counting")
	flag.Parse()

	switch {
	case *tuiDir != "":
		runTUI(*tuiDir, *workers)
	case flag.NArg() >= 1:
		k := *head
		if k == 0 {
			k = 10
		}
		if err := printHead(flag.Arg(0), k); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: preview-graph [--head k] <file>")
		fmt.Fprintln(os.Stderr, "       preview-graph --tui <dataset-dir>")
		os.Exit(1)
	}
}

// printHead writes the first k lines of path to stdout.
func printHead(path string, k int) error {
	if k <= 0 {
		return fmt.Errorf("line count k must be a positive integer, got %d", k)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for i := 0; i < k && sc.Scan(); i++ {
		fmt.Println(sc.Text())
	}
	return sc.Err()
}

func runTUI(dir string, workers int) {
	p := tea.NewProgram(newModel(dir, workers), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
