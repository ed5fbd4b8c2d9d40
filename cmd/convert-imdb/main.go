// convert-imdb turns the IMDB non-commercial TSV dumps into the
// bipartite nodes.csv / edges.csv layout: title and person nodes, one
// edge per principal credit (person worked on title).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-datasets/pkg/csvgraph"
	"github.com/dd0wney/cluso-datasets/pkg/progress"
	"github.com/dd0wney/cluso-datasets/pkg/typemeta"
)

type credit struct {
	nconst   string
	tconst   string
	category string
	job      string
}

type nodeInfo struct {
	name   string
	year   string
	rating string
}

func main() {
	dir := flag.String("dir", ".", "Directory with the decompressed IMDB .tsv files (also the output directory)")
	workers := flag.Int("workers", 8, "Worker count for parallel edge writing")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	nodesFile := filepath.Join(*dir, "nodes.csv")
	edgesFile := filepath.Join(*dir, "edges.csv")
	typeMetaFile := filepath.Join(*dir, "type_meta.json")

	if fileExists(nodesFile) && fileExists(edgesFile) {
		if !fileExists(typeMetaFile) {
			logger.Info("csvs exist, generating type_meta.json only")
			mustGenerateTypeMeta(logger, nodesFile, edgesFile, typeMetaFile)
			return
		}
		logger.Info("csvs already exist, skipping conversion")
		return
	}

	// Pass 1: scan principals for referenced IDs and the credit list.
	principalsFile := filepath.Join(*dir, "title.principals.tsv")
	logger.Info("scanning principals", "file", principalsFile)

	referencedTitles := make(map[string]struct{})
	referencedPeople := make(map[string]struct{})
	var credits []credit

	rep := progress.NewReporter(logger, "scan principals", 0)
	err := forEachTSVRow(principalsFile, func(get func(string) string) error {
		tconst := get("tconst")
		nconst := get("nconst")
		if tconst == "" || nconst == "" {
			return nil
		}
		referencedTitles[tconst] = struct{}{}
		referencedPeople[nconst] = struct{}{}
		credits = append(credits, credit{
			nconst:   nconst,
			tconst:   tconst,
			category: get("category"),
			job:      get("job"),
		})
		rep.Add(1)
		return nil
	})
	if err != nil {
		logger.Error("failed to scan principals", "error", err)
		os.Exit(1)
	}
	rep.Done()
	logger.Info("principals scanned",
		"titles", len(referencedTitles), "people", len(referencedPeople), "credits", len(credits))

	// Ratings join for title nodes.
	ratings := make(map[string]string)
	ratingsFile := filepath.Join(*dir, "title.ratings.tsv")
	logger.Info("loading ratings", "file", ratingsFile)
	err = forEachTSVRow(ratingsFile, func(get func(string) string) error {
		ratings[get("tconst")] = get("averageRating")
		return nil
	})
	if err != nil {
		logger.Error("failed to load ratings", "error", err)
		os.Exit(1)
	}

	// Pass 2: node metadata, titles block first, then people.
	// ID assignment follows file order within each block, which keeps
	// re-runs deterministic for a fixed dump.
	idMap := make(map[string]uint64, len(referencedTitles)+len(referencedPeople))
	var nodes []nodeInfo
	var order []string // "title" / "person" type per node, parallel to nodes

	basicsFile := filepath.Join(*dir, "title.basics.tsv")
	logger.Info("reading title basics", "file", basicsFile)
	err = forEachTSVRow(basicsFile, func(get func(string) string) error {
		tconst := get("tconst")
		if _, ok := referencedTitles[tconst]; !ok {
			return nil
		}
		if _, dup := idMap[tconst]; dup {
			return nil
		}
		idMap[tconst] = uint64(len(nodes))
		nodes = append(nodes, nodeInfo{
			name:   get("primaryTitle"),
			year:   get("startYear"),
			rating: ratings[tconst],
		})
		order = append(order, "title")
		return nil
	})
	if err != nil {
		logger.Error("failed to read title basics", "error", err)
		os.Exit(1)
	}
	titleCount := len(nodes)

	namesFile := filepath.Join(*dir, "name.basics.tsv")
	logger.Info("reading name basics", "file", namesFile)
	err = forEachTSVRow(namesFile, func(get func(string) string) error {
		nconst := get("nconst")
		if _, ok := referencedPeople[nconst]; !ok {
			return nil
		}
		if _, dup := idMap[nconst]; dup {
			return nil
		}
		idMap[nconst] = uint64(len(nodes))
		nodes = append(nodes, nodeInfo{
			name: get("primaryName"),
			year: get("birthYear"),
		})
		order = append(order, "person")
		return nil
	})
	if err != nil {
		logger.Error("failed to read name basics", "error", err)
		os.Exit(1)
	}
	peopleCount := len(nodes) - titleCount

	logger.Info("writing nodes", "path", nodesFile, "count", len(nodes))
	header := []string{"node_id", "type", "name", "year", "rating"}
	err = csvgraph.WriteNodesWith(nodesFile, header, len(nodes), func(id int) []string {
		n := nodes[id]
		return []string{order[id], n.name, n.year, n.rating}
	})
	if err != nil {
		logger.Error("failed to write nodes", "error", err)
		os.Exit(1)
	}

	// Pass 3: edges, dropping credits whose endpoints never appeared
	// in the metadata files.
	kept := credits[:0]
	for _, c := range credits {
		if _, ok := idMap[c.nconst]; !ok {
			continue
		}
		if _, ok := idMap[c.tconst]; !ok {
			continue
		}
		kept = append(kept, c)
	}

	logger.Info("writing edges", "path", edgesFile, "count", len(kept))
	edgeHeader := []string{"src", "dst", "category", "job"}
	err = csvgraph.WriteEdgesWith(edgesFile, edgeHeader, len(kept), func(i int) []string {
		c := kept[i]
		return []string{
			strconv.FormatUint(idMap[c.nconst], 10),
			strconv.FormatUint(idMap[c.tconst], 10),
			c.category,
			c.job,
		}
	}, csvgraph.EdgeWriteOptions{Workers: *workers})
	if err != nil {
		logger.Error("failed to write edges", "error", err)
		os.Exit(1)
	}

	mustGenerateTypeMeta(logger, nodesFile, edgesFile, typeMetaFile)

	logger.Info("conversion complete",
		"titles", titleCount, "people", peopleCount,
		"total_nodes", len(nodes), "edges", len(kept),
	)
}

// forEachTSVRow streams an IMDB TSV dump. The dumps are unquoted
// (QUOTE_NONE), so rows split on raw tabs; the `\N` sentinel becomes
// an empty string.
func forEachTSVRow(path string, fn func(get func(string) string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return fmt.Errorf("empty tsv file: %s", path)
	}
	header := strings.Split(sc.Text(), "\t")
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[col] = i
	}

	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		get := func(name string) string {
			i, ok := colIndex[name]
			if !ok || i >= len(fields) || fields[i] == `\N` {
				return ""
			}
			return fields[i]
		}
		if err := fn(get); err != nil {
			return err
		}
	}
	return sc.Err()
}

func mustGenerateTypeMeta(logger *slog.Logger, nodesFile, edgesFile, outPath string) {
	meta, err := typemeta.Generate(nodesFile, edgesFile, outPath)
	if err != nil {
		logger.Error("failed to generate type_meta.json", "error", err)
		os.Exit(1)
	}
	logger.Info("type_meta.json generated",
		"node_properties", len(meta.NodeProperties),
		"edge_properties", len(meta.EdgeProperties),
	)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
