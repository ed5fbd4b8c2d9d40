// convert-movielens turns a MovieLens release (ratings.csv + movies.csv)
// into the bipartite nodes.csv / edges.csv layout: movie and user nodes,
// one edge per rating.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dd0wney/cluso-datasets/pkg/csvgraph"
	"github.com/dd0wney/cluso-datasets/pkg/progress"
	"github.com/dd0wney/cluso-datasets/pkg/typemeta"
)

type ratingEdge struct {
	userID    int64
	movieID   int64
	rating    string
	timestamp string
}

type movieMeta struct {
	title  string
	genres string
}

func main() {
	dataDir := flag.String("data", ".", "MovieLens directory containing ratings.csv and movies.csv")
	outDir := flag.String("out", ".", "Output directory")
	workers := flag.Int("workers", 8, "Worker count for parallel edge writing")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	nodesFile := filepath.Join(*outDir, "nodes.csv")
	edgesFile := filepath.Join(*outDir, "edges.csv")
	typeMetaFile := filepath.Join(*outDir, "type_meta.json")

	if fileExists(nodesFile) && fileExists(edgesFile) {
		if !fileExists(typeMetaFile) {
			logger.Info("csvs exist, generating type_meta.json only")
			mustGenerateTypeMeta(logger, nodesFile, edgesFile, typeMetaFile)
			return
		}
		logger.Info("csvs already exist, skipping conversion")
		return
	}

	ratingsFile := filepath.Join(*dataDir, "ratings.csv")
	moviesFile := filepath.Join(*dataDir, "movies.csv")
	for _, path := range []string{ratingsFile, moviesFile} {
		if !fileExists(path) {
			fmt.Fprintf(os.Stderr, "Error: %s not found\n", path)
			os.Exit(1)
		}
	}

	// Pass 1: scan ratings for user/movie ID sets and the edge list.
	logger.Info("scanning ratings", "file", ratingsFile)
	userRatings := make(map[int64]int)
	movieIDs := make(map[int64]struct{})
	var edges []ratingEdge

	rep := progress.NewReporter(logger, "scan ratings", 0)
	err := forEachCSVRow(ratingsFile, func(get func(string) string) error {
		uid, err := strconv.ParseInt(get("userId"), 10, 64)
		if err != nil {
			return fmt.Errorf("bad userId: %w", err)
		}
		mid, err := strconv.ParseInt(get("movieId"), 10, 64)
		if err != nil {
			return fmt.Errorf("bad movieId: %w", err)
		}
		userRatings[uid]++
		movieIDs[mid] = struct{}{}
		edges = append(edges, ratingEdge{
			userID:    uid,
			movieID:   mid,
			rating:    get("rating"),
			timestamp: get("timestamp"),
		})
		rep.Add(1)
		return nil
	})
	if err != nil {
		logger.Error("failed to scan ratings", "error", err)
		os.Exit(1)
	}
	rep.Done()
	logger.Info("ratings scanned", "users", len(userRatings), "movies", len(movieIDs), "ratings", len(edges))

	// Pass 2: movie metadata join.
	logger.Info("loading movie metadata", "file", moviesFile)
	meta := make(map[int64]movieMeta, len(movieIDs))
	err = forEachCSVRow(moviesFile, func(get func(string) string) error {
		mid, err := strconv.ParseInt(get("movieId"), 10, 64)
		if err != nil {
			return nil // header variants with junk rows are skipped
		}
		if _, ok := movieIDs[mid]; ok {
			meta[mid] = movieMeta{title: get("title"), genres: get("genres")}
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to load movie metadata", "error", err)
		os.Exit(1)
	}

	// Pass 3: contiguous IDs, movie block first then user block.
	sortedMovies := sortedKeys(movieIDs)
	sortedUsers := make([]int64, 0, len(userRatings))
	for uid := range userRatings {
		sortedUsers = append(sortedUsers, uid)
	}
	sort.Slice(sortedUsers, func(i, j int) bool { return sortedUsers[i] < sortedUsers[j] })

	idMap := make(map[int64]uint64, len(sortedMovies)+len(sortedUsers))
	for i, mid := range sortedMovies {
		idMap[movieKey(mid)] = uint64(i)
	}
	userOffset := uint64(len(sortedMovies))
	for i, uid := range sortedUsers {
		idMap[userKey(uid)] = userOffset + uint64(i)
	}

	numNodes := len(sortedMovies) + len(sortedUsers)
	logger.Info("writing nodes", "path", nodesFile, "count", numNodes)
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("failed to create output dir", "error", err)
		os.Exit(1)
	}

	header := []string{"node_id", "type", "name", "genres", "rating_count"}
	err = csvgraph.WriteNodesWith(nodesFile, header, numNodes, func(id int) []string {
		if id < len(sortedMovies) {
			m := meta[sortedMovies[id]]
			return []string{"movie", m.title, m.genres, ""}
		}
		uid := sortedUsers[id-len(sortedMovies)]
		return []string{"user", "", "", strconv.Itoa(userRatings[uid])}
	})
	if err != nil {
		logger.Error("failed to write nodes", "error", err)
		os.Exit(1)
	}

	logger.Info("writing edges", "path", edgesFile, "count", len(edges))
	edgeHeader := []string{"src", "dst", "rating", "timestamp"}
	err = csvgraph.WriteEdgesWith(edgesFile, edgeHeader, len(edges), func(i int) []string {
		e := edges[i]
		src := idMap[userKey(e.userID)]
		dst := idMap[movieKey(e.movieID)]
		return []string{
			strconv.FormatUint(src, 10),
			strconv.FormatUint(dst, 10),
			e.rating,
			e.timestamp,
		}
	}, csvgraph.EdgeWriteOptions{Workers: *workers})
	if err != nil {
		logger.Error("failed to write edges", "error", err)
		os.Exit(1)
	}

	mustGenerateTypeMeta(logger, nodesFile, edgesFile, typeMetaFile)

	logger.Info("conversion complete", "nodes", numNodes, "edges", len(edges))
}

// movieKey and userKey disambiguate the two raw ID spaces inside one
// map; MovieLens user and movie IDs overlap freely.
func movieKey(id int64) int64 { return id << 1 }
func userKey(id int64) int64  { return id<<1 | 1 }

func sortedKeys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// forEachCSVRow streams a headered CSV file, handing each row a lookup
// from column name to value.
func forEachCSVRow(path string, fn func(get func(string) string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[col] = i
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		get := func(name string) string {
			if i, ok := colIndex[name]; ok && i < len(record) {
				return record[i]
			}
			return ""
		}
		if err := fn(get); err != nil {
			return err
		}
	}
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
