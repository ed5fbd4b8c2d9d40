// Package normalize maps raw sparse-matrix coordinates onto a
// contiguous zero-based node ID space.
//
// Two policies exist because downstream consumers disagree on what a
// "node" is. The shape-preserving policy (default) trusts the matrix
// header: every declared row/column index is a node, including ones no
// edge touches. The compaction policy keeps only IDs that actually
// appear as edge endpoints. The choice is an explicit option, never
// inferred.
package normalize

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-datasets/pkg/mtx"
)

// Options selects the normalization policy.
type Options struct {
	// PreserveIsolated keeps nodes declared by the matrix shape even
	// when no edge references them. When false, unreferenced IDs are
	// compacted away and the ID space shrinks to the referenced set.
	PreserveIsolated bool
}

// Space is the normalized node ID space. Every emitted node ID lies in
// [0, NumNodes); IDs are contiguous and zero-based.
type Space struct {
	NumNodes int

	// Bipartite is set for non-square inputs, where column-space IDs
	// are offset by the declared row count.
	Bipartite bool

	// ColOffset is the value added to raw column indices before
	// compaction or emission. Zero for square matrices.
	ColOffset uint64
}

// Apply normalizes the coordinate list, returning the ID space and the
// remapped edge endpoints. Endpoint order matches coo entry order
// exactly. Normalization is total over any well-formed Coordinates.
func Apply(coo *mtx.Coordinates, opts Options) (Space, []uint64, []uint64, error) {
	if coo == nil {
		return Space{}, nil, nil, fmt.Errorf("normalize: nil coordinates")
	}

	sp := Space{NumNodes: coo.NumRows}
	if !coo.Square() {
		sp.Bipartite = true
		sp.ColOffset = uint64(coo.NumRows)
		sp.NumNodes = coo.NumRows + coo.NumCols
	}

	src := coo.Rows
	dst := coo.Cols
	if sp.ColOffset != 0 {
		dst = make([]uint64, len(coo.Cols))
		for i, c := range coo.Cols {
			dst[i] = c + sp.ColOffset
		}
	}

	if opts.PreserveIsolated {
		return sp, src, dst, nil
	}
	return compact(sp, src, dst)
}

// compact rebuilds the ID space from the referenced endpoints only. The
// bipartite offset has already been applied, so row- and column-space
// IDs cannot collide; the bijection is the rank of each distinct ID in
// sorted order, which keeps the mapping deterministic.
func compact(sp Space, src, dst []uint64) (Space, []uint64, []uint64, error) {
	seen := make(map[uint64]struct{}, len(src))
	for _, s := range src {
		seen[s] = struct{}{}
	}
	for _, d := range dst {
		seen[d] = struct{}{}
	}

	distinct := make([]uint64, 0, len(seen))
	for id := range seen {
		distinct = append(distinct, id)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	remap := make(map[uint64]uint64, len(distinct))
	for rank, id := range distinct {
		remap[id] = uint64(rank)
	}

	outSrc := make([]uint64, len(src))
	outDst := make([]uint64, len(dst))
	for i, s := range src {
		outSrc[i] = remap[s]
	}
	for i, d := range dst {
		outDst[i] = remap[d]
	}

	sp.NumNodes = len(distinct)
	return sp, outSrc, outDst, nil
}
