package normalize

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-datasets/pkg/mtx"
)

// genCoordinates builds a random well-formed coordinate list: a shape up
// to 50x50 and up to 200 in-range endpoint pairs.
func genCoordinates() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 50),
		gen.IntRange(1, 50),
		gen.SliceOf(gopter.CombineGens(gen.UInt64Range(0, 1<<16), gen.UInt64Range(0, 1<<16))),
	).Map(func(vs []interface{}) *mtx.Coordinates {
		rows := vs[0].(int)
		cols := vs[1].(int)
		pairs := vs[2].([][]interface{})
		if len(pairs) > 200 {
			pairs = pairs[:200]
		}

		coo := &mtx.Coordinates{NumRows: rows, NumCols: cols}
		for _, p := range pairs {
			coo.Rows = append(coo.Rows, p[0].(uint64)%uint64(rows))
			coo.Cols = append(coo.Cols, p[1].(uint64)%uint64(cols))
			coo.Vals = append(coo.Vals, 1)
		}
		return coo
	})
}

// TestNormalizationInvariants verifies the properties every policy must
// hold over arbitrary well-formed input.
func TestNormalizationInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	inRange := func(sp Space, src, dst []uint64) bool {
		for _, s := range src {
			if s >= uint64(sp.NumNodes) {
				return false
			}
		}
		for _, d := range dst {
			if d >= uint64(sp.NumNodes) {
				return false
			}
		}
		return true
	}

	properties.Property("endpoints stay inside the ID space", prop.ForAll(
		func(coo *mtx.Coordinates, preserve bool) bool {
			sp, src, dst, err := Apply(coo, Options{PreserveIsolated: preserve})
			if err != nil {
				return false
			}
			return len(src) == coo.NNZ() && len(dst) == coo.NNZ() && inRange(sp, src, dst)
		},
		genCoordinates(),
		gen.Bool(),
	))

	properties.Property("compaction uses every ID in [0, NumNodes)", prop.ForAll(
		func(coo *mtx.Coordinates) bool {
			sp, src, dst, err := Apply(coo, Options{PreserveIsolated: false})
			if err != nil {
				return false
			}
			used := make(map[uint64]struct{}, sp.NumNodes)
			for _, s := range src {
				used[s] = struct{}{}
			}
			for _, d := range dst {
				used[d] = struct{}{}
			}
			return len(used) == sp.NumNodes
		},
		genCoordinates(),
	))

	properties.Property("compaction preserves endpoint order", prop.ForAll(
		func(coo *mtx.Coordinates) bool {
			// The remap is order-preserving on IDs, so relative order of
			// any two equal raw endpoints must survive.
			_, src, dst, err := Apply(coo, Options{PreserveIsolated: false})
			if err != nil {
				return false
			}
			_, rawSrc, rawDst, err := Apply(coo, Options{PreserveIsolated: true})
			if err != nil {
				return false
			}
			for i := range rawSrc {
				for j := range rawSrc {
					if (rawSrc[i] < rawSrc[j]) != (src[i] < src[j]) {
						return false
					}
					if (rawDst[i] < rawDst[j]) != (dst[i] < dst[j]) {
						return false
					}
				}
			}
			return true
		},
		genCoordinates(),
	))

	properties.Property("applying twice changes nothing", prop.ForAll(
		func(coo *mtx.Coordinates) bool {
			sp1, src1, dst1, err := Apply(coo, Options{PreserveIsolated: false})
			if err != nil {
				return false
			}
			again := &mtx.Coordinates{
				NumRows: sp1.NumNodes, NumCols: sp1.NumNodes,
				Rows: src1, Cols: dst1, Vals: make([]float64, len(src1)),
			}
			sp2, src2, dst2, err := Apply(again, Options{PreserveIsolated: false})
			if err != nil {
				return false
			}
			if sp2.NumNodes != sp1.NumNodes {
				return false
			}
			for i := range src1 {
				if src1[i] != src2[i] || dst1[i] != dst2[i] {
					return false
				}
			}
			return true
		},
		genCoordinates(),
	))

	properties.TestingRun(t)
}
