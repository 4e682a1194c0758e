// core/ssa/ssa.go

// Package ssa builds subset suffix arrays: for one cyclic subset seed,
// the text positions admitted by the seed, sorted by seed-wise suffix
// comparison, plus a bucket table over the first bucketDepth subset
// indices and an optional child table for string binary search.
package ssa

import (
	"seeddb-core/seed"
)

// Array is one seed's index over a text. Build order is fixed:
// AddPositions for every sequence span, then Sort, then MakeBuckets,
// then ToFiles.
type Array struct {
	seed *seed.Seed

	positions []uint32

	bucketDepth int
	bucketSteps []uint32
	buckets     []uint32

	childKind  ChildKind
	childFull  []uint32
	childShort []uint16
	childByte  []uint8
}

// New returns an empty array borrowing the given seed.
func New(s *seed.Seed) *Array { return &Array{seed: s} }

// Positions exposes the (sorted, after Sort) position array.
func (a *Array) Positions() []uint32 { return a.positions }

// Buckets exposes the bucket table built by MakeBuckets.
func (a *Array) Buckets() []uint32 { return a.buckets }

// AddPositions gathers the admitted positions of one sequence span
// [beg, end): positions on the global indexStep grid whose first letter
// the seed classifies. With window > 1 only minimizers survive: the
// positions whose suffix is smallest under the seed within some window
// of `window` consecutive admitted positions, earliest position winning
// ties.
func (a *Array) AddPositions(text []byte, beg, end uint32, step int, window int) {
	start := beg
	if step > 1 {
		start = (beg + uint32(step) - 1) / uint32(step) * uint32(step)
	}

	var cand []uint32
	for p := start; p < end; p += uint32(step) {
		if a.seed.IsGoodPosition(text, p) {
			cand = append(cand, p)
		}
	}
	if window <= 1 {
		a.positions = append(a.positions, cand...)
		return
	}
	if len(cand) < window {
		return
	}

	// Sliding-window minimum over the candidate suffixes: a deque of
	// candidate indexes with strictly increasing suffixes. Ties keep the
	// earlier position, so equal suffixes never evict the front.
	var deque []int
	for i := range cand {
		for len(deque) > 0 && a.seed.Compare(text, cand[i], cand[deque[len(deque)-1]]) < 0 {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
		if deque[0] <= i-window {
			deque = deque[1:]
		}
		if i >= window-1 {
			w := cand[deque[0]]
			if n := len(a.positions); n == 0 || a.positions[n-1] != w {
				a.positions = append(a.positions, w)
			}
		}
	}
}
