// core/ssa/sort.go
package ssa

import (
	"sync"

	"seeddb-core/seed"
)

// span is one pending sort range: positions[lo:hi] all share the same
// class at every depth below `depth`.
type span struct {
	lo, hi uint32
	depth  int
}

// Sort orders the gathered positions by seed-wise suffix comparison.
// The sort is a multikey refinement over seed depths: each range is
// partitioned by the class of its suffixes at the current depth with a
// stable counting sort (excluded-letter suffixes first, then classes in
// order), and each class sub-range recurses at depth+1 through an
// explicit work stack. Ranges no longer than minSeedLimit are left
// unsorted. The result is deterministic for any thread count: equal
// keys keep their gathered (ascending position) order.
//
// When kind is not ChildNone a child table is built alongside: for every
// non-first class sub-range created during refinement, the entry at its
// first slot records the start of the next sibling sub-range (the narrow
// kinds store the distance, 0 meaning out of reach).
func (a *Array) Sort(text []byte, minSeedLimit int, kind ChildKind, threads int) {
	a.childKind = kind
	n := len(a.positions)
	switch kind {
	case ChildFull:
		a.childFull = make([]uint32, n)
	case ChildShort:
		a.childShort = make([]uint16, n)
	case ChildByte:
		a.childByte = make([]uint8, n)
	}
	if n < 2 || (minSeedLimit > 0 && n <= minSeedLimit) {
		return
	}
	if threads < 1 {
		threads = 1
	}

	roots := []span{{0, uint32(n), 0}}
	if threads > 1 {
		// Refine breadth-first until there is enough independent work,
		// then let the workers take over depth-first.
		target := threads * 8
		thr := len(a.positions) / target
		if thr < 16 {
			thr = 16
		}
		for len(roots) < target {
			next := roots[:0:0]
			split := false
			for _, s := range roots {
				if s.depth < 8 && int(s.hi-s.lo) >= thr {
					next = append(next, a.partition(text, s, minSeedLimit)...)
					split = true
				} else {
					next = append(next, s)
				}
			}
			roots = next
			if !split {
				break
			}
		}
	}

	work := make(chan span, len(roots))
	for _, s := range roots {
		work <- s
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(threads)
	for t := 0; t < threads; t++ {
		go func() {
			defer wg.Done()
			var stack []span
			for s := range work {
				stack = append(stack[:0], s)
				for len(stack) > 0 {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					stack = append(stack, a.partition(text, top, minSeedLimit)...)
				}
			}
		}()
	}
	wg.Wait()
}

// partition splits one range by subset class at its depth and returns
// the sub-ranges that still need refining.
func (a *Array) partition(text []byte, s span, minSeedLimit int) []span {
	sd := a.seed
	depth := uint32(s.depth)
	k := sd.SubsetCount(s.depth)

	// Class 0 is the excluded-letter (ended suffix) group; class c maps
	// to slot c+1.
	counts := make([]uint32, k+1)
	for i := s.lo; i < s.hi; i++ {
		c := sd.Classify(s.depth, text[a.positions[i]+depth])
		if c == seed.Delimiter {
			counts[0]++
		} else {
			counts[c+1]++
		}
	}

	// Stable scatter through a scratch copy.
	offs := make([]uint32, k+1)
	sum := uint32(0)
	for c := range counts {
		offs[c] = sum
		sum += counts[c]
	}
	scratch := make([]uint32, s.hi-s.lo)
	copy(scratch, a.positions[s.lo:s.hi])
	for _, p := range scratch {
		c := sd.Classify(s.depth, text[p+depth])
		slot := uint32(0)
		if c != seed.Delimiter {
			slot = uint32(c) + 1
		}
		a.positions[s.lo+offs[slot]] = p
		offs[slot]++
	}

	// Child entries and the sub-ranges still to refine. The ended-suffix
	// group is done: stability keeps it in ascending position order,
	// which is the tie-break.
	var out []span
	first := true
	base := s.lo
	for c := 0; c < k+1; c++ {
		cnt := counts[c]
		if cnt == 0 {
			continue
		}
		if !first {
			a.setChild(base, base+cnt)
		}
		first = false
		if c > 0 && cnt > 1 && !(minSeedLimit > 0 && int(cnt) <= minSeedLimit) {
			out = append(out, span{base, base + cnt, s.depth + 1})
		}
		base += cnt
	}
	return out
}

func (a *Array) setChild(start, boundary uint32) {
	switch a.childKind {
	case ChildFull:
		a.childFull[start] = boundary
	case ChildShort:
		d := boundary - start
		if d > 0xffff {
			d = 0
		}
		a.childShort[start] = uint16(d)
	case ChildByte:
		d := boundary - start
		if d > 0xff {
			d = 0
		}
		a.childByte[start] = uint8(d)
	}
}
