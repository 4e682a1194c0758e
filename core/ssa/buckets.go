// core/ssa/buckets.go
package ssa

import "seeddb-core/seed"

// MakeBuckets builds the prefix directory: a table whose entry for each
// depth-b subset prefix is the lower bound of that prefix's range in the
// sorted positions. depth < 0 picks the deepest depth (at most 32) whose
// table has no more entries than a quarter of the position count, or 4
// entries when that quarter is smaller.
//
// Prefix values use a mixed radix: steps[b] = 1 and
// steps[i] = 1 + count(i)*steps[i+1], so a suffix whose key ends at
// depth j < b (excluded letter) takes a value below every extension of
// it, matching the sort order.
func (a *Array) MakeBuckets(text []byte, depth int) {
	if depth < 0 {
		depth = a.defaultBucketDepth()
	}
	a.bucketDepth = depth
	a.bucketSteps = makeBucketSteps(a.seed, depth)
	size := a.bucketSteps[0]

	a.buckets = make([]uint32, size+1)
	prev := int64(-1)
	for i, p := range a.positions {
		v := int64(a.bucketValue(text, p))
		if v <= prev {
			// Inside an unsorted tail; keep the table monotonic so the
			// bucket still covers the whole tail.
			continue
		}
		for k := prev + 1; k <= v; k++ {
			a.buckets[k] = uint32(i)
		}
		prev = v
	}
	for k := prev + 1; k <= int64(size); k++ {
		a.buckets[k] = uint32(len(a.positions))
	}
}

// bucketValue is the mixed-radix prefix value of the suffix at p.
func (a *Array) bucketValue(text []byte, p uint32) uint32 {
	v := uint32(0)
	for i := 0; i < a.bucketDepth; i++ {
		c := a.seed.Classify(i, text[p+uint32(i)])
		if c == seed.Delimiter {
			break
		}
		v += 1 + uint32(c)*a.bucketSteps[i+1]
	}
	return v
}

func makeBucketSteps(s *seed.Seed, depth int) []uint32 {
	steps := make([]uint32, depth+1)
	steps[depth] = 1
	for i := depth - 1; i >= 0; i-- {
		steps[i] = 1 + uint32(s.SubsetCount(i))*steps[i+1]
	}
	return steps
}

func (a *Array) defaultBucketDepth() int {
	maxSize := uint64(len(a.positions) / 4)
	if maxSize < 4 {
		maxSize = 4
	}
	depth := 0
	for depth < 32 {
		size := uint64(1)
		ok := true
		for i := depth; i >= 0; i-- {
			size = 1 + uint64(a.seed.SubsetCount(i))*size
			if size > maxSize {
				ok = false
				break
			}
		}
		if !ok {
			break
		}
		depth++
	}
	return depth
}
