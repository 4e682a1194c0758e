// internal/pipeline/volume.go
package pipeline

import (
	"sync"

	"seeddb-core/alphabet"
	"seeddb-core/multiseq"
	"seeddb-core/seed"
	"seeddb-core/ssa"
	"seeddb-core/tantan"
	"seeddb/internal/runutil"
)

// makeVolume masks, indexes and writes one volume from the buffer's
// finished sequences. With multiple seeds the index files get an
// a/b/... suffix in seed order; `single` marks a database that fits one
// volume, whose manifest doubles as the top-level one.
func makeVolume(cfg Config, seeds []*seed.Seed, multi *multiseq.MultiSeq,
	alph *alphabet.Alphabet, counts []uint64, masker *tantan.Masker,
	base string, single bool, log *runutil.Logger) error {

	numIndexes := len(seeds)
	numSeqs := multi.FinishedSequences()
	textLen := multi.FinishedSize()

	if masker != nil {
		log.Logf("masking...")
		maskSequences(multi, masker, alph, cfg.Threads)
	}

	log.Logf("writing...")
	volumes := volumeMember
	if single {
		volumes = singleVolume
	}
	if err := writePrj(base+".prj", cfg, alph, uint64(numSeqs), counts, volumes, numIndexes); err != nil {
		return err
	}
	if err := multi.ToFiles(base); err != nil {
		return err
	}

	text := multi.Text()
	for x, sd := range seeds {
		idx := ssa.New(sd)

		log.Logf("gathering...")
		for i := 0; i < numSeqs; i++ {
			idx.AddPositions(text, multi.SeqBeg(i), multi.SeqEnd(i),
				cfg.IndexStep, cfg.MinimizerWindow)
		}

		log.Logf("sorting...")
		idx.Sort(text, cfg.MinSeedLimit, cfg.ChildKind, cfg.Threads)

		log.Logf("bucketing...")
		idx.MakeBuckets(text, cfg.BucketDepth)

		log.Logf("writing...")
		idxBase := base
		if numIndexes > 1 {
			idxBase += string(rune('a' + x))
		}
		if err := idx.ToFiles(idxBase, textLen); err != nil {
			return err
		}
	}

	log.Logf("done!")
	return nil
}

// maskSequences runs the masker over disjoint chunks of whole sequences
// concurrently; spans are independent, so no synchronization is needed.
func maskSequences(multi *multiseq.MultiSeq, masker *tantan.Masker,
	alph *alphabet.Alphabet, threads int) {

	numSeqs := multi.FinishedSequences()
	if threads > numSeqs {
		threads = numSeqs
	}
	if threads < 1 {
		threads = 1
	}
	buf := multi.Text()

	var wg sync.WaitGroup
	wg.Add(threads)
	for j := 0; j < threads; j++ {
		beg := j * numSeqs / threads
		end := (j + 1) * numSeqs / threads
		go func(beg, end int) {
			defer wg.Done()
			for i := beg; i < end; i++ {
				masker.Mask(buf[multi.SeqBeg(i):multi.SeqEnd(i)], alph.LowerTable())
			}
		}(beg, end)
	}
	wg.Wait()
}
