// internal/pipeline/pipeline.go

// Package pipeline drives the database build: it streams sequences into
// the multi-sequence buffer under a per-volume letter cap, flushes a
// volume (mask, gather, sort, bucket, write) whenever the cap stops an
// append, and writes the top-level manifest at the end.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"seeddb-core/alphabet"
	"seeddb-core/multiseq"
	"seeddb-core/seed"
	"seeddb-core/ssa"
	"seeddb-core/tantan"
	"seeddb/internal/runutil"
)

// Config carries the resolved build options.
type Config struct {
	OutName string
	Inputs  []string // empty means stdin

	Format multiseq.Format

	IndexStep       int
	MinimizerWindow int
	BucketDepth     int
	MinSeedLimit    int
	ChildKind       ssa.ChildKind

	Tantan        int
	KeepLowercase bool
	CaseSensitive bool

	VolumeBytes uint64
	Threads     int
	CountsOnly  bool

	// CheckDubiousDNA is set when the alphabet defaulted to DNA (no
	// --protein, no --user-alphabet).
	CheckDubiousDNA bool

	SeedText string
}

// Build runs the whole indexing pipeline.
func Build(ctx context.Context, cfg Config, alph *alphabet.Alphabet,
	seeds []*seed.Seed, masker *tantan.Masker, log *runutil.Logger) error {

	maxLetters := maxLettersPerVolume(cfg, len(seeds))
	multi := multiseq.New(cfg.Format)
	if err := alph.Encode(multi.Buf(), cfg.KeepLowercase); err != nil {
		return err
	}

	var (
		volumeNumber int
		seqCount     uint64
		warned       bool
		letterCounts = make([]uint64, alph.Size())
		letterTotals = make([]uint64, alph.Size())
	)

	inputs := cfg.Inputs
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	flushVolume := func() error {
		base := fmt.Sprintf("%s%d", cfg.OutName, volumeNumber)
		volumeNumber++
		if err := makeVolume(cfg, seeds, multi, alph, letterCounts, masker, base, false, log); err != nil {
			return err
		}
		for c := range letterCounts {
			letterTotals[c] += letterCounts[c]
			letterCounts[c] = 0
		}
		multi.Reinit()
		return nil
	}

	for _, path := range inputs {
		rc, err := multiseq.Open(path)
		if err != nil {
			return err
		}
		log.Logf("reading %s...", path)
		br := bufio.NewReaderSize(rc, 1<<20)

		for {
			if err := ctx.Err(); err != nil {
				_ = rc.Close()
				return err
			}

			limit := maxLetters
			if multi.FinishedSequences() == 0 {
				// The first sequence of a volume is never capped, so a
				// sequence bigger than the budget becomes its own volume
				// instead of failing the build.
				limit = math.MaxUint32
			}
			old := multi.UnfinishedSize()
			if multiseq.IsFastq(cfg.Format) {
				err = multi.AppendFastq(br, limit)
			} else {
				err = multi.AppendFasta(br, limit)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				_ = rc.Close()
				return err
			}
			if !multi.IsFinished() && multi.FinishedSequences() == 0 {
				// Only reachable when a single sequence overflows the
				// position type.
				_ = rc.Close()
				return errors.New("encountered a sequence that's too long")
			}
			if err := alph.Encode(multi.Buf()[old:], cfg.KeepLowercase); err != nil {
				_ = rc.Close()
				return err
			}

			if cfg.CheckDubiousDNA && !warned && seqCount == 0 && isDubiousDna(alph, multi) {
				log.Warnf("the first sequence doesn't look like DNA")
				warned = true
			}

			if multi.IsFinished() {
				seqCount++
				last := multi.FinishedSequences() - 1
				alph.Count(multi.Text()[multi.SeqBeg(last):multi.SeqEnd(last)], letterCounts)
				if cfg.CountsOnly {
					// Memory saving: counts are all we need.
					multi.Reinit()
				}
			} else {
				if err := flushVolume(); err != nil {
					_ = rc.Close()
					return err
				}
			}
		}
		if err := rc.Close(); err != nil {
			return err
		}
	}

	if multi.FinishedSequences() > 0 {
		if volumeNumber == 0 {
			// Everything fit in one volume: its manifest doubles as the
			// top-level one, under the short base name.
			return makeVolume(cfg, seeds, multi, alph, letterCounts, masker,
				cfg.OutName, true, log)
		}
		if err := flushVolume(); err != nil {
			return err
		}
	}

	for c := range letterCounts {
		letterTotals[c] += letterCounts[c]
	}
	return writePrj(cfg.OutName+".prj", cfg, alph, seqCount, letterTotals,
		volumeNumber, len(seeds))
}

// maxLettersPerVolume estimates how many letters keep one volume's
// memory near the configured budget: bytes per letter (2 for FASTQ)
// plus index bytes per position (position size + one bucket byte, per
// seed, divided by the index step), clamped to the position type.
func maxLettersPerVolume(cfg Config, numIndexes int) uint32 {
	bytesPerLetter := uint64(1)
	if multiseq.IsFastq(cfg.Format) {
		bytesPerLetter = 2
	}
	maxIndexBytesPerPosition := uint64(4+1) * uint64(numIndexes)
	x := bytesPerLetter*uint64(cfg.IndexStep) + maxIndexBytesPerPosition
	y := cfg.VolumeBytes / x * uint64(cfg.IndexStep)
	if y > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(y)
}

// isDubiousDna checks whether the first sequence looks like it isn't
// really DNA: fewer than 90 of its first 100 letters canonical DNA or N.
func isDubiousDna(alph *alphabet.Alphabet, multi *multiseq.MultiSeq) bool {
	buf := multi.Buf()
	nCode, err := alph.CodeOf('N')
	if err != nil {
		return false
	}
	count := 0
	for i := 0; i < 100; i++ {
		j := 1 + i // the first sequence starts after the leading delimiter
		if j >= len(buf) {
			return false
		}
		c := alph.FoldUpper(buf[j])
		if c == alph.Delim() {
			return false // hit the end of the sequence early
		}
		if int(c) < alph.Size() || c == nCode {
			count++
		}
	}
	return count < 90
}
