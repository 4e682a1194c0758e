// internal/pipeline/prj.go
package pipeline

import (
	"bufio"
	"fmt"
	"os"

	"seeddb-core/alphabet"
	"seeddb-core/multiseq"
	"seeddb-core/seed"
	"seeddb/internal/version"
)

// Sentinels for the volumes= line. A member of a multi-volume set keeps
// the -1 sentinel on the wire; a database that fits one volume writes
// numofindexes= instead, and the top-level manifest of a multi-volume
// set writes the real count.
const (
	volumeMember = -1
	singleVolume = -2
)

// writePrj writes one key=value manifest. Counts-only builds omit the
// index block, since no index files exist.
func writePrj(path string, cfg Config, alph *alphabet.Alphabet,
	seqCount uint64, counts []uint64, volumes, numIndexes int) error {

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't write file: %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	total := uint64(0)
	for _, c := range counts {
		total += c
	}
	fmt.Fprintf(w, "version=%s\n", version.Version)
	fmt.Fprintf(w, "alphabet=%s\n", alph)
	fmt.Fprintf(w, "numofsequences=%d\n", seqCount)
	fmt.Fprintf(w, "numofletters=%d\n", total)
	fmt.Fprintf(w, "letterfreqs=")
	for i, c := range counts {
		if i > 0 {
			fmt.Fprintf(w, " ")
		}
		fmt.Fprintf(w, "%d", c)
	}
	fmt.Fprintf(w, "\n")

	if !cfg.CountsOnly {
		fmt.Fprintf(w, "maxunsortedinterval=%d\n", cfg.MinSeedLimit)
		fmt.Fprintf(w, "keeplowercase=%d\n", b2i(cfg.KeepLowercase))
		if cfg.Tantan > 0 {
			fmt.Fprintf(w, "tantansetting=%d\n", cfg.Tantan)
		}
		fmt.Fprintf(w, "masklowercase=%d\n", b2i(cfg.CaseSensitive))
		if cfg.Format != multiseq.Fasta {
			fmt.Fprintf(w, "sequenceformat=%s\n", cfg.Format)
		}
		if cfg.MinimizerWindow > 1 {
			fmt.Fprintf(w, "minimizerwindow=%d\n", cfg.MinimizerWindow)
		}
		if volumes == singleVolume {
			fmt.Fprintf(w, "numofindexes=%d\n", numIndexes)
		} else {
			fmt.Fprintf(w, "volumes=%d\n", volumes)
		}
		for _, line := range seed.LastalOptions(cfg.SeedText) {
			fmt.Fprintf(w, "%s\n", line)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("can't write file: %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("can't write file: %s: %w", path, err)
	}
	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
