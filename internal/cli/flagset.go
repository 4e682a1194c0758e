// internal/cli/flagset.go
package cli

import (
	"flag"
	"fmt"

	"seeddb/internal/version"
)

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: build a seeded suffix-array database for local sequence alignment

Version: %s

Usage: %s [options] --output=NAME [sequence-file ...]

Input files may be FASTA or FASTQ, plain, gzip or zstd; "-" (the
default) reads stdin.

`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// stringSlice is a repeatable string flag. The first Set of a parse
// pass clears earlier values, so command-line patterns replace patterns
// embedded in a seed file instead of stacking on them.
type stringSlice struct {
	vals    *[]string
	touched bool
}

func (s *stringSlice) String() string {
	if s == nil || s.vals == nil {
		return ""
	}
	out := ""
	for i, v := range *s.vals {
		if i > 0 {
			out += ","
		}
		out += v
	}
	return out
}

func (s *stringSlice) Set(v string) error {
	if !s.touched {
		*s.vals = nil
		s.touched = true
	}
	*s.vals = append(*s.vals, v)
	return nil
}
