// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"seeddb-core/multiseq"
	"seeddb-core/ssa"
)

// Options holds all CLI flags and arguments. A seed file may embed
// "#seeddb ..." option lines; those are parsed first and the command
// line is parsed again on top, so command-line options win.
type Options struct {
	Output string
	Inputs []string // positional; empty means stdin

	Protein      bool
	UserAlphabet string

	SeedFile     string
	SeedPatterns []string

	IndexStep       int
	MinimizerWindow int
	BucketDepth     int
	MinSeedLimit    int
	ChildTable      string

	Tantan        int
	KeepLowercase bool
	CaseSensitive bool

	InputFormat string
	VolumeSize  string
	Threads     int
	CountsOnly  bool
	Verbosity   int

	Version bool

	// Derived by Validate.
	Format      multiseq.Format
	ChildKind   ssa.ChildKind
	VolumeBytes uint64
}

// Defaults returns the option values before any parsing.
func Defaults() Options {
	return Options{
		IndexStep:       1,
		MinimizerWindow: 1,
		BucketDepth:     -1,
		ChildTable:      "none",
		CaseSensitive:   true,
		InputFormat:     "fasta",
		VolumeSize:      "1G",
	}
}

// ParseInto registers all flags with opt's current values as defaults
// and parses argv over them. Positional arguments, when present,
// replace opt.Inputs.
func ParseInto(opt *Options, fs *flag.FlagSet, argv []string) error {
	fs.StringVar(&opt.Output, "output", opt.Output, "output database base name [*]")
	fs.BoolVar(&opt.Protein, "protein", opt.Protein, "use the protein alphabet [false]")
	fs.StringVar(&opt.UserAlphabet, "user-alphabet", opt.UserAlphabet, "custom alphabet letters (overrides --protein)")
	fs.StringVar(&opt.SeedFile, "seed-file", opt.SeedFile, "seed file or built-in seed name (wins over --seed-pattern)")
	fs.Var(&stringSlice{vals: &opt.SeedPatterns}, "seed-pattern", "seed pattern such as 1T10 (repeatable; ignored with --seed-file)")
	fs.IntVar(&opt.IndexStep, "index-step", opt.IndexStep, "index every Nth position [1]")
	fs.IntVar(&opt.MinimizerWindow, "minimizer-window", opt.MinimizerWindow, "keep only window minimizers; 1 disables [1]")
	fs.IntVar(&opt.BucketDepth, "bucket-depth", opt.BucketDepth, "bucket table depth; -1 = auto [-1]")
	fs.IntVar(&opt.MinSeedLimit, "min-seed-limit", opt.MinSeedLimit, "leave ranges this short unsorted; 0 = sort fully [0]")
	fs.StringVar(&opt.ChildTable, "child-table", opt.ChildTable, "child table kind: none | byte | short | full [none]")
	fs.IntVar(&opt.Tantan, "tantan", opt.Tantan, "tantan masking: 0 = off, 1 = DNA, 2 = repeat [0]")
	fs.BoolVar(&opt.KeepLowercase, "keep-lowercase", opt.KeepLowercase, "keep lowercase input letters masked [false]")
	fs.BoolVar(&opt.CaseSensitive, "case-sensitive", opt.CaseSensitive, "exclude masked (lowercase) letters from seeds [true]")
	fs.StringVar(&opt.InputFormat, "input-format", opt.InputFormat, "fasta | fastq-sanger | fastq-solexa | fastq-illumina [fasta]")
	fs.StringVar(&opt.VolumeSize, "volume-size", opt.VolumeSize, "per-volume memory budget, suffixes K/M/G/T [1G]")
	fs.IntVar(&opt.Threads, "threads", opt.Threads, "number of worker threads (0 = all CPUs) [0]")
	fs.BoolVar(&opt.CountsOnly, "counts-only", opt.CountsOnly, "only count letters; write just the manifest [false]")
	fs.IntVar(&opt.Verbosity, "verbosity", opt.Verbosity, "progress reporting level [0]")
	fs.BoolVar(&opt.Version, "version", opt.Version, "print version and exit [false]")

	if err := fs.Parse(argv); err != nil {
		return err
	}
	if args := fs.Args(); len(args) > 0 {
		opt.Inputs = args
	}
	return nil
}

// Validate checks the parsed options and fills the derived fields.
func (opt *Options) Validate() error {
	if opt.Version {
		return nil
	}
	if opt.Output == "" {
		return errors.New("--output is required")
	}
	if opt.IndexStep < 1 {
		return errors.New("--index-step must be ≥ 1")
	}
	if opt.MinimizerWindow < 1 {
		return errors.New("--minimizer-window must be ≥ 1")
	}
	if opt.BucketDepth < -1 {
		return errors.New("--bucket-depth must be ≥ -1")
	}
	if opt.MinSeedLimit < 0 {
		return errors.New("--min-seed-limit must be ≥ 0")
	}
	if opt.Tantan < 0 || opt.Tantan > 2 {
		return errors.New("--tantan must be 0, 1 or 2")
	}
	if opt.Threads < 0 {
		return errors.New("--threads must be ≥ 0")
	}
	if opt.Verbosity < 0 {
		return errors.New("--verbosity must be ≥ 0")
	}

	var err error
	if opt.ChildKind, err = ssa.ParseChildKind(opt.ChildTable); err != nil {
		return err
	}
	if opt.Format, err = multiseq.ParseFormat(opt.InputFormat); err != nil {
		return err
	}
	if opt.VolumeBytes, err = parseBytes(opt.VolumeSize); err != nil {
		return err
	}
	if opt.VolumeBytes == 0 {
		return errors.New("--volume-size must be > 0")
	}
	return nil
}

// parseBytes parses a byte count with an optional K/M/G/T suffix.
func parseBytes(s string) (uint64, error) {
	mult := uint64(1)
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'K', 'k':
			mult = 1 << 10
		case 'M', 'm':
			mult = 1 << 20
		case 'G', 'g':
			mult = 1 << 30
		case 'T', 't':
			mult = 1 << 40
		}
		if mult != 1 {
			s = s[:n-1]
		}
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad size: %q", s)
	}
	return v * mult, nil
}
