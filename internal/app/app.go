// internal/app/app.go
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"seeddb-core/alphabet"
	"seeddb-core/seed"
	"seeddb-core/tantan"
	"seeddb/internal/cli"
	"seeddb/internal/pipeline"
	"seeddb/internal/runutil"
	"seeddb/internal/version"
)

const name = "seeddb"

// RunContext parses argv, wires the pipeline together and runs it.
// Exit codes: 0 ok, 2 usage error, 1 runtime error.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			if strings.Contains(fmt.Sprint(r), "out of memory") {
				fmt.Fprintf(stderr, "%s: out of memory\n", name)
			} else {
				fmt.Fprintf(stderr, "%s: internal error: %v\n", name, r)
			}
			code = 1
		}
	}()

	opt := cli.Defaults()
	fs := cli.NewFlagSet(name)
	fs.SetOutput(io.Discard)
	if err := cli.ParseInto(&opt, fs, argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}
	if opt.Version {
		fmt.Fprintf(stdout, "%s version %s\n", name, version.Version)
		return 0
	}

	// A seed file may embed "#seeddb ..." options; they apply underneath
	// the command line, so parse them first and the command line again
	// on top.
	var seedText string
	if opt.SeedFile != "" {
		text, err := seedTextFromFileOrName(opt.SeedFile)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return 2
		}
		if emb := seed.EmbeddedOptions(text); len(emb) > 0 {
			merged := cli.Defaults()
			for _, args := range [][]string{emb, argv} {
				fs := cli.NewFlagSet(name)
				fs.SetOutput(io.Discard)
				if err := cli.ParseInto(&merged, fs, args); err != nil {
					fmt.Fprintf(stderr, "%s: %v\n", name, err)
					return 2
				}
			}
			opt = merged
		}
		seedText = text
	}

	if err := opt.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}

	alph, dubious, err := makeAlphabet(&opt)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}

	if seedText == "" {
		seedText, err = defaultSeedText(&opt, alph)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return 2
		}
	}
	seeds, err := seed.ParseText(seedText, opt.CaseSensitive, alph)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 2
	}
	if len(seeds) == 0 {
		fmt.Fprintf(stderr, "%s: no seed patterns\n", name)
		return 2
	}

	var masker *tantan.Masker
	if opt.Tantan > 0 {
		masker = tantan.New(alph.IsProtein(), opt.Tantan > 1, alph)
	}

	log := runutil.NewLogger(name, opt.Verbosity, stderr)
	cfg := pipeline.Config{
		OutName:         opt.Output,
		Inputs:          opt.Inputs,
		Format:          opt.Format,
		IndexStep:       opt.IndexStep,
		MinimizerWindow: opt.MinimizerWindow,
		BucketDepth:     opt.BucketDepth,
		MinSeedLimit:    opt.MinSeedLimit,
		ChildKind:       opt.ChildKind,
		Tantan:          opt.Tantan,
		KeepLowercase:   opt.KeepLowercase,
		CaseSensitive:   opt.CaseSensitive,
		VolumeBytes:     opt.VolumeBytes,
		Threads:         runutil.Threads(opt.Threads),
		CountsOnly:      opt.CountsOnly,
		CheckDubiousDNA: dubious,
		SeedText:        seedText,
	}
	if err := pipeline.Build(ctx, cfg, alph, seeds, masker, log); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}
	return 0
}

// Run is the background-context convenience wrapper.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func makeAlphabet(opt *cli.Options) (*alphabet.Alphabet, bool, error) {
	switch {
	case opt.UserAlphabet != "":
		a, err := alphabet.New(opt.UserAlphabet)
		return a, false, err
	case opt.Protein:
		a, err := alphabet.New(alphabet.Protein)
		return a, false, err
	default:
		a, err := alphabet.New(alphabet.DNA)
		return a, true, err
	}
}

// defaultSeedText resolves the seed source when no seed file was given:
// explicit patterns, else YASS for DNA, else every-position for protein
// and user alphabets.
func defaultSeedText(opt *cli.Options, alph *alphabet.Alphabet) (string, error) {
	if len(opt.SeedPatterns) > 0 {
		var b strings.Builder
		for _, p := range opt.SeedPatterns {
			t, err := seed.StringFromPatterns(p, alph.String())
			if err != nil {
				return "", err
			}
			b.WriteString(t)
		}
		return b.String(), nil
	}
	if alph.String() == alphabet.DNA {
		t, _ := seed.StringFromName("YASS")
		return t, nil
	}
	return seed.StringFromPatterns("1", alph.String())
}

// seedTextFromFileOrName treats the --seed-file value as a built-in
// seed name first, then as a file path.
func seedTextFromFileOrName(s string) (string, error) {
	if text, ok := seed.StringFromName(s); ok {
		return text, nil
	}
	b, err := os.ReadFile(s)
	if err != nil {
		return "", fmt.Errorf("can't read seed file: %w", err)
	}
	return string(b), nil
}
