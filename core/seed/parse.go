// core/seed/parse.go
package seed

import (
	"fmt"
	"strings"

	"seeddb-core/alphabet"
)

func errRepeatedLetter(c byte) error {
	return fmt.Errorf("seed group letter repeated: %q", c)
}

// ParseText parses seed text into one or more seeds.
//
// The format is line based:
//
//	# comment (lines for the aligner start with "#lastal" and are kept
//	  verbatim in the manifests; "#seeddb" lines carry embedded options)
//	1 A C G T        subset alphabet named "1": one group per field
//	T AG CT          subset alphabet named "T": transition groups
//	1T1T11           pattern line: one seed, period = line length
//
// Subset alphabet definitions accumulate; every pattern line emits one
// seed using the definitions seen so far.
func ParseText(text string, caseSensitive bool, alph *alphabet.Alphabet) ([]*Seed, error) {
	defs := make(map[byte][][]byte)
	var seeds []*Seed

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 1 {
			name := fields[0]
			if len(name) != 1 {
				return nil, fmt.Errorf("seed subset alphabet name must be one character: %q", name)
			}
			var groups [][]byte
			for _, f := range fields[1:] {
				groups = append(groups, []byte(f))
			}
			defs[name[0]] = groups
			continue
		}

		pattern := fields[0]
		groups := make([][][]byte, 0, len(pattern))
		for i := 0; i < len(pattern); i++ {
			g, ok := defs[pattern[i]]
			if !ok {
				return nil, fmt.Errorf("unknown seed pattern character: %q", pattern[i])
			}
			groups = append(groups, g)
		}
		s, err := newSeed(groups, caseSensitive, alph)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}

// StringFromPatterns renders a bare pattern such as "1", "110" or "1T10"
// as seed text over the given letters. Pattern characters:
//
//	1  every letter in its own group (exact match)
//	0  all letters in one group (any letter, no discrimination)
//	T  purine/pyrimidine transition groups (DNA only)
func StringFromPatterns(pattern, letters string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("empty seed pattern")
	}
	var b strings.Builder
	used := make(map[byte]bool)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if used[c] {
			continue
		}
		used[c] = true
		switch c {
		case '1':
			b.WriteString("1")
			for j := 0; j < len(letters); j++ {
				b.WriteByte(' ')
				b.WriteByte(letters[j])
			}
			b.WriteByte('\n')
		case '0':
			fmt.Fprintf(&b, "0 %s\n", letters)
		case 'T', 't':
			if letters != alphabet.DNA {
				return "", fmt.Errorf("seed pattern character %q needs the DNA alphabet", c)
			}
			fmt.Fprintf(&b, "%c AG CT\n", c)
		default:
			return "", fmt.Errorf("bad seed pattern character: %q", c)
		}
	}
	b.WriteString(pattern)
	b.WriteByte('\n')
	return b.String(), nil
}

// yassSeed is the built-in transition-tolerant DNA seed.
const yassSeed = `# YASS-style transition seed for DNA
#lastal -m10
1 A C G T
0 ACGT
T AG CT
1T1001100101
`

// StringFromName returns the text of a built-in named seed.
func StringFromName(name string) (string, bool) {
	if name == "YASS" {
		return yassSeed, true
	}
	return "", false
}

// LastalOptions extracts the "#lastal ..." lines of seed text; the
// manifest writer passes them through for the aligner.
func LastalOptions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#lastal") {
			out = append(out, line)
		}
	}
	return out
}

// EmbeddedOptions collects the arguments of "#seeddb ..." lines; they are
// applied underneath the command line.
func EmbeddedOptions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#seeddb") {
			out = append(out, strings.Fields(line)[1:]...)
		}
	}
	return out
}
