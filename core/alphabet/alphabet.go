// core/alphabet/alphabet.go
package alphabet

import (
	"fmt"
	"strings"
)

// Built-in letter sets.
const (
	DNA     = "ACGT"
	Protein = "ACDEFGHIKLMNPQRSTVWY"
)

// The uppercase block always spans 26 letters plus the delimiter; the
// lowercase block mirrors it at a fixed offset.
const upperCodes = 27

// MaxCodes bounds the encoded letter space (both case blocks).
const MaxCodes = 2 * upperCodes

const badCode = 0xff

// Alphabet maps sequence bytes to small letter codes and back.
//
// Code layout: the canonical letters get codes 0..Size-1, the sequence
// delimiter gets code Size, the remaining A-Z letters (so any alphabetic
// input stays encodable) get codes above that, and every lowercase letter
// gets its uppercase code shifted by a fixed offset. The space character
// encodes to the delimiter, which is what the multi-sequence buffer uses
// as padding between sequences.
type Alphabet struct {
	letters string // canonical uppercase letters, in order
	size    int
	delim   byte

	encode  [256]byte
	decode  [MaxCodes]byte
	toUpper [MaxCodes]byte
	toLower [MaxCodes]byte
}

// New builds an alphabet from an ordered string of unique uppercase letters.
func New(letters string) (*Alphabet, error) {
	if letters == "" {
		return nil, fmt.Errorf("empty alphabet")
	}
	var seen [256]bool
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return nil, fmt.Errorf("bad alphabet letter: %q", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("repeated alphabet letter: %q", c)
		}
		seen[c] = true
	}

	a := &Alphabet{letters: letters, size: len(letters)}
	a.delim = byte(a.size)
	for i := range a.encode {
		a.encode[i] = badCode
	}

	// Canonical letters, then the delimiter, then the leftover A-Z letters.
	next := byte(0)
	for i := 0; i < len(letters); i++ {
		a.addLetter(letters[i], next)
		next++
	}
	a.encode[' '] = a.delim
	a.decode[a.delim] = ' '
	next++
	for c := byte('A'); c <= 'Z'; c++ {
		if !seen[c] {
			a.addLetter(c, next)
			next++
		}
	}
	// Case folding over the code space. The delimiter folds to itself.
	for u := byte(0); u < upperCodes; u++ {
		if u == a.delim {
			a.toUpper[u] = u
			a.toLower[u] = u
			continue
		}
		l := u + upperCodes
		a.toUpper[u] = u
		a.toLower[u] = l
		a.toUpper[l] = u
		a.toLower[l] = l
		a.decode[l] = a.decode[u] + ('a' - 'A')
	}
	return a, nil
}

func (a *Alphabet) addLetter(c, code byte) {
	a.encode[c] = code
	a.encode[c+'a'-'A'] = code + upperCodes
	a.decode[code] = c
}

// String returns the canonical letters; this is what the manifest records.
func (a *Alphabet) String() string { return a.letters }

// Size is the number of canonical letters.
func (a *Alphabet) Size() int { return a.size }

// Delim is the code of the between-sequence delimiter.
func (a *Alphabet) Delim() byte { return a.delim }

// NumCodes is the total number of codes in use (uppercase block + lowercase block).
func (a *Alphabet) NumCodes() int { return MaxCodes }

// IsProtein reports whether this is the built-in protein alphabet.
func (a *Alphabet) IsProtein() bool { return a.letters == Protein }

// CodeOf returns the code of a letter (lowercase letters get their
// masked code, space gets the delimiter), or an error for any other byte.
func (a *Alphabet) CodeOf(c byte) (byte, error) {
	code := a.encode[c]
	if code == badCode {
		return 0, fmt.Errorf("bad symbol: %q", c)
	}
	return code, nil
}

// DecodeByte maps a code back to its letter (lowercase for masked codes).
func (a *Alphabet) DecodeByte(code byte) byte { return a.decode[code] }

// FoldUpper maps a code to its uppercase equivalent.
func (a *Alphabet) FoldUpper(code byte) byte { return a.toUpper[code] }

// FoldLower maps a code to its lowercase (masked) equivalent.
func (a *Alphabet) FoldLower(code byte) byte { return a.toLower[code] }

// LowerTable exposes the code-to-lowercase table; the masker rewrites
// through it in place.
func (a *Alphabet) LowerTable() *[MaxCodes]byte { return &a.toLower }

// Encode rewrites raw sequence bytes to letter codes in place. Unless
// keepLowercase is set, lowercase input letters fold to their uppercase
// codes, so soft-masked input is indexed like plain sequence.
func (a *Alphabet) Encode(buf []byte, keepLowercase bool) error {
	for i, c := range buf {
		code := a.encode[c]
		if code == badCode {
			return fmt.Errorf("bad symbol in sequence: %q", c)
		}
		if !keepLowercase {
			code = a.toUpper[code]
		}
		buf[i] = code
	}
	return nil
}

// Count adds per-letter occurrence counts for an encoded span. Masked
// letters count as their uppercase letter; letters outside the canonical
// set (and delimiters) are not counted.
func (a *Alphabet) Count(span []byte, counts []uint64) {
	for _, c := range span {
		u := a.toUpper[c]
		if int(u) < a.size {
			counts[u]++
		}
	}
}

// DecodeString renders an encoded span as text; handy in errors and tests.
func (a *Alphabet) DecodeString(span []byte) string {
	var b strings.Builder
	b.Grow(len(span))
	for _, c := range span {
		b.WriteByte(a.decode[c])
	}
	return b.String()
}
