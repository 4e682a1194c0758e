// core/seed/seed.go
package seed

import (
	"seeddb-core/alphabet"
)

// Delimiter is the reserved class index for letters a subset map excludes:
// sequence delimiters, letters outside every group, and (when case
// sensitivity is on) masked lowercase letters. Hitting it ends a suffix key.
const Delimiter = 0xff

// Seed is a cyclic subset seed: a period-P sequence of subset maps over
// the encoded alphabet. Position i of a suffix is classified by the map
// at i mod P.
type Seed struct {
	period int
	counts []int     // groups per pattern position
	maps   [][]uint8 // per pattern position: letter code -> class index or Delimiter
}

// Period returns the seed's pattern length P.
func (s *Seed) Period() int { return s.period }

// SubsetCount returns the number of classes of the map used at depth i.
func (s *Seed) SubsetCount(depth int) int { return s.counts[depth%s.period] }

// Classify maps a letter code through the subset map at depth i.
func (s *Seed) Classify(depth int, code byte) uint8 {
	return s.maps[depth%s.period][code]
}

// IsGoodPosition reports whether the suffix starting at pos is admitted:
// its first letter must be classified (not excluded) by the map at offset 0.
func (s *Seed) IsGoodPosition(text []byte, pos uint32) bool {
	return s.maps[0][text[pos]] != Delimiter
}

// Compare orders two suffixes under the seed. Excluded letters end a key,
// and a shorter key sorts before any extension of it. Equal keys compare
// as 0; callers break such ties by position.
func (s *Seed) Compare(text []byte, a, b uint32) int {
	for depth := 0; ; depth++ {
		m := s.maps[depth%s.period]
		ca := m[text[a+uint32(depth)]]
		cb := m[text[b+uint32(depth)]]
		if ca == Delimiter || cb == Delimiter {
			switch {
			case ca == cb:
				return 0
			case ca == Delimiter:
				return -1
			default:
				return 1
			}
		}
		if ca != cb {
			return int(ca) - int(cb)
		}
	}
}

// newSeed builds the per-position maps from resolved group lists.
// groups[i] holds the letter groups for pattern position i.
func newSeed(groups [][][]byte, caseSensitive bool, alph *alphabet.Alphabet) (*Seed, error) {
	s := &Seed{period: len(groups)}
	for _, gs := range groups {
		m := make([]uint8, alph.NumCodes())
		for i := range m {
			m[i] = Delimiter
		}
		for class, g := range gs {
			for _, letter := range g {
				code, err := alph.CodeOf(letter)
				if err != nil {
					return nil, err
				}
				if m[code] != Delimiter {
					return nil, errRepeatedLetter(letter)
				}
				m[code] = uint8(class)
				lower := alph.FoldLower(code)
				if caseSensitive {
					m[lower] = Delimiter
				} else {
					m[lower] = uint8(class)
				}
			}
		}
		s.maps = append(s.maps, m)
		s.counts = append(s.counts, len(gs))
	}
	return s, nil
}
