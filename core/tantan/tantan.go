// core/tantan/tantan.go

// Package tantan flags low-complexity sequence by rewriting letters to
// their lowercase (masked) codes. It scores each position with a
// background/repeat hidden-state model: one background state plus one
// repeat state per candidate repeat offset, where the repeat state for
// offset d rewards letters that echo the letter d positions back. A
// position is masked when the scaled forward probability of being in any
// repeat state crosses the threshold. Spans are independent, so the
// pipeline can mask disjoint chunks concurrently.
package tantan

import "seeddb-core/alphabet"

const (
	maskThreshold = 0.5
	repeatEnd     = 0.05 // repeat -> background per step
	offsetDecay   = 0.9  // weight decay across candidate offsets
)

// Masker holds the model tables for one alphabet and sensitivity level.
type Masker struct {
	maxOffset   int
	repeatStart float64
	offsetProb  []float64 // entry probability per offset, decayed and normalized
	matchRatio  float64   // emission likelihood ratio, echoed letter
	diffRatio   float64   // emission likelihood ratio, other canonical letter
	size        int
	fold        [alphabet.MaxCodes]byte
}

// New builds a masker. Repeat level (tantan setting 2) raises the entry
// probability so longer-period and weaker repeats get caught.
func New(isProtein, isRepeatLevel bool, alph *alphabet.Alphabet) *Masker {
	m := &Masker{size: alph.Size()}
	if isProtein {
		m.maxOffset = 50
		m.matchRatio = 0.5 * float64(m.size)
		m.diffRatio = 0.5 / float64(m.size-1) * float64(m.size)
	} else {
		m.maxOffset = 100
		m.matchRatio = 0.7 * float64(m.size)
		m.diffRatio = 0.3 / float64(m.size-1) * float64(m.size)
	}
	m.repeatStart = 0.005
	if isRepeatLevel {
		m.repeatStart = 0.02
	}

	m.offsetProb = make([]float64, m.maxOffset+1)
	total := 0.0
	w := 1.0
	for d := 1; d <= m.maxOffset; d++ {
		m.offsetProb[d] = w
		total += w
		w *= offsetDecay
	}
	for d := 1; d <= m.maxOffset; d++ {
		m.offsetProb[d] /= total
	}

	for c := 0; c < alphabet.MaxCodes; c++ {
		m.fold[c] = alph.FoldUpper(byte(c))
	}
	return m
}

// ratio is the emission likelihood ratio of the letter at i under the
// repeat state with offset d. Letters outside the canonical set are
// scored neutrally.
func (m *Masker) ratio(span []byte, i, d int) float64 {
	a := m.fold[span[i]]
	b := m.fold[span[i-d]]
	if int(a) >= m.size || int(b) >= m.size {
		return 1
	}
	if a == b {
		return m.matchRatio
	}
	return m.diffRatio
}

// Mask rewrites low-complexity letters of one sequence span in place
// through the lowercase table.
func (m *Masker) Mask(span []byte, toLower *[alphabet.MaxCodes]byte) {
	n := len(span)
	if n == 0 {
		return
	}
	maxOff := m.maxOffset
	if maxOff > n-1 {
		maxOff = n - 1
	}

	bg := 1.0
	f := make([]float64, m.maxOffset+1)
	for i := 0; i < n; i++ {
		exit := 0.0
		for d := 1; d <= maxOff; d++ {
			exit += f[d]
		}
		exit *= repeatEnd

		newBg := bg*(1-m.repeatStart) + exit
		repeat := 0.0
		for d := 1; d <= maxOff; d++ {
			p := f[d]*(1-repeatEnd) + bg*m.repeatStart*m.offsetProb[d]
			if i < d {
				p = 0
			} else {
				p *= m.ratio(span, i, d)
			}
			f[d] = p
			repeat += p
		}

		scale := newBg + repeat
		bg = newBg / scale
		for d := 1; d <= maxOff; d++ {
			f[d] /= scale
		}
		if repeat/scale >= maskThreshold {
			span[i] = toLower[span[i]]
		}
	}
}
