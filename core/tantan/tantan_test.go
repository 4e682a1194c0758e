// core/tantan/tantan_test.go
package tantan

import (
	"strings"
	"testing"

	"seeddb-core/alphabet"
)

func maskString(t *testing.T, s string, repeatLevel bool) string {
	t.Helper()
	a, err := alphabet.New(alphabet.DNA)
	if err != nil {
		t.Fatal(err)
	}
	buf := []byte(s)
	if err := a.Encode(buf, false); err != nil {
		t.Fatal(err)
	}
	m := New(false, repeatLevel, a)
	m.Mask(buf, a.LowerTable())
	return a.DecodeString(buf)
}

func countLower(s string) int {
	n := 0
	for _, c := range s {
		if c >= 'a' && c <= 'z' {
			n++
		}
	}
	return n
}

func TestMaskSimpleRepeat(t *testing.T) {
	got := maskString(t, strings.Repeat("AC", 20), false)
	if countLower(got) == 0 {
		t.Errorf("no letter masked in %q", got)
	}
}

func TestMaskHomopolymerRun(t *testing.T) {
	got := maskString(t, strings.Repeat("A", 40), false)
	if countLower(got) == 0 {
		t.Errorf("no letter masked in %q", got)
	}
}

func TestComplexSequenceMostlyUnmasked(t *testing.T) {
	// No short-period structure; masking should stay rare.
	s := "ATCGGATTCAGCTAACGGCTTAGCCATAGGCTAGATCCGT"
	got := maskString(t, s, false)
	if n := countLower(got); n > len(s)/5 {
		t.Errorf("%d of %d letters masked in %q", n, len(s), got)
	}
}

func TestRepeatLevelMasksMore(t *testing.T) {
	s := strings.Repeat("ACG", 8)
	normal := countLower(maskString(t, s, false))
	repeat := countLower(maskString(t, s, true))
	if repeat < normal {
		t.Errorf("repeat level masked %d letters, normal level %d", repeat, normal)
	}
}

func TestMaskLeavesDegenerateLettersAlone(t *testing.T) {
	got := maskString(t, "NNNN", false)
	if got != "NNNN" {
		t.Errorf("degenerate-only span changed to %q", got)
	}
}

func TestMaskEmptySpan(t *testing.T) {
	a, err := alphabet.New(alphabet.DNA)
	if err != nil {
		t.Fatal(err)
	}
	New(false, false, a).Mask(nil, a.LowerTable()) // must not panic
}

func TestProteinParameters(t *testing.T) {
	a, err := alphabet.New(alphabet.Protein)
	if err != nil {
		t.Fatal(err)
	}
	m := New(true, false, a)
	buf := []byte(strings.Repeat("KK", 25))
	if err := a.Encode(buf, false); err != nil {
		t.Fatal(err)
	}
	m.Mask(buf, a.LowerTable())
	if countLower(a.DecodeString(buf)) == 0 {
		t.Error("protein homopolymer run should mask")
	}
}
