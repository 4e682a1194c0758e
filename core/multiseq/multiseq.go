// core/multiseq/multiseq.go
package multiseq

// MultiSeq is an append-only concatenation of sequences with one
// delimiter byte before, between and after them:
//
//	D s0 D s1 D ... D s(n-1) D [partial]
//
// Letters are stored raw until the caller encodes the freshly appended
// span in place; the delimiter padding is the space character, which the
// alphabet encodes to its delimiter code. Appends honor a per-volume
// letter cap: an append that would overshoot the cap mid-sequence stops
// and leaves the buffer "not finished"; Reinit then carries the partial
// sequence into the next volume so sequences are never split.
type MultiSeq struct {
	format Format

	seq   []byte   // concatenated letters + delimiter padding
	quals []byte   // parallel quality bytes (FASTQ only)
	names []string // names of finished sequences
	ends  []uint32 // ends[0]=pad; ends[i+1] = end of sequence i incl. its trailing pad

	inProgress bool
	curName    string

	carry []byte // FASTA: letters read but not yet admitted under the cap

	parked      bool // FASTQ: a whole record is waiting for the next volume
	parkedSeq   []byte
	parkedQuals []byte
}

const (
	pad         = 1   // delimiter bytes between sequences
	padByte     = ' ' // encodes to the alphabet's delimiter code
	padQualByte = '~'
)

// New returns an empty buffer holding just the leading delimiter.
func New(f Format) *MultiSeq {
	m := &MultiSeq{format: f}
	m.seq = []byte{padByte}
	if IsFastq(f) {
		m.quals = []byte{padQualByte}
	}
	m.ends = []uint32{pad}
	return m
}

// Reinit drops the finished sequences and keeps appending state: the
// trailing delimiter becomes the new leading delimiter, and any partial
// sequence (already encoded) moves with it.
func (m *MultiSeq) Reinit() {
	fin := m.FinishedSize()
	m.seq = append([]byte(nil), m.seq[fin-pad:]...)
	if IsFastq(m.format) {
		m.quals = append([]byte(nil), m.quals[fin-pad:]...)
	}
	m.names = nil
	m.ends = []uint32{pad}
}

// FinishedSequences is the number of whole sequences in the buffer.
func (m *MultiSeq) FinishedSequences() int { return len(m.ends) - 1 }

// FinishedSize is the text length covering all finished sequences,
// including the trailing delimiter.
func (m *MultiSeq) FinishedSize() uint32 { return m.ends[len(m.ends)-1] }

// UnfinishedSize is the total buffer length including any partial sequence.
func (m *MultiSeq) UnfinishedSize() int { return len(m.seq) }

// IsFinished reports whether the last append ended at a sequence boundary.
func (m *MultiSeq) IsFinished() bool { return !m.inProgress }

// SeqBeg returns the text offset of finished sequence i.
func (m *MultiSeq) SeqBeg(i int) uint32 { return m.ends[i] }

// SeqEnd returns the text offset just past finished sequence i.
func (m *MultiSeq) SeqEnd(i int) uint32 { return m.ends[i+1] - pad }

// Name returns the name of finished sequence i.
func (m *MultiSeq) Name(i int) string { return m.names[i] }

// Buf exposes the whole buffer, partial tail included. The pipeline
// encodes freshly appended spans of it in place.
func (m *MultiSeq) Buf() []byte { return m.seq }

// Text exposes the finished part of the buffer; the masker rewrites
// spans of it and the suffix array reads it.
func (m *MultiSeq) Text() []byte { return m.seq[:m.FinishedSize()] }

// Quals exposes the finished quality bytes (FASTQ only).
func (m *MultiSeq) Quals() []byte { return m.quals[:m.FinishedSize()] }

// finish closes the in-progress sequence with its trailing delimiter.
func (m *MultiSeq) finish() {
	m.seq = append(m.seq, padByte)
	if IsFastq(m.format) {
		m.quals = append(m.quals, padQualByte)
	}
	m.names = append(m.names, m.curName)
	m.ends = append(m.ends, uint32(len(m.seq)))
	m.inProgress = false
	m.curName = ""
}
