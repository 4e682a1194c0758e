// core/multiseq/fastq.go
package multiseq

import (
	"bufio"
	"fmt"
	"io"
)

// AppendFastq reads one FASTQ record, stopping at the cap on a record
// boundary: a record that would overshoot maxLen is parked, the buffer
// reports not finished, and the record is committed by the next call
// (after Reinit). Returns io.EOF when the input is exhausted.
func (m *MultiSeq) AppendFastq(r *bufio.Reader, maxLen uint32) error {
	if m.parked {
		if int64(len(m.seq))+int64(len(m.parkedSeq)) > int64(maxLen) {
			// Still doesn't fit; the caller flushes a volume, or reports
			// the record too long when the buffer is already empty.
			return nil
		}
		m.commitParked()
		return nil
	}

	name, err := readHeader(r, '@')
	if err != nil {
		return err
	}

	var seq []byte
	for {
		b, err := r.Peek(1)
		if err == io.EOF {
			return fmt.Errorf("truncated fastq record: %s", name)
		}
		if err != nil {
			return err
		}
		if b[0] == '+' {
			if _, err := readLine(r); err != nil {
				return err
			}
			break
		}
		line, err := readLine(r)
		if err != nil {
			return err
		}
		seq = filterLetters(seq, line)
	}

	quals := make([]byte, 0, len(seq))
	for len(quals) < len(seq) {
		line, err := readLine(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		quals = filterLetters(quals, line)
	}
	if len(quals) != len(seq) {
		return fmt.Errorf("fastq record %s: %d quality codes for %d letters",
			name, len(quals), len(seq))
	}
	min := minQualityCode(m.format)
	for _, q := range quals {
		if q < min || q > '~' {
			return fmt.Errorf("fastq record %s: bad quality code: %q", name, q)
		}
	}

	m.curName = name
	if int64(len(m.seq))+int64(len(seq)) > int64(maxLen) {
		m.parkedSeq = seq
		m.parkedQuals = quals
		m.parked = true
		m.inProgress = true
		return nil
	}
	m.commit(seq, quals)
	return nil
}

func (m *MultiSeq) commit(seq, quals []byte) {
	m.seq = append(m.seq, seq...)
	m.quals = append(m.quals, quals...)
	m.inProgress = true
	m.finish()
}

func (m *MultiSeq) commitParked() {
	seq, quals := m.parkedSeq, m.parkedQuals
	m.parkedSeq, m.parkedQuals, m.parked = nil, nil, false
	m.commit(seq, quals)
}
