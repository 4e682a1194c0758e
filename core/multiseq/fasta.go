// core/multiseq/fasta.go
package multiseq

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// AppendFasta reads (or resumes reading) one FASTA sequence, stopping
// early once the buffer reaches maxLen letters. It returns io.EOF when
// the input is exhausted. After a return with IsFinished() == false the
// same reader must be passed again to continue the sequence.
func (m *MultiSeq) AppendFasta(r *bufio.Reader, maxLen uint32) error {
	if !m.inProgress {
		name, err := readHeader(r, '>')
		if err != nil {
			return err
		}
		m.curName = name
		m.inProgress = true
	}

	for {
		// Admit carried-over letters first, up to the cap.
		if len(m.carry) > 0 {
			room := int(int64(maxLen) - int64(len(m.seq)))
			if room <= 0 {
				return nil // buffer full mid-sequence
			}
			n := len(m.carry)
			if n > room {
				n = room
			}
			m.seq = append(m.seq, m.carry[:n]...)
			m.carry = m.carry[n:]
			continue
		}

		b, err := r.Peek(1)
		if err == io.EOF || (err == nil && b[0] == '>') {
			m.finish()
			return nil
		}
		if err != nil {
			return err
		}
		line, err := readLine(r)
		if err != nil {
			return err
		}
		m.carry = filterLetters(m.carry[:0], line)
	}
}

// readHeader skips blank lines and reads one "<mark>name ..." header,
// returning the first token of the description.
func readHeader(r *bufio.Reader, mark byte) (string, error) {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return "", err // io.EOF: no more records
		}
		if b[0] == '\n' || b[0] == '\r' {
			if _, err := readLine(r); err != nil {
				return "", err
			}
			continue
		}
		if b[0] != mark {
			return "", fmt.Errorf("bad sequence data: expected %q header", mark)
		}
		line, err := readLine(r)
		if err != nil {
			return "", err
		}
		return headerToken(line[1:]), nil
	}
}

func headerToken(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if len(line) > 0 && err == io.EOF {
		err = nil
	}
	return line, err
}

// filterLetters appends the non-whitespace bytes of line to dst.
func filterLetters(dst, line []byte) []byte {
	for _, c := range line {
		if c > ' ' {
			dst = append(dst, c)
		}
	}
	return dst
}
