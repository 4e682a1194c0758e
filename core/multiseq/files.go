// core/multiseq/files.go
package multiseq

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// ToFiles writes the finished sequences under the base name:
//
//	base.tis  encoded text (delimiters included)
//	base.des  sequence names, newline terminated
//	base.sds  uint32 name end offsets into .des (count+1 entries)
//	base.ssp  uint32 sequence start positions (count+1 entries)
//	base.qua  quality bytes parallel to .tis (FASTQ only)
//
// All integers are little-endian.
func (m *MultiSeq) ToFiles(base string) error {
	if err := writeFile(base+".tis", func(w *bufio.Writer) error {
		_, err := w.Write(m.Text())
		return err
	}); err != nil {
		return err
	}

	if err := writeFile(base+".des", func(w *bufio.Writer) error {
		for _, name := range m.names {
			if _, err := w.WriteString(name); err != nil {
				return err
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := writeFile(base+".sds", func(w *bufio.Writer) error {
		off := uint32(0)
		if err := binary.Write(w, binary.LittleEndian, off); err != nil {
			return err
		}
		for _, name := range m.names {
			off += uint32(len(name)) + 1
			if err := binary.Write(w, binary.LittleEndian, off); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := writeFile(base+".ssp", func(w *bufio.Writer) error {
		return binary.Write(w, binary.LittleEndian, m.ends)
	}); err != nil {
		return err
	}

	if IsFastq(m.format) {
		if err := writeFile(base+".qua", func(w *bufio.Writer) error {
			_, err := w.Write(m.Quals())
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and runs emit over a buffered writer.
func writeFile(path string, emit func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't write file: %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := emit(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("can't write file: %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("can't write file: %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("can't write file: %s: %w", path, err)
	}
	return nil
}
