// core/ssa/files.go
package ssa

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// ChildKind selects the child table width.
type ChildKind int

const (
	ChildNone ChildKind = iota
	ChildByte
	ChildShort
	ChildFull
)

var childKindNames = map[string]ChildKind{
	"none":  ChildNone,
	"byte":  ChildByte,
	"short": ChildShort,
	"full":  ChildFull,
}

// ParseChildKind resolves a --child-table value.
func ParseChildKind(s string) (ChildKind, error) {
	k, ok := childKindNames[s]
	if !ok {
		return 0, fmt.Errorf("bad child table kind: %q", s)
	}
	return k, nil
}

// ToFiles writes the index under the base name:
//
//	base.suf  uint32 text length, uint32 count, sorted positions
//	base.bck  uint32 bucket depth, uint32 table length, bucket table
//	base.chi  uint32 kind, uint32 count, child entries (only if requested)
//
// All integers are little-endian.
func (a *Array) ToFiles(base string, textLen uint32) error {
	if err := writeFile(base+".suf", func(w *bufio.Writer) error {
		if err := binary.Write(w, binary.LittleEndian, [2]uint32{textLen, uint32(len(a.positions))}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, a.positions)
	}); err != nil {
		return err
	}

	if err := writeFile(base+".bck", func(w *bufio.Writer) error {
		if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(a.bucketDepth), uint32(len(a.buckets))}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, a.buckets)
	}); err != nil {
		return err
	}

	if a.childKind == ChildNone {
		return nil
	}
	return writeFile(base+".chi", func(w *bufio.Writer) error {
		if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(a.childKind), uint32(len(a.positions))}); err != nil {
			return err
		}
		switch a.childKind {
		case ChildFull:
			return binary.Write(w, binary.LittleEndian, a.childFull)
		case ChildShort:
			return binary.Write(w, binary.LittleEndian, a.childShort)
		default:
			return binary.Write(w, binary.LittleEndian, a.childByte)
		}
	})
}

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
