// internal/runutil/runutil.go
package runutil

import (
	"fmt"
	"io"
	"runtime"
	"sync"
)

// Threads resolves a --threads value: 0 means all CPUs.
func Threads(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Logger writes program-name-prefixed lines to stderr. Progress lines
// are gated on verbosity; warnings always print.
type Logger struct {
	Name string
	V    int
	W    io.Writer

	mu sync.Mutex
}

func NewLogger(name string, verbosity int, w io.Writer) *Logger {
	return &Logger{Name: name, V: verbosity, W: w}
}

// Logf prints a progress line when verbosity > 0.
func (l *Logger) Logf(format string, args ...interface{}) {
	if l.V < 1 {
		return
	}
	l.line(format, args...)
}

// Warnf prints unconditionally.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.line(format, args...)
}

func (l *Logger) line(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.W, "%s: %s\n", l.Name, fmt.Sprintf(format, args...))
}
