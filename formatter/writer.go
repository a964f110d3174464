package formatter

import (
	"errors"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// DefaultIndentUnit is written once per indentation level.
const DefaultIndentUnit = "    "

var (
	ErrInvalidIndentUnit = errors.New("indent unit must be non-empty and single-line")
	ErrInvalidIndent     = errors.New("indent level must not be negative")
)

// WriterOption configures an IndentedWriter at construction.
type WriterOption func(*IndentedWriter) error

// WithIndentUnit replaces the text written per indentation level.
func WithIndentUnit(unit string) WriterOption {
	return func(w *IndentedWriter) error {
		if unit == "" || strings.ContainsAny(unit, "\r\n") {
			return ErrInvalidIndentUnit
		}
		w.unit = unit
		return nil
	}
}

// WithInitialIndent starts the writer at the given indentation level.
func WithInitialIndent(level int) WriterOption {
	return func(w *IndentedWriter) error {
		if level < 0 {
			return ErrInvalidIndent
		}
		w.level = level
		return nil
	}
}

// IndentedWriter accumulates generated SQL text, prefixing every line with
// the current indentation. A writer belongs to a single generation call and
// must not be shared between goroutines.
type IndentedWriter struct {
	buf         *bytebufferpool.ByteBuffer
	unit        string
	level       int
	pendingTabs bool
}

// NewIndentedWriter returns an empty writer backed by a pooled buffer.
// The buffer goes back to the pool if an option fails.
func NewIndentedWriter(opts ...WriterOption) (*IndentedWriter, error) {
	w := &IndentedWriter{
		buf:         bytebufferpool.Get(),
		unit:        DefaultIndentUnit,
		pendingTabs: true,
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			w.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write implements io.Writer. Indentation is emitted before the first byte
// of every line.
func (w *IndentedWriter) Write(p []byte) (int, error) {
	return w.WriteString(string(p))
}

// WriteString appends s, indenting each line it starts.
func (w *IndentedWriter) WriteString(s string) (int, error) {
	n := len(s)
	for len(s) > 0 {
		if s[0] != '\n' {
			w.writePendingIndent()
		}
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			w.buf.WriteString(s)
			break
		}
		w.buf.WriteString(s[:i+1])
		w.pendingTabs = true
		s = s[i+1:]
	}
	return n, nil
}

// WriteLine appends s followed by a line break. An empty s produces a bare
// line break.
func (w *IndentedWriter) WriteLine(s string) {
	w.WriteString(s)
	w.buf.WriteByte('\n')
	w.pendingTabs = true
}

// WriteLineNoIndent appends s and a line break without any indentation.
func (w *IndentedWriter) WriteLineNoIndent(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
	w.pendingTabs = true
}

func (w *IndentedWriter) writePendingIndent() {
	if !w.pendingTabs {
		return
	}
	for i := 0; i < w.level; i++ {
		w.buf.WriteString(w.unit)
	}
	w.pendingTabs = false
}

// Indent increases the indentation level by one.
func (w *IndentedWriter) Indent() {
	w.level++
}

// Outdent decreases the indentation level by one, stopping at zero.
func (w *IndentedWriter) Outdent() {
	if w.level > 0 {
		w.level--
	}
}

// Level returns the current indentation level.
func (w *IndentedWriter) Level() int {
	return w.level
}

// Scope runs fn one level deeper and restores the previous level afterwards,
// also when fn fails or panics.
func (w *IndentedWriter) Scope(fn func() error) error {
	prev := w.level
	w.level++
	defer func() { w.level = prev }()
	return fn()
}

// String returns the accumulated text.
func (w *IndentedWriter) String() string {
	if w.buf == nil {
		return ""
	}
	return w.buf.String()
}

// Len returns the number of accumulated bytes.
func (w *IndentedWriter) Len() int {
	if w.buf == nil {
		return 0
	}
	return w.buf.Len()
}

// Close releases the buffer to the pool. The writer must not be written to
// afterwards; calling Close twice is harmless.
func (w *IndentedWriter) Close() {
	if w.buf == nil {
		return
	}
	bytebufferpool.Put(w.buf)
	w.buf = nil
}
