// Package style provides the CLI's colorized-when-a-terminal output,
// used by the log and fsck subcommands (k writes plain DOT text). Grounded on the teacher's
// go.mod, which pins mattn/go-isatty (terminal detection), mgutz/ansi
// (color codes) and mattn/go-colorable (a Windows-safe ANSI writer)
// together for exactly this purpose.
package style

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

// Writer wraps an io.Writer, applying ANSI color only when the
// underlying file descriptor is a terminal.
type Writer struct {
	w      io.Writer
	colors bool
}

// NewStdout returns a Writer over a Windows-safe stdout, colorized only
// when stdout is attached to a terminal.
func NewStdout() *Writer {
	return &Writer{
		w:      colorable.NewColorableStdout(),
		colors: isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// Plain returns a Writer that never colorizes, for use against a
// non-stdout destination (tests, files).
func Plain(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write implements io.Writer.
func (s *Writer) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Color wraps s if colors are enabled; otherwise it returns s
// unchanged.
func (w *Writer) Color(s, style string) string {
	if !w.colors {
		return s
	}
	return ansi.Color(s, style)
}

// OID renders an ObjectID string in the color commit ids use.
func (w *Writer) OID(s string) string {
	return w.Color(s, "yellow+b")
}

// RefName renders a ref name in the color `log` uses for branch and
// tag labels.
func (w *Writer) RefName(s string) string {
	return w.Color(s, "cyan+b")
}

// Problem renders an fsck problem line.
func (w *Writer) Problem(s string) string {
	return w.Color(s, "red+b")
}

// OK renders an fsck clean-summary line.
func (w *Writer) OK(s string) string {
	return w.Color(s, "green+b")
}
