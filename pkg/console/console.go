// Package console prints the messages meant for the operator of the
// debugged process, as opposed to the debug logs of pkg/logflags.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Style is the color used for a message.
type Style int

const (
	Normal Style = iota
	// Attention marks instructions the operator must follow.
	Attention
	// Warning marks failures.
	Warning
	// Success marks a completed step.
	Success
)

const resetEscape = "\x1b[0m"

var styleEscapes = map[Style]string{
	Attention: "\x1b[33;1m",
	Warning:   "\x1b[31;1m",
	Success:   "\x1b[32;1m",
}

// Console writes styled messages. The zero value is not usable, use New
// or NewWriter.
type Console struct {
	out   io.Writer
	color bool
}

// New returns a Console writing to f. Colors are enabled only when f is a
// terminal and NO_COLOR is unset.
func New(f *os.File) *Console {
	color := isatty.IsTerminal(f.Fd()) && os.Getenv("NO_COLOR") == ""
	if color {
		return &Console{out: colorable.NewColorable(f), color: true}
	}
	return &Console{out: f}
}

// Stdout returns a Console writing to standard output.
func Stdout() *Console {
	return New(os.Stdout)
}

// NewWriter returns a Console writing to w.
func NewWriter(w io.Writer, color bool) *Console {
	return &Console{out: w, color: color}
}

// Span is a piece of a line printed with one style.
type Span struct {
	Style Style
	Text  string
}

// S is a shorthand for building a Span.
func S(style Style, format string, args ...interface{}) Span {
	return Span{Style: style, Text: fmt.Sprintf(format, args...)}
}

// Println prints spans one after the other followed by a newline. The
// style is reset after every span.
func (c *Console) Println(spans ...Span) {
	for _, s := range spans {
		esc := styleEscapes[s.Style]
		if !c.color || esc == "" {
			io.WriteString(c.out, s.Text)
			continue
		}
		io.WriteString(c.out, esc+s.Text+resetEscape)
	}
	io.WriteString(c.out, "\n")
}

// Printf prints a single unstyled line.
func (c *Console) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}
