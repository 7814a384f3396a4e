// Package status prints tagged, colored status lines for terminal output.
//
//	[PURR] ok      (green)
//	[RAWR] warn    (yellow)
//	[HISS] fail    (red)
//	[MEOW] notice  (cyan)
package status

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Kind selects the tag, color and icon of a status line.
type Kind int

const (
	KindOK Kind = iota
	KindWarn
	KindFail
	KindNotice
)

// Style selects how much of the line is colored.
type Style int

const (
	// StyleTag colors only the tag.
	StyleTag Style = iota + 1
	// StyleLine colors the whole line.
	StyleLine
)

const (
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
	ansiReset  = "\033[0m"
)

type kindFormat struct {
	tag   string
	color string
	icon  string
}

var formats = map[Kind]kindFormat{
	KindOK:     {tag: "[PURR]", color: ansiGreen, icon: "☑ "},
	KindWarn:   {tag: "[RAWR]", color: ansiYellow, icon: "⚠ "},
	KindFail:   {tag: "[HISS]", color: ansiRed, icon: "☒ "},
	KindNotice: {tag: "[MEOW]", color: ansiCyan, icon: "😺 "},
}

// Printer writes status lines to Out.
type Printer struct {
	Out   io.Writer
	Color bool
	Icons bool
	Style Style
}

// NewPrinter returns a printer for out. Color is enabled only when out is a
// terminal and noColor is false.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	return &Printer{
		Out:   out,
		Color: !noColor && isTerminal(out),
		Icons: true,
		Style: StyleTag,
	}
}

// WithStyle returns a copy of p that renders lines in style.
func (p *Printer) WithStyle(style Style) *Printer {
	c := *p
	c.Style = style
	return &c
}

// Print writes msg as a single status line.
func (p *Printer) Print(kind Kind, msg string) {
	fmt.Fprintln(p.Out, p.Format(kind, msg))
}

// Printf formats and writes a status line.
func (p *Printer) Printf(kind Kind, format string, args ...any) {
	p.Print(kind, fmt.Sprintf(format, args...))
}

// Format renders a status line without writing it.
func (p *Printer) Format(kind Kind, msg string) string {
	f, ok := formats[kind]
	if !ok {
		f = formats[KindNotice]
	}
	label := f.tag
	if p.Icons {
		label = f.icon + label
	}
	if !p.Color {
		return label + " " + msg
	}
	if p.Style == StyleLine {
		return f.color + ansiBold + label + " " + msg + ansiReset
	}
	return f.color + ansiBold + label + ansiReset + " " + msg
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
