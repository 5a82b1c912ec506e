// Package ui renders run progress and summaries on the terminal.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Logo is printed at the start of a run
const Logo = `
   ▄▀█ █ █ █▀▄ █ █▀█ █▀▀ █▀▀ ▀█▀ █▀▀ █ █
   █▀█ █▄█ █▄▀ █ █▄█ █▀  ██▄  █  █▄▄ █▀█
`

// Printer writes styled lines. Colour is used only on terminals.
type Printer struct {
	out   io.Writer
	color bool
	quiet bool
}

// NewPrinter creates a Printer. Quiet printers only emit errors and the
// final summary.
func NewPrinter(out io.Writer, noColor, quiet bool) *Printer {
	return &Printer{
		out:   out,
		color: !noColor && IsTerminal(out),
		quiet: quiet,
	}
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *Printer) paint(style lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return style.Render(text)
}

// Logo prints the banner
func (p *Printer) Logo() {
	if p.quiet {
		return
	}
	fmt.Fprint(p.out, p.paint(logoStyle, Logo))
}

// Info prints a label and value pair
func (p *Printer) Info(label, value string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s: %s\n", p.paint(labelStyle, label), p.paint(valueStyle, value))
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.paint(successStyle, fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.paint(warningStyle, fmt.Sprintf(format, args...)))
}

// Error prints an error message, even when quiet
func (p *Printer) Error(format string, args ...interface{}) {
	fmt.Fprintln(p.out, p.paint(errorStyle, fmt.Sprintf(format, args...)))
}

// Highlight prints an emphasized message
func (p *Printer) Highlight(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.paint(highlightStyle, fmt.Sprintf(format, args...)))
}

// Dim prints a de-emphasized message
func (p *Printer) Dim(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.paint(dimStyle, fmt.Sprintf(format, args...)))
}
