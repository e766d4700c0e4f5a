package repl

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type color string

const (
	red     color = "\x1b[31m"
	yellow  color = "\x1b[33m"
	blue    color = "\x1b[34m"
	magenta color = "\x1b[35m"
	reset   color = "\x1b[0m"
)

// printer writes plain text with an optionally colored middle part.
type printer struct {
	w       io.Writer
	colored bool
}

// newConsolePrinter colors the output only when f is a terminal.
// On Windows the escape sequences are translated by go-colorable.
func newConsolePrinter(f *os.File, noColor bool) *printer {
	fd := f.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	return &printer{
		w:       colorable.NewColorable(f),
		colored: tty && !noColor,
	}
}

func (p *printer) print(s string) {
	_, _ = io.WriteString(p.w, s)
}

func (p *printer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) paint(c color, s string) {
	if !p.colored {
		p.print(s)
		return
	}
	p.print(string(c) + s + string(reset))
}

// middle writes beginning, middle painted in c, then ending.
func (p *printer) middle(beginning, middle string, c color, ending string) {
	p.print(beginning)
	p.paint(c, middle)
	p.print(ending)
}

func (p *printer) middleLine(beginning, middle string, c color, ending string) {
	p.middle(beginning, middle, c, ending+"\n")
}

// errorPrefix starts every error report with an empty line and a red "Error".
func (p *printer) errorPrefix() {
	p.middle("\n", "Error", red, ": ")
}
