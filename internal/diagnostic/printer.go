package diagnostic

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// Printer writes diagnostics to an output stream.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer for w. Colors are enabled only when w is a
// terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: wantColor(w)}
}

func wantColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// Print writes every diagnostic in d, errors first.
func (p *Printer) Print(d *Diagnostics) {
	for _, diag := range d.All() {
		p.PrintOne(diag)
	}
}

// PrintOne writes a single diagnostic line.
func (p *Printer) PrintOne(d Diagnostic) {
	label := d.Severity.String()
	if p.color {
		label = severityColor(d.Severity).Sprint(label)
	}

	_, _ = fmt.Fprintf(p.w, "%s: %s\n", label, d.String())
}

func severityColor(s DiagnosticSeverity) color.Color {
	switch s {
	case DiagnosticError:
		return color.Red
	case DiagnosticWarning:
		return color.Yellow
	default:
		return color.Cyan
	}
}
