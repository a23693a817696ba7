package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes status lines, styled only in interactive mode.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter creates a Printer. Pass IsInteractive(w) for styled.
func NewPrinter(w io.Writer, styled bool) *Printer {
	return &Printer{w: w, styled: styled}
}

// Styled reports whether output is styled.
func (p *Printer) Styled() bool {
	return p.styled
}

func (p *Printer) Title(format string, args ...interface{}) {
	p.line(TitleStyle, "", format, args...)
}

func (p *Printer) Success(format string, args ...interface{}) {
	p.line(SuccessStyle, SymbolCheck, format, args...)
}

func (p *Printer) Failure(format string, args ...interface{}) {
	p.line(ErrorStyle, SymbolCross, format, args...)
}

func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(WarningStyle, SymbolArrowRight, format, args...)
}

func (p *Printer) line(style lipgloss.Style, symbol, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if p.styled {
		if symbol != "" {
			msg = symbol + " " + msg
		}
		msg = style.Render(msg)
	}
	fmt.Fprintln(p.w, msg)
}
