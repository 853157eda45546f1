package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console prints friendly progress lines for CLI users. Color is only used
// when the destination is a terminal.
type Console struct {
	Out io.Writer

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	c := &Console{
		Out:  out,
		ok:   color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, col := range []*color.Color{c.ok, c.warn, c.bad, c.dim} {
		if colored {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// Println prints a plain line.
func (c *Console) Println(format string, args ...any) {
	_, _ = fmt.Fprintf(c.Out, format+"\n", args...)
}

// Success prints a line prefixed with a green check.
func (c *Console) Success(format string, args ...any) {
	_, _ = fmt.Fprintf(c.Out, "%s %s\n", c.ok.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a yellow line.
func (c *Console) Warn(format string, args ...any) {
	_, _ = fmt.Fprintln(c.Out, c.warn.Sprintf("! "+format, args...))
}

// Fail prints a line prefixed with a red cross.
func (c *Console) Fail(format string, args ...any) {
	_, _ = fmt.Fprintf(c.Out, "%s %s\n", c.bad.Sprint("✗"), fmt.Sprintf(format, args...))
}

// Detail prints a faint indented line.
func (c *Console) Detail(format string, args ...any) {
	_, _ = fmt.Fprintln(c.Out, c.dim.Sprintf("  "+format, args...))
}
