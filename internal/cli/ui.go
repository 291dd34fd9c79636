package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorBright = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)
	// StyleValue renders values the user asked for.
	StyleValue = lipgloss.NewStyle().Foreground(colorBright)
	// StyleWarning renders warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)

	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel   = lipgloss.NewStyle().Foreground(colorMuted).Width(8)
)

// printer writes styled status lines for humans. Logs go to stderr through
// the logger; results the user asked for go through a printer on stdout.
type printer struct{ w io.Writer }

func (p printer) line(icon, msg string) {
	fmt.Fprintln(p.w, icon+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.line(styleOK.Render("✓"), fmt.Sprintf(format, args...))
}

func (p printer) warn(format string, args ...any) {
	p.line(StyleWarning.Render("!"), StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleMuted.Render("›"), fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints "→ path" for a written output.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func (p printer) field(key, value string) {
	fmt.Fprintln(p.w, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// stats prints the summary under a composed grid, e.g.
// "1200×740 · 6 cells · 2 rows · fresh".
func (p printer) stats(width, height, cells, rows int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d×%d", width, height)),
		StyleDim.Render(plural(cells, "cell")),
		StyleDim.Render(plural(rows, "row")),
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleMuted.Render("fresh"))
	}
	fmt.Fprintln(p.w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
