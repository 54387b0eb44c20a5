// Package output provides consistent CLI output formatting for checkenv.
//
// Report lines are written verbatim. Color is opt-in and only applied when
// the destination is a terminal and NO_COLOR is unset, so piped output and
// tests always see the plain text.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

// Color palette.
const (
	ColorGreen = "154"
	ColorGray  = "245"
	ColorRed   = "196"
)

// Styles holds the styles applied to each kind of line.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Summary lipgloss.Style
	Header  lipgloss.Style
	Dim     lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Summary: lipgloss.NewStyle().Bold(true),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorGreen)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Success: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Summary: lipgloss.NewStyle(),
		Header:  lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	color  bool
	styles Styles
}

// Option configures a Writer.
type Option func(*Writer)

// WithColor requests colored output. It only takes effect when the
// destination is a terminal and NO_COLOR is unset.
func WithColor(requested bool) Option {
	return func(w *Writer) {
		w.color = ColorEnabled(w.out, requested)
	}
}

// New creates a new output Writer. A nil destination discards output.
func New(out io.Writer, opts ...Option) *Writer {
	if out == nil {
		out = io.Discard
	}
	w := &Writer{out: out}
	for _, opt := range opts {
		opt(w)
	}
	if w.color {
		w.styles = DefaultStyles()
	} else {
		w.styles = NoColorStyles()
	}
	return w
}

// Colored reports whether the writer applies color.
func (w *Writer) Colored() bool {
	return w.color
}

// Line prints a plain line.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Line(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Success prints a line describing a passing check.
func (w *Writer) Success(msg string) {
	w.Line(w.render(w.styles.Success, msg))
}

// Error prints a line describing a failing check.
func (w *Writer) Error(msg string) {
	w.Line(w.render(w.styles.Error, msg))
}

// Summary prints the final summary line.
func (w *Writer) Summary(msg string) {
	w.Line(w.render(w.styles.Summary, msg))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Table prints rows under headers.
func (w *Writer) Table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return w.styles.Header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	w.Line(t.String())
}

func (w *Writer) render(style lipgloss.Style, msg string) string {
	if !w.color {
		return msg
	}
	return style.Render(msg)
}

// ColorEnabled decides whether output to w should be colored.
func ColorEnabled(w io.Writer, requested bool) bool {
	return requested && IsTTY(w) && !DetectNoColor()
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
