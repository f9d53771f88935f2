package errlog

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"
)

// Renderer formats issues for --developer-mode terminal output with
// Rust-like caret framing, mined from internal/errors/reporter.go's
// ErrorReporter.FormatError, generalized
// from one CompilerError to one analyzer Issue and reading source lines
// from a caller-supplied map instead of a single reporter-owned file.
type Renderer struct {
	// Source maps a file path to its line-split content, used to print
	// the offending line and its neighbors.
	Source map[string][]string
}

// NewRenderer returns a Renderer over the given file -> lines map.
func NewRenderer(source map[string][]string) *Renderer {
	return &Renderer{Source: source}
}

// Format renders one issue as a colorized, multi-line terminal block.
func (r *Renderer) Format(i Issue) string {
	var out strings.Builder

	levelColor := severityColor(i.Severity)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(i.Severity.String()), i.BugType, i.Qualifier))

	width := lineNumberWidth(i.Line)
	indent := strings.Repeat(" ", width)
	out.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), i.File, i.Line, i.Column))
	out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("|")))

	lines := r.Source[i.File]
	if i.Line > 0 && i.Line <= len(lines) {
		content := lines[i.Line-1]
		out.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%*d", width, i.Line)), dim("|"), content))
		out.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("|"), marker(content, i.Column, levelColor)))
	}

	for _, step := range i.BugTrace {
		out.WriteString(fmt.Sprintf("%s %s note: %s:%d: %s\n", indent, dim("|"), step.File, step.Line, step.Description))
	}
	if i.CensoredReason != "" {
		out.WriteString(fmt.Sprintf("%s %s censored: %s\n", indent, dim("|"), i.CensoredReason))
	}
	out.WriteString("\n")
	return out.String()
}

func severityColor(s Severity) func(...any) string {
	switch s {
	case SeverityError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case SeverityWarning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case SeverityAdvice:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	default:
		return color.New(color.FgCyan).SprintFunc()
	}
}

// marker draws the single-caret underline at column, counting display
// width in grapheme clusters (via uniseg) rather than bytes so the caret
// lands correctly under multi-byte source (e.g. Objective-C source
// carrying literal unicode identifiers). column is a 1-based byte column
// into content; past the end of content each extra column is one space.
func marker(content string, column int, colorFn func(...any) string) string {
	if column < 1 {
		column = 1
	}
	width := column - 1
	if width <= len(content) {
		width = graphemeCount(content[:width])
	}
	pad := strings.Repeat(" ", width)
	return pad + colorFn("^")
}

func graphemeCount(s string) int {
	n := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		n++
	}
	return n
}

func lineNumberWidth(line int) int {
	w := len(fmt.Sprintf("%d", line))
	if w < 3 {
		w = 3
	}
	return w
}
