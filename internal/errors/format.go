package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
	ansiWhite = "\033[37m"
	ansiGray  = "\033[90m"
)

// colorEnabled is off when NO_COLOR is set.
var colorEnabled = os.Getenv("NO_COLOR") == ""

// DisableColors disables ANSI color output.
func DisableColors() { colorEnabled = false }

// EnableColors enables ANSI color output.
func EnableColors() { colorEnabled = true }

func paint(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + ansiReset
}

func red(text string) string   { return paint(ansiRed, text) }
func blue(text string) string  { return paint(ansiBlue, text) }
func cyan(text string) string  { return paint(ansiCyan, text) }
func white(text string) string { return paint(ansiWhite, text) }
func gray(text string) string  { return paint(ansiGray, text) }
func bold(text string) string  { return paint(ansiBold, text) }

// Format renders the error as a multi-line block for the terminal: header,
// location with surrounding manifest lines, detail, hint, example and docs
// link.
func (e *Error) Format() string {
	var b strings.Builder
	e.writeHeader(&b)
	e.writeLocation(&b)

	for _, line := range wrapText(e.Detail, 70) {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if e.Detail != "" {
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", cyan("Hint: "), e.Suggestion)
	}
	if e.Example != "" {
		fmt.Fprintf(&b, "  %s\n", cyan("Example:"))
		for _, line := range strings.Split(e.Example, "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
		b.WriteString("\n")
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s%s\n", gray("Learn more: "), blue(e.DocURL))
	}
	return b.String()
}

func (e *Error) writeHeader(b *strings.Builder) {
	if e.Code == "" {
		fmt.Fprintf(b, "\n%s%s\n\n", red(bold("ERROR: ")), white(e.Message))
		return
	}
	fmt.Fprintf(b, "\n%s%s%s\n\n", red(bold("ERROR ")), white(bold(e.Code+": ")), white(e.Message))
}

// writeLocation prints the location and its context lines, marking the
// error line with an arrow and the column with a caret.
func (e *Error) writeLocation(b *strings.Builder) {
	if e.Location == nil {
		return
	}
	fmt.Fprintf(b, "  %s\n\n", cyan(e.Location.String()))
	if len(e.Context) == 0 {
		return
	}

	first := e.Location.Line - len(e.Context)/2
	for i, text := range e.Context {
		n := first + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, gray(" │ "), text)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", red("→ "), n, gray(" │ "), text)
		if col := e.Location.Column; col > 0 {
			fmt.Fprintf(b, "       %s%s%s\n", gray("│ "), strings.Repeat(" ", col-1), red("^"))
		}
	}
	b.WriteString("\n")
}

// FormatCompact returns "file:line:col: CODE: message", omitting the parts
// that are not set.
func (e *Error) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

// wrapText breaks text into lines of at most width bytes at word
// boundaries. Words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(w) > width {
			lines = append(lines, w)
			continue
		}
		*last += " " + w
	}
	return lines
}

// Fprint writes err to w in the terminal format. Route builder errors and
// joined *Error values print one block each followed by a count.
func Fprint(w io.Writer, err error) {
	if list := FromConfigErrors(err); len(list) > 0 {
		fprintAll(w, list, "route error(s)")
		return
	}
	if list := flatten(err); len(list) > 1 {
		fprintAll(w, list, "error(s)")
		return
	}

	var e *Error
	if stderrors.As(err, &e) {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red(bold("ERROR:")), err.Error())
}

func fprintAll(w io.Writer, list []*Error, label string) {
	for _, e := range list {
		fmt.Fprint(w, e.Format())
	}
	fmt.Fprintf(w, "\n%s\n", red(bold(fmt.Sprintf("%d %s", len(list), label))))
}

// flatten returns the *Error values joined in err, or nil unless every
// joined error is an *Error.
func flatten(err error) []*Error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var out []*Error
	for _, inner := range joined.Unwrap() {
		e, ok := inner.(*Error)
		if !ok {
			return nil
		}
		out = append(out, e)
	}
	return out
}
