package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

// Category represents the type of error.
type Category string

const (
	CategoryRoute    Category = "route"
	CategoryManifest Category = "manifest"
	CategorySource   Category = "source"
	CategoryConfig   Category = "config"
	CategoryOutput   Category = "output"
	CategoryCLI      Category = "cli"
)

// Location represents a source code location.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ParseLocation parses "file:line" or "file:line:column".
func ParseLocation(s string) (*Location, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return nil, false
	}
	// Windows drive letters and column suffixes: try line:col first.
	if len(parts) >= 3 {
		line, errL := strconv.Atoi(parts[len(parts)-2])
		col, errC := strconv.Atoi(parts[len(parts)-1])
		if errL == nil && errC == nil && line > 0 {
			return &Location{File: strings.Join(parts[:len(parts)-2], ":"), Line: line, Column: col}, true
		}
	}
	line, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || line <= 0 {
		return nil, false
	}
	return &Location{File: strings.Join(parts[:len(parts)-1], ":"), Line: line}, true
}

// Error is a structured error with source location, suggestions, and
// documentation.
type Error struct {
	// Code is a unique error identifier (e.g., "R011").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source location where the error occurred.
	Location *Location

	// Context contains surrounding source lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds source location to the error.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSource resolves a "file:line" declaration source into a location.
// Sources that do not parse are kept in Detail.
func (e *Error) WithSource(source string) *Error {
	if source == "" {
		return e
	}
	if loc, ok := ParseLocation(source); ok {
		return e.WithLocation(loc.File, loc.Line, loc.Column)
	}
	return e.WithDetail(e.Detail + " (declared at " + source + ")")
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *Error) WithExample(ex string) *Error {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = strings.TrimSpace(d)
	return e
}

// WithContext adds custom context lines to the error.
func (e *Error) WithContext(lines []string) *Error {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error. Errors that already are
// *Error are returned unchanged.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, is an *Error with
// the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Code == code
}

// routeCodes maps builder error codes to registry codes.
var routeCodes = map[routetree.ErrorCode]string{
	routetree.CodeInvalidSegment:     "R001",
	routetree.CodeMissingFile:        "R002",
	routetree.CodeIndexPath:          "R003",
	routetree.CodeIndexChildren:      "R004",
	routetree.CodeChildrenAlreadySet: "R005",
	routetree.CodeInvalidOption:      "R006",
	routetree.CodeInvalidNode:        "R007",
	routetree.CodeEmptyPath:          "R010",
	routetree.CodeDuplicateID:        "R011",
	routetree.CodeDuplicatePath:      "R012",
}

// FromConfigError converts a single builder error. The first declaration
// source becomes the location; further sources are listed in Detail.
func FromConfigError(ce *routetree.ConfigError) *Error {
	code, ok := routeCodes[ce.Code]
	if !ok {
		code = "R099"
	}
	e := New(code).Wrap(ce)
	detail := ce.Message
	if ce.Err != nil {
		detail += ": " + ce.Err.Error()
	}
	if len(ce.Sources) > 1 {
		detail += ". Declared at " + strings.Join(ce.Sources, ", ")
	}
	e.WithDetail(detail)
	return e.WithSource(ce.Source())
}

// FromConfigErrors converts every builder error carried by err. It returns
// nil when err did not come from the route builder.
func FromConfigErrors(err error) []*Error {
	ces := routetree.ConfigErrors(err)
	if len(ces) == 0 {
		return nil
	}
	out := make([]*Error, len(ces))
	for i, ce := range ces {
		out[i] = FromConfigError(ce)
	}
	return out
}
