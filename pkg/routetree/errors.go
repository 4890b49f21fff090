package routetree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig matches every error produced by this package via errors.Is.
var ErrConfig = errors.New("route config error")

// ErrorCode categorizes configuration errors.
type ErrorCode string

const (
	// CodeInvalidSegment indicates a segment that cannot be composed.
	// Example: Route("../admin", ...)
	CodeInvalidSegment ErrorCode = "INVALID_SEGMENT"

	// CodeMissingFile indicates a rendering node without a component reference.
	CodeMissingFile ErrorCode = "MISSING_FILE"

	// CodeIndexPath indicates an index route declared with its own segment.
	CodeIndexPath ErrorCode = "INDEX_PATH"

	// CodeIndexChildren indicates Children called on an index route.
	CodeIndexChildren ErrorCode = "INDEX_CHILDREN"

	// CodeChildrenAlreadySet indicates a second Children call on the same node.
	CodeChildrenAlreadySet ErrorCode = "CHILDREN_ALREADY_SET"

	// CodeInvalidOption indicates an option that does not apply to the node kind.
	CodeInvalidOption ErrorCode = "INVALID_OPTION"

	// CodeInvalidNode indicates a zero Node value in the forest.
	CodeInvalidNode ErrorCode = "INVALID_NODE"

	// CodeEmptyPath indicates a route whose composed path is empty while it is
	// not the sole top-level node.
	CodeEmptyPath ErrorCode = "EMPTY_PATH"

	// CodeDuplicateID indicates an explicit id used by more than one node.
	CodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// CodeDuplicatePath indicates two non-index routes with the same composed
	// path. Only reported in PathConflictStrict mode.
	CodeDuplicatePath ErrorCode = "DUPLICATE_PATH"
)

// ConfigError describes a single malformed declaration or conflict.
type ConfigError struct {
	// Code is the error category.
	Code ErrorCode

	// Message is the human-readable error message.
	Message string

	// Path is the composed path involved, when known.
	Path string

	// ID is the route id involved, when known.
	ID string

	// Sources are the declaration locations involved, in traversal order.
	// Empty unless declarations carry WithSource.
	Sources []string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Sources) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(e.Sources, ", "))
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// Source returns the first declaration location, or "".
func (e *ConfigError) Source() string {
	if len(e.Sources) == 0 {
		return ""
	}
	return e.Sources[0]
}

// MultiConfigError aggregates every error found in one build.
type MultiConfigError struct {
	Errors []*ConfigError
}

func (e *MultiConfigError) Error() string {
	if len(e.Errors) == 0 {
		return "no route config errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route config errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Unwrap returns the individual errors.
func (e *MultiConfigError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Is reports whether target is ErrConfig.
func (e *MultiConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ConfigErrors returns the individual errors carried by err, or nil when err
// was not produced by this package.
func ConfigErrors(err error) []*ConfigError {
	var multi *MultiConfigError
	if errors.As(err, &multi) {
		return multi.Errors
	}
	var single *ConfigError
	if errors.As(err, &single) {
		return []*ConfigError{single}
	}
	return nil
}

func sourceList(source string) []string {
	if source == "" {
		return nil
	}
	return []string{source}
}
