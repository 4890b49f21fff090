package routepath

import (
	"errors"
	"strings"
)

// Segment validation errors.
var (
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrDotSegment           = errors.New("path contains '.' or '..' piece")
	ErrMisplacedCatchAll    = errors.New("catch-all piece must be last")
)

// ValidateSegment checks a declared segment before it is composed.
//
// The following inputs are rejected:
//   - backslash (\)
//   - NUL byte, literal or encoded as %00
//   - invalid percent-escapes (%GG, %2)
//   - "." and ".." pieces
//   - a catch-all piece ("*") followed by further pieces
//
// The empty segment is valid.
func ValidateSegment(segment string) error {
	if strings.Contains(segment, "\\") {
		return ErrBackslashInPath
	}
	if strings.Contains(segment, "\x00") || strings.Contains(strings.ToUpper(segment), "%00") {
		return ErrNullByteInPath
	}
	if err := validatePercentEscapes(segment); err != nil {
		return err
	}

	pieces := Split(segment)
	for i, p := range pieces {
		if p == "." || p == ".." {
			return ErrDotSegment
		}
		if IsCatchAll(p) && i != len(pieces)-1 {
			return ErrMisplacedCatchAll
		}
	}
	return nil
}

const hexDigits = "0123456789abcdefABCDEF"

// validatePercentEscapes requires every '%' to start a %XX escape.
func validatePercentEscapes(segment string) error {
	for rest := segment; ; {
		i := strings.IndexByte(rest, '%')
		if i < 0 {
			return nil
		}
		if len(rest) < i+3 ||
			strings.IndexByte(hexDigits, rest[i+1]) < 0 ||
			strings.IndexByte(hexDigits, rest[i+2]) < 0 {
			return ErrInvalidPercentEscape
		}
		rest = rest[i+3:]
	}
}
