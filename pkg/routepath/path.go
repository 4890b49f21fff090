package routepath

import "strings"

// Separator is the path separator used in composed paths.
const Separator = "/"

// Join composes path parts into a single relative path.
//
// Every part is split on the separator, empty pieces are dropped and the
// remaining pieces are joined with a single separator:
//   - Join("posts", ":postId") → "posts/:postId"
//   - Join("/api/", "", "users/") → "api/users"
//   - Join("", "") → ""
func Join(parts ...string) string {
	var pieces []string
	for _, part := range parts {
		pieces = append(pieces, Split(part)...)
	}
	return strings.Join(pieces, Separator)
}

// Split splits a path into its non-empty pieces.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	raw := strings.Split(path, Separator)
	pieces := raw[:0]
	for _, p := range raw {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	if len(pieces) == 0 {
		return nil
	}
	return pieces
}

// Canonicalize returns the absolute URL form of a composed path.
// The empty path is the root "/".
func Canonicalize(path string) string {
	return Separator + Join(path)
}

// IsParam reports whether a piece is a dynamic parameter (":id").
func IsParam(piece string) bool {
	return len(piece) > 1 && piece[0] == ':'
}

// IsCatchAll reports whether a piece is a splat ("*" or "*slug").
func IsCatchAll(piece string) bool {
	return strings.HasPrefix(piece, "*")
}

// Params returns the dynamic pieces of a path in order: parameter names
// without the leading ':' (an optional marker '?' is kept), and catch-all
// pieces as written.
func Params(path string) []string {
	var out []string
	for _, p := range Split(path) {
		switch {
		case IsParam(p):
			out = append(out, p[1:])
		case IsCatchAll(p):
			out = append(out, p)
		}
	}
	return out
}
