// Package routepath composes and validates the path segments used by route
// declarations.
//
// Composed paths are relative: they never start or end with a separator and
// never contain an empty piece. A single declared segment may itself span
// several pieces (":postId/edit"); Join treats it the same as two segments.
//
//	routepath.Join("api", "/users/", ":id") // "api/users/:id"
//	routepath.Canonicalize("api/users")    // "/api/users"
package routepath
