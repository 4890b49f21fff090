// Package routetree declares nested route trees and compiles them into the
// flat descriptor list consumed by a router configuration loader.
//
// Declarations are immutable values built bottom-up:
//
//	routes := []routetree.Node{
//	    routetree.Layout("routes/root.tsx", routetree.WithID("root")).Children(
//	        routetree.Index("routes/home.tsx"),
//	        routetree.Route("posts", "routes/posts.tsx", routetree.WithID("posts-wrapper")).Children(
//	            routetree.Index("routes/posts/index.tsx", routetree.WithID("posts-index")),
//	            routetree.Route(":postId", "routes/posts/detail.tsx", routetree.WithID("posts-detail")),
//	        ),
//	    ),
//	    routetree.Prefix("api",
//	        routetree.Route("users", "routes/api/users.ts"),
//	    ),
//	}
//
//	descriptors, err := routetree.Build(routes...)
//
// # Output
//
// Build walks the forest depth-first, parent before children, children in
// declared order, and emits one Descriptor per Route, Index and Layout node.
// Prefix nodes emit nothing; their segment is prepended to every descendant.
// A Route that wraps children emits its own descriptor. A Layout without its
// own segment emits a descriptor with an empty Path.
//
// Paths are composed relative paths ("posts/:postId"): segments are joined
// with a single "/" and empty segments are elided.
//
// In PathConflictStrict mode two Routes, or a Route and a Layout with its
// own segment, composing to the same path are reported as DUPLICATE_PATH.
// Index routes and pathless layouts share their parent's path and are never
// compared.
//
// # Ids
//
// An explicit id (WithID) is used as is. Otherwise the id is derived from the
// composed path:
//
//	Route   "posts/:postId"   → "posts/:postId"   (empty path → "root")
//	Index   under "posts"     → "posts/index"
//	Layout  under "app"       → "app/layout"
//
// When the derived id is already taken, by an explicit id anywhere in the
// forest or by an earlier derived id, the ordinal suffix "~2", "~3", ... is
// appended. Two explicit ids that collide fail the build.
//
// # Errors
//
// Declaration mistakes (an index with a path, a second Children call, an
// invalid segment) are recorded on the returned Node and reported by
// Node.Err. Build reports them again together with build-time conflicts in
// a single *MultiConfigError; it never returns partial output.
package routetree
