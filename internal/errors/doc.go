// Package errors provides structured, actionable error messages for the
// rrbuilder CLI.
//
// Every error has a code that maps to a registered template:
//   - route:    route tree conflicts reported by the builder (R001-R099)
//   - manifest: malformed route manifests (M001-M099)
//   - source:   manifest locations that cannot be read (S001-S099)
//   - config:   rrbuilder.json / rrbuilder.toml problems (C120-C149)
//   - output:   descriptor encoding and writing (O001-O099)
//
// # Usage
//
//	err := errors.New("R011").
//	    WithLocation("routes.yaml", 14, 0).
//	    WithSuggestion("Give each route a distinct id")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R011: Duplicate route id
//	//
//	//   routes.yaml:14
//	//
//	//     12 │   - route: posts
//	//     13 │     file: routes/posts.tsx
//	//   → 14 │     id: posts
//	//     15 │
//	//
//	//   Hint: Give each route a distinct id
//
// Builder errors are converted with FromConfigErrors, which resolves
// declaration sources of the form "file:line" into locations.
package errors
