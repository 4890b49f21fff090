// Package build runs the route descriptor pipeline.
//
// This package handles:
//   - Reading the manifest from its source (file or S3)
//   - Parsing it into route declarations
//   - Compiling the route tree
//   - Encoding descriptors as JSON or YAML, flat or hierarchical
//   - Writing the output file, skipped when its content is unchanged
//
// # Usage
//
//	builder := build.New(cfg, src, build.Options{Logger: log})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    errors.Fprint(os.Stderr, err)
//	    os.Exit(1)
//	}
//
//	fmt.Printf("Wrote %d routes to %s in %s\n", result.Count, result.Output, result.Duration)
//
// Compile stops before encoding; check, inspect and serve use it.
package build
