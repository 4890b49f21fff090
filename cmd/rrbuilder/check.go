package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rrbuilder/internal/build"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

func checkCmd(g *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the manifest without writing output",
		Long: `Validate the route manifest and report every conflict.

Exits non-zero when the manifest is malformed or the route tree has
conflicts: duplicate ids, index routes with paths or children, empty
route paths, invalid segments and, with --strict, duplicate paths.

Examples:
  rrbuilder check
  rrbuilder check --strict
  rrbuilder check -m s3://routes/app/routes.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(g, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Report routes that share a path")

	return cmd
}

func runCheck(g *globalFlags, strict bool) error {
	p, err := loadProject(g)
	if err != nil {
		return err
	}
	if strict {
		p.config.PathConflict = string(routetree.PathConflictStrict)
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := build.New(p.config, p.source, build.Options{Logger: p.logger}).Compile(ctx)
	if err != nil {
		return err
	}

	success("%s: %d routes, no conflicts (%s)", result.Source, result.Count, result.Duration.Round(time.Millisecond))
	return nil
}
