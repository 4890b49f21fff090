package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rrbuilder/internal/build"
)

func buildCmd(g *globalFlags) *cobra.Command {
	var (
		output   string
		format   string
		encoding string
		clean    bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the manifest and write descriptors",
		Long: `Compile the route manifest and write the descriptor list.

This command:
  • Reads the manifest (file or s3://bucket/key)
  • Compiles the route tree, reporting every conflict
  • Encodes descriptors as JSON or YAML, flat or nested
  • Writes the output, leaving it untouched when nothing changed

Examples:
  rrbuilder build
  rrbuilder build --output=-
  rrbuilder build --format=tree --encoding=yaml -o routes.yaml.out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(g, output, format, encoding, clean)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "Descriptor layout: flat or tree (default from config)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Output encoding: json or yaml (default from config)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output file before building")

	return cmd
}

func runBuild(g *globalFlags, output, format, encoding string, clean bool) error {
	p, err := loadProject(g)
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if output != "" {
		p.config.Output = absolute(output)
	}
	if format != "" {
		p.config.Format = format
	}
	if encoding != "" {
		p.config.Encoding = encoding
	}
	if err := p.config.Validate(); err != nil {
		return err
	}

	toStdout := p.config.OutputPath() == "-"
	builder := build.New(p.config, p.source, build.Options{
		Stdout: stdout,
		Logger: p.logger,
		OnProgress: func(step string) {
			if !toStdout {
				info(step)
			}
		},
	})

	// Clean if requested
	if clean {
		if !toStdout {
			info("Cleaning output...")
		}
		if err := builder.Clean(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	if toStdout {
		return nil
	}

	// Print results
	fmt.Fprintln(stdout)
	if result.Unchanged {
		success("%d routes, %s unchanged (%s)", result.Count, result.Output, result.Duration.Round(time.Millisecond))
		return nil
	}
	success("Wrote %d routes to %s in %s", result.Count, result.Output, result.Duration.Round(time.Millisecond))
	info("format:   %s", p.config.Format)
	info("encoding: %s", p.config.Encoding)
	info("sha256:   %s", result.Digest[:12])
	return nil
}

