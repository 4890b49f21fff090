package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rrbuilder/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Output streams, swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

const banner = `
  ┬─┐┬─┐┌┐ ┬ ┬┬┬  ┌┬┐┌─┐┬─┐
  ├┬┘├┬┘├┴┐│ ││││   ││├┤ ├┬┘
  ┴└─┴└─└─┘└─┘┴┴─┘─┴┘└─┘┴└─
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "rrbuilder",
		Short: "Compile route manifests into router descriptors",
		Long: `rrbuilder compiles a declarative route manifest into the flat
descriptor list a router configuration loader consumes.

  • Nested routes, index routes, layouts and path prefixes
  • Stable, unique route ids derived from paths
  • Every conflict reported at once, with manifest line numbers
  • Manifests from local files or S3
  • A live descriptor server with change notifications`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file (default: nearest rrbuilder.json or rrbuilder.toml)")
	rootCmd.PersistentFlags().StringVarP(&g.manifest, "manifest", "m", "", "Manifest location, a file or s3://bucket/key (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log at debug level")

	// Add commands
	rootCmd.AddCommand(
		initCmd(),
		buildCmd(g),
		checkCmd(g),
		inspectCmd(g),
		serveCmd(g),
		versionCmd(),
	)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Fprint(stdout, banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(stdout, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(stdout, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(stdout, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
