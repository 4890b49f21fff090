package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the rrbuilder version, the commit it was built from and the Go toolchain.`,
		Run: func(cmd *cobra.Command, args []string) {
			v := resolvedVersion()
			if short {
				fmt.Fprintln(stdout, v)
				return
			}

			printBanner()
			tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "  Version:\t%s\n", v)
			fmt.Fprintf(tw, "  Commit:\t%s\n", commit)
			fmt.Fprintf(tw, "  Built:\t%s\n", date)
			fmt.Fprintf(tw, "  Go:\t%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			tw.Flush()
			fmt.Fprintln(stdout)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version")

	return cmd
}

// resolvedVersion prefers the linker-set version, then the module version
// recorded by "go install".
func resolvedVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
