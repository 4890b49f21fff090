package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rrbuilder/internal/build"
	"github.com/vango-dev/rrbuilder/pkg/routepath"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

func inspectCmd(g *globalFlags) *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the compiled route tree",
		Long: `Print the compiled route tree with canonical paths, ids and files.

Examples:
  rrbuilder inspect
  rrbuilder inspect --flat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(g, flat)
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "Print the flat descriptor list with parent ids")

	return cmd
}

func runInspect(g *globalFlags, flat bool) error {
	p, err := loadProject(g)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := build.New(p.config, p.source, build.Options{Logger: p.logger}).Compile(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s (%d routes)\n\n", result.Source, result.Count)
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	if flat {
		printFlat(tw, result.Flat)
	} else {
		printTree(tw, result.Tree)
	}
	return tw.Flush()
}

// printTree writes one line per descriptor, children under box-drawing
// branches.
func printTree(w io.Writer, roots []routetree.Descriptor) {
	for _, d := range roots {
		fmt.Fprintf(w, "%s\t%s\t%s\n", displayPath(d), d.ID, d.File)
		printBranches(w, d.Children, "")
	}
}

func printBranches(w io.Writer, nodes []routetree.Descriptor, indent string) {
	for i, d := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", indent+branch, displayPath(d), d.ID, d.File)
		printBranches(w, d.Children, indent+next)
	}
}

func printFlat(w io.Writer, descriptors []routetree.Descriptor) {
	fmt.Fprintln(w, "PATH\tID\tPARENT\tPARAMS\tFILE")
	for _, d := range descriptors {
		parent := d.ParentID
		if parent == "" {
			parent = "-"
		}
		params := "-"
		if names := routepath.Params(d.Path); len(names) > 0 {
			params = strings.Join(names, ",")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", displayPath(d), d.ID, parent, params, d.File)
	}
}

func displayPath(d routetree.Descriptor) string {
	p := routepath.Canonicalize(d.Path)
	if d.Index {
		p += " (index)"
	}
	return p
}
