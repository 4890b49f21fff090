package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rrbuilder/internal/config"
	"github.com/vango-dev/rrbuilder/internal/templates"
)

func initCmd() *cobra.Command {
	var (
		template string
		useTOML  bool
		force    bool
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a config file and starter manifest",
		Long: `Create rrbuilder.json (or rrbuilder.toml) and a starter routes.yaml.

Existing files are kept unless --force is given.

Examples:
  rrbuilder init
  rrbuilder init web --template dashboard --toml
  rrbuilder init --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				printTemplates()
				return nil
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, template, useTOML, force)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "blog", "Starter manifest template")
	cmd.Flags().BoolVar(&useTOML, "toml", false, "Write rrbuilder.toml instead of rrbuilder.json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&list, "list", false, "List available templates")

	return cmd
}

func runInit(dir, name string, useTOML, force bool) error {
	tmpl, err := templates.Get(name)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	written, err := tmpl.Create(dir, templates.Config{Name: filepath.Base(abs)}, force)
	if err != nil {
		return err
	}
	if written == "" {
		warn("%s already exists, keeping it", filepath.Join(dir, config.DefaultManifest))
	} else {
		success("Created %s (%s)", written, tmpl.Name)
	}

	file := config.ConfigFileName
	if useTOML {
		file = config.TOMLFileName
	}
	if config.Exists(dir) && !force {
		warn("Config already exists in %s, keeping it", dir)
	} else {
		if err := config.New().SaveTo(filepath.Join(dir, file)); err != nil {
			return err
		}
		success("Created %s", filepath.Join(dir, file))
	}

	fmt.Fprintln(stdout)
	info("Next steps:")
	info("  rrbuilder check")
	info("  rrbuilder build")
	return nil
}

func printTemplates() {
	for _, name := range templates.List() {
		tmpl, _ := templates.Get(name)
		fmt.Fprintf(stdout, "  %-10s %s\n", name, tmpl.Description)
	}
}
