package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/inplace/internal/config"
	"github.com/vango-dev/inplace/internal/errors"
)

func initCmd(g *globals) *cobra.Command {
	var (
		useYAML bool
		force   bool
		name    string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default config file",
		Long: `Write inplace.json (or inplace.yaml with --yaml) with default settings.

Examples:
  inplace init
  inplace init ./preview --yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			if config.Exists(dir) && !force {
				return errors.New(errors.CodeInvalidArgument).
					WithDetailf("config already exists in %s", dir).
					WithSuggestion("Use --force to overwrite")
			}

			cfg := config.New()
			cfg.Name = name
			if cfg.Name == "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				cfg.Name = filepath.Base(abs)
			}

			file := config.ConfigFileName
			if useYAML {
				file = config.YAMLConfigFileName
			}
			path := filepath.Join(dir, file)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			success(cmd, "Created %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useYAML, "yaml", false, "Write inplace.yaml instead of inplace.json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")

	return cmd
}
