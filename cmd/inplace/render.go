package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func renderCmd(g *globals) *cobra.Command {
	var (
		dataset string
		pretty  bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the markup of the mounted app",
		Long: `Mount the app over a sample dataset and print the live markup.

Examples:
  inplace render
  inplace render --dataset table2 --pretty
  inplace render -o app.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Render.Pretty = pretty
			}

			srv, err := engine(cmd, cfg, dataset)
			if err != nil {
				return err
			}
			out, err := markup(srv, cfg, cfg.Render.Pretty)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			if err := os.WriteFile(output, []byte(out+"\n"), 0644); err != nil {
				return err
			}
			success(cmd, "Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "table", "Sample table to mount")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the markup (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
