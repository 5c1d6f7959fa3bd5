package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/inplace/pkg/snapshot"
)

func snapshotCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Store and inspect rendered snapshots",
		Long: `Snapshots hold the live markup and the state it was rendered from.
They are written to snapshot.dir, or to S3 when snapshot.bucket is set.`,
	}
	cmd.AddCommand(
		snapshotSaveCmd(g),
		snapshotListCmd(g),
		snapshotShowCmd(g),
	)
	return cmd
}

func snapshotSaveCmd(g *globals) *cobra.Command {
	var (
		dataset string
		name    string
	)

	cmd := &cobra.Command{
		Use:   "save [step...]",
		Short: "Apply steps and store the result",
		Long: `Mount the app, apply the steps (see "inplace simulate --help") and
store the resulting markup and state.

Examples:
  inplace snapshot save --name ann input:name=Ann
  inplace snapshot save --dataset table2 append:Kim,Austin,TX,33`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			srv, err := engine(cmd, cfg, dataset)
			if err != nil {
				return err
			}
			for _, s := range steps {
				if _, err := s.run(srv); err != nil {
					return err
				}
			}

			m, err := srv.Markup()
			if err != nil {
				return err
			}
			id, err := store.Save(cmd.Context(), snapshot.New(name, m, srv.App().Snapshot()))
			if err != nil {
				return err
			}
			success(cmd, "Saved snapshot %s", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "table", "Sample table to mount")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Snapshot name")

	return cmd
}

func snapshotListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			metas, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				info(cmd, "No snapshots")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED\tSIZE")
			for _, m := range metas {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", m.ID, m.Name, m.CreatedAt.Format("2006-01-02 15:04:05"), m.Size)
			}
			return w.Flush()
		},
	}
}

func snapshotShowCmd(g *globals) *cobra.Command {
	var state bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			snap, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if state {
				return writeYAML(cmd, snap.State)
			}
			fmt.Fprintln(cmd.OutOrStdout(), snap.Markup)
			return nil
		},
	}

	cmd.Flags().BoolVar(&state, "state", false, "Print the state instead of the markup")

	return cmd
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
