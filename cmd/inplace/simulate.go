package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/inplace/pkg/live"
	"github.com/vango-dev/inplace/pkg/reconcile"
)

func simulateCmd(g *globals) *cobra.Command {
	var (
		dataset string
		asJSON  bool
		final   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [step...]",
		Short: "Apply changes and print each patch log",
		Long: `Mount the app, apply each step in order and print the patches every
reconciliation applied to the live structure.

Steps:
  input:<name>=<value>                  type into the named input
  click:<i>,<j>,...                     click the element at the path
  set:<field>=<value>                   write a form field directly
  append:<name>,<city>,<state>,<age>    append a table row
  swap:<dataset>                        replace the table data

Examples:
  inplace simulate input:name=Ann input:city=Boston
  inplace simulate append:Kim,Austin,TX,33 --json
  inplace simulate swap:table3 --final`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			srv, err := engine(cmd, cfg, dataset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for i, s := range steps {
				res, err := s.run(srv)
				if err != nil {
					return err
				}
				if asJSON {
					if err := enc.Encode(stepReport{Step: i + 1, Change: s.raw, Updates: res.Updates}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%d. %s: %s\n", i+1, s.raw, summarize(res))
			}

			if final {
				m, err := markup(srv, cfg, cfg.Render.Pretty)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, m)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "table", "Sample table to mount")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON report per step")
	cmd.Flags().BoolVar(&final, "final", false, "Print the final markup")

	return cmd
}

type stepReport struct {
	Step    int           `json:"step"`
	Change  string        `json:"change"`
	Updates []live.Update `json:"updates"`
}

// summarize describes a step result as "2 reconciliations: InsertNode=1".
func summarize(res live.Result) string {
	var all []reconcile.Patch
	drift := 0
	for _, u := range res.Updates {
		all = append(all, u.Patches...)
		drift += u.Drift
	}

	noun := "reconciliations"
	if len(res.Updates) == 1 {
		noun = "reconciliation"
	}
	counts := reconcile.Count(all)
	ops := make([]string, 0, len(counts))
	for op, n := range counts {
		ops = append(ops, fmt.Sprintf("%s=%d", op, n))
	}
	sort.Strings(ops)

	s := fmt.Sprintf("%d %s", len(res.Updates), noun)
	if len(ops) > 0 {
		s += ": " + strings.Join(ops, " ")
	}
	if drift > 0 {
		s += fmt.Sprintf(" (drift %d)", drift)
	}
	return s
}
