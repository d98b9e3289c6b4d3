package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/clawshield/clawshield/internal/pack"
	"github.com/clawshield/clawshield/internal/rules"
)

func newRulesCmd() *cobra.Command {
	var packName string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules enabled by a pack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := pack.Resolve(packName)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEVERITY\tPOINTS\tTIER\tTITLE")
			for _, r := range cfg.Rules() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Severity, r.Points, r.Tier, r.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&packName, "pack", "p", string(pack.Basic), "Rule pack: basic|strict|paranoid")
	cmd.AddCommand(newRulesLintCmd())

	return cmd
}

func newRulesLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Check the built-in rule catalog for mistakes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			problems := rules.LintCatalog()
			if len(problems) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d rules ok\n", len(rules.All()))
				return err
			}
			return errors.New(strings.Join(problems, "\n"))
		},
	}
}

func newPacksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List rule packs and their thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PACK\tMEDIUM\tHIGH\tMULTIPLIER\tTIERS\tRULES")
			for _, cfg := range pack.All() {
				tiers := make([]string, len(cfg.Tiers))
				for i, t := range cfg.Tiers {
					tiers[i] = string(t)
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%s\t%d\n",
					cfg.Name, cfg.Thresholds.Medium, cfg.Thresholds.High, cfg.Multiplier, strings.Join(tiers, ","), len(cfg.Rules()))
			}
			return tw.Flush()
		},
	}
}
