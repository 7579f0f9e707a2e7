package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tg-support-bot/internal/adapters/catalog"
	"tg-support-bot/internal/adapters/matcher"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <text...>",
		Short: "Run the fuzzy matcher against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			results := matcher.NewFuzzy(cat.Records()).Search(query)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "no match for %q, user is sent to the support group\n", query)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tSCORE\tKEYWORD")
			for _, m := range results {
				fmt.Fprintf(w, "%s\t%.3f\t%s\n", m.Record.Category, m.Score, m.Keyword)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "best: %s\n", results[0].Record.Category)
			return nil
		},
	}
	cmd.Flags().String("catalog", os.Getenv("CATALOG_FILE"), "YAML catalog file (default: built-in catalog).")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print catalog records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			for _, rec := range cat.Records() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", rec.Category, rec.Title, strings.Join(rec.Keywords, ", "))
			}
			return nil
		},
	}
	cmd.Flags().String("catalog", os.Getenv("CATALOG_FILE"), "YAML catalog file (default: built-in catalog).")
	return cmd
}

func loadCatalog(cmd *cobra.Command) (*catalog.Static, error) {
	path, _ := cmd.Flags().GetString("catalog")
	return catalog.Load(path)
}
