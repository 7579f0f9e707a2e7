package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "supportctl",
		Short:        "Operations CLI for the support bot",
		SilenceUsage: true,
	}
	cmd.AddCommand(newWebhookCmd())
	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newCatalogCmd())
	return cmd
}
