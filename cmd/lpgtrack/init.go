// Init command for the lpgtrack CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configured store if it does not exist yet",
	Long: `Init opens the configured store and, when the backing file or object is
missing, creates it with an empty cylinder table. Config scaffolding
(config.yaml in the config directory) happens on every run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "init:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		created, err := store.Init(ctx, d.store)
		if err != nil {
			fmt.Fprintln(os.Stderr, "init store:", err)
			os.Exit(exitSysError)
		}

		if created {
			fmt.Printf("initialized empty %s store in %s\n", d.cfg.Store, d.cfg.DataDir)
		} else {
			fmt.Printf("%s store already initialized\n", d.cfg.Store)
		}
		return nil
	},
}
