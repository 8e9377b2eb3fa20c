// Show command for the lpgtrack CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/query"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Display a cylinder with full details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "show:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		rec, err := query.LookupByID(table, id)
		if err != nil {
			if errors.Is(err, types.ErrRecordNotFound) {
				fmt.Fprintf(os.Stderr, "cylinder %q not found\n", id)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "lookup:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(rec)
		}
		printRecord(rec)
		return nil
	},
}
