// Refill command: record a fill-up for one cylinder.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

var refillPercent int

var refillCmd = &cobra.Command{
	Use:   "refill <id> --fill <percent>",
	Short: "Record a fill-up for a cylinder",
	Long: `Refill sets the cylinder's fill percentage and stamps the fill date.
The test schedule and status are not touched; a refill is not a retest.

Example:
  lpgtrack refill HYD-1001 --fill 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "refill:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		out, err := d.mut.ApplyFillUpdate(ctx, table, id, refillPercent)
		if err != nil {
			switch {
			case errors.Is(err, types.ErrInvalidRange):
				fmt.Fprintln(os.Stderr, "refill:", err)
				os.Exit(exitUserError)
			case errors.Is(err, types.ErrRecordNotFound):
				fmt.Fprintf(os.Stderr, "cylinder %q not found\n", id)
				os.Exit(exitUserError)
			default:
				fmt.Fprintln(os.Stderr, "refill:", err)
				os.Exit(exitSysError)
			}
		}

		return reportOutcome("refilled", out)
	},
}

func init() {
	refillCmd.Flags().IntVar(&refillPercent, "fill", 100, "fill percentage 0-100")
}
