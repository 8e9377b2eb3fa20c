// Safety command: the hydrostatic test compliance sweep.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/query"
)

var safetyCmd = &cobra.Command{
	Use:   "safety",
	Short: "List cylinders overdue for their pressure test",
	Long: `Safety sweeps the fleet for cylinders past their hydrostatic test
deadline, most overdue first. A clean sweep reports no cylinders.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "safety:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		overdue := query.SortByNextTestDue(query.OverdueOnly(table))

		if flagJSON {
			return printJSON(overdue)
		}
		if len(overdue) == 0 {
			fmt.Println("no cylinders overdue for testing")
			return nil
		}
		fmt.Printf("%d of %d cylinders overdue for testing:\n\n", len(overdue), len(table))
		printRecords(overdue)
		return nil
	},
}
