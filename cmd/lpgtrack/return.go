// Return command: take a cylinder back from a customer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/mutate"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

var returnCondition string

var returnCmd = &cobra.Command{
	Use:   "return <id> --condition <condition>",
	Short: "Process a cylinder returned by a customer",
	Long: `Return empties the cylinder and sets its status from the reported
condition: "Good" marks it Empty, anything else marks it Damaged. The
liability charge (damage plus overdue surcharge) is printed.

Example:
  lpgtrack return HYD-1001 --condition Good
  lpgtrack return HYD-1002 --condition Dented`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "return:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		out, err := d.mut.ApplyReturn(ctx, table, id, returnCondition)
		if err != nil {
			if errors.Is(err, types.ErrRecordNotFound) {
				fmt.Fprintf(os.Stderr, "cylinder %q not found\n", id)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "return:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			if err := printJSON(map[string]any{
				"record":    out.Record,
				"liability": out.Liability,
			}); err != nil {
				return err
			}
		} else {
			fmt.Printf("returned %s as %s, liability %d\n", out.Record.CylinderID, out.Record.Status, out.Liability)
		}
		if out.Persistence == mutate.MemoryOnly {
			fmt.Fprintln(os.Stderr, "warning: change kept in memory only; run 'lpgtrack export' to save a copy")
		}
		return nil
	},
}

func init() {
	returnCmd.Flags().StringVar(&returnCondition, "condition", "", "reported condition, e.g. Good or Dented (required)")
	returnCmd.MarkFlagRequired("condition")
}
