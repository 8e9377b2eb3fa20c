// Add command: register a new cylinder.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

var (
	addID       string
	addCapacity int
	addPIN      string
	addCustomer string
	addStatus   string
	addFill     int
	addLastTest string
)

var addCmd = &cobra.Command{
	Use:   "add --id <id> --capacity <kg> --pin <pincode>",
	Short: "Register a new cylinder",
	Long: `Add appends a cylinder record to the table. The next test date is
derived from --last-test; an omitted status defaults to Full.

Example:
  lpgtrack add --id HYD-2001 --capacity 19 --pin 500033 --customer "Leo Gas" --last-test 2026-01-10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		lastTest, err := parseDateFlag("last-test", addLastTest)
		if err != nil {
			fmt.Fprintln(os.Stderr, "add:", err)
			os.Exit(exitUserError)
		}

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "add:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		fields := types.CylinderRecord{
			CylinderID:   addID,
			CapacityKg:   addCapacity,
			FillPercent:  addFill,
			Status:       addStatus,
			LocationPIN:  addPIN,
			CustomerName: addCustomer,
			LastTestDate: lastTest,
		}

		out, err := d.mut.ApplyNewRecord(ctx, table, fields)
		if err != nil {
			switch {
			case errors.Is(err, types.ErrValidation),
				errors.Is(err, types.ErrInvalidPIN),
				errors.Is(err, types.ErrDuplicateID):
				fmt.Fprintln(os.Stderr, "add:", err)
				os.Exit(exitUserError)
			default:
				fmt.Fprintln(os.Stderr, "add:", err)
				os.Exit(exitSysError)
			}
		}

		return reportOutcome("added", out)
	},
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "cylinder ID (required)")
	addCmd.Flags().IntVar(&addCapacity, "capacity", 0, "capacity in kg (required)")
	addCmd.Flags().StringVar(&addPIN, "pin", "", "6-digit location PIN (required)")
	addCmd.Flags().StringVar(&addCustomer, "customer", "", "customer name")
	addCmd.Flags().StringVar(&addStatus, "status", "", "status (default Full)")
	addCmd.Flags().IntVar(&addFill, "fill", 100, "fill percentage 0-100")
	addCmd.Flags().StringVar(&addLastTest, "last-test", "", "last hydrostatic test date (YYYY-MM-DD)")

	addCmd.MarkFlagRequired("id")
	addCmd.MarkFlagRequired("capacity")
	addCmd.MarkFlagRequired("pin")
}
