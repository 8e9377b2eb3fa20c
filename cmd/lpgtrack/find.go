// Find command: locate cylinders by area PIN code.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/query"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

var findPIN string

var findCmd = &cobra.Command{
	Use:   "find --pin <pincode>",
	Short: "List cylinders located at a PIN code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "find:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		matches, err := query.FilterByPIN(table, findPIN)
		if err != nil {
			if errors.Is(err, types.ErrInvalidPIN) {
				fmt.Fprintln(os.Stderr, "find:", err)
				os.Exit(exitUserError)
			}
			fmt.Fprintln(os.Stderr, "find:", err)
			os.Exit(exitSysError)
		}

		if flagJSON {
			return printJSON(matches)
		}
		if len(matches) == 0 {
			fmt.Printf("no cylinders at PIN %s\n", findPIN)
			return nil
		}
		printRecords(matches)
		return nil
	},
}

func init() {
	findCmd.Flags().StringVar(&findPIN, "pin", "", "6-digit PIN code (required)")
	findCmd.MarkFlagRequired("pin")
}
