// Export command: write the cylinder table as CSV.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/export"
)

var (
	exportOutput string
	exportGzip   bool
)

var exportCmd = &cobra.Command{
	Use:   "export [-o path]",
	Short: "Write the cylinder table as CSV",
	Long: `Export writes the loaded cylinder table in canonical CSV column order.
Without -o the CSV goes to stdout. A path ending in .gz, or the --gzip
flag, compresses the output.

Example:
  lpgtrack export
  lpgtrack export -o backup/cylinders.csv
  lpgtrack export -o backup/cylinders.csv.gz`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		if exportOutput == "" {
			if err := export.Write(os.Stdout, table); err != nil {
				fmt.Fprintln(os.Stderr, "export:", err)
				os.Exit(exitSysError)
			}
			return nil
		}

		path := exportOutput
		if exportGzip && !strings.HasSuffix(path, ".gz") {
			path += ".gz"
		}
		if err := export.WriteFile(path, table); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		fmt.Printf("exported %d cylinders to %s\n", len(table), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default stdout)")
	exportCmd.Flags().BoolVar(&exportGzip, "gzip", false, "gzip-compress the output file")
}
