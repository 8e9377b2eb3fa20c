// Dashboard command: the default fleet overview.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/query"
)

var (
	dashboardStatus  string
	dashboardOverdue bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the cylinder fleet with summary figures",
	Long: `Dashboard lists the cylinder table sorted by next test due and prints
summary figures underneath. --status narrows to a comma-separated status
list; --overdue keeps only cylinders past their test deadline.

Example:
  lpgtrack dashboard
  lpgtrack dashboard --status Active,Full
  lpgtrack dashboard --overdue`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "dashboard:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		table, err := loadTable(ctx, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load table:", err)
			os.Exit(exitSysError)
		}

		if dashboardStatus != "" {
			table = query.FilterByStatus(table, strings.Split(dashboardStatus, ","))
		}
		if dashboardOverdue {
			table = query.OverdueOnly(table)
		}
		table = query.SortByNextTestDue(table)
		sum := query.Summarize(table)

		if flagJSON {
			return printJSON(map[string]any{
				"cylinders": table,
				"summary":   sum,
			})
		}

		printRecords(table)
		fmt.Println()
		fmt.Printf("Cylinders: %d   Overdue: %d   Average fill: %.1f%%\n",
			sum.Total, sum.OverdueCount, sum.AverageFill)
		statuses := make([]string, 0, len(sum.ByStatus))
		for status := range sum.ByStatus {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			fmt.Printf("  %s: %d\n", status, sum.ByStatus[status])
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardStatus, "status", "", "comma-separated status filter")
	dashboardCmd.Flags().BoolVar(&dashboardOverdue, "overdue", false, "only cylinders past their test deadline")
}
