// Version command for the lpgtrack CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/pkg/lpgtrack"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lpgtrack version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lpgtrack", lpgtrack.Version)
	},
}
