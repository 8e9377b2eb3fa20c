// Root command for the lpgtrack CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/logging"
	"github.com/workjay-it/lpgtrack/internal/paths"
	"github.com/workjay-it/lpgtrack/pkg/lpgtrack"
)

// Exit codes: 1 for user errors (bad input, unknown cylinder), 2 for system
// errors (store failures, broken config).
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagStore     string
	flagJSON      bool
	flagDebug     bool
)

// configDataDir holds the data_dir value loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use it.
var configDataDir string

var rootCmd = &cobra.Command{
	Use:     "lpgtrack",
	Short:   "lpgtrack keeps an LPG cylinder fleet inventory",
	Version: lpgtrack.Version,
	Long: `lpgtrack tracks a fleet of LPG gas cylinders: who holds them, how full
they are, and when each is due for its hydrostatic pressure test. Records
live in a pluggable store (CSV file, SQLite, Postgres, spreadsheet, S3 or
in-memory demo data) selected in config.yaml or with --store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version needs no config and must not scaffold a config dir.
		if cmd.Name() == "version" {
			return nil
		}
		if flagDebug {
			logging.SetDebug(true)
		}

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		cfgViper = v

		configDataDir = v.GetString(cfgKeyDataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.lpgtrack-db)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "store backend override (csv, sqlite, postgres, sheet, s3, memory)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(refillCmd)
	rootCmd.AddCommand(returnCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(safetyCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > LPGTRACK_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > LPGTRACK_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
