// Serve command: run the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workjay-it/lpgtrack/internal/logging"
	"github.com/workjay-it/lpgtrack/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [--addr :8080]",
	Short: "Run the HTTP API over the configured store",
	Long: `Serve exposes the cylinder table over HTTP: list, detail and summary
reads, refill/return/add mutations, CSV export, the audit trail and
Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := openDepot(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "serve:", err)
			os.Exit(exitSysError)
		}
		defer d.Close()

		addr := d.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		cc := server.NewCylinderController(d.loader, d.mut, d.trail)
		r := server.SetupRouter(cc, d.cfg.Server.Debug || flagDebug)

		logging.Component("serve").WithField("addr", addr).Info("listening")
		if err := r.Run(addr); err != nil {
			fmt.Fprintln(os.Stderr, "serve:", err)
			os.Exit(exitSysError)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
