// ABOUTME: CLI command for starting the JSON HTTP API.
// ABOUTME: Serves the rehab API until interrupted, then shuts down gracefully.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API used by the web front end.

Every route lives under /api/v1 and takes the user from the path, e.g.
  GET  /api/v1/users/alice/prescriptions
  POST /api/v1/users/alice/prescriptions/wrist_flexion/tracking

Errors are returned as application/problem+json.

EXAMPLES:

  rehab serve                       # listen on 127.0.0.1:8484
  rehab serve --addr :9000
  REHAB_LISTEN_ADDR=0.0.0.0:8484 rehab serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := api.NewRouter(api.NewHandler(eng, logger, Version))
		fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", ln.Addr())
		return api.Serve(ctx, ln, router, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8484)")
	rootCmd.AddCommand(serveCmd)
}
