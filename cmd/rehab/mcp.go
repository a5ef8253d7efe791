// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP lets AI assistants log sessions, run evaluations and submit surveys
through a standardized protocol. The server communicates via stdin/stdout;
logs go to stderr or the configured log file.

DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "rehab": {
        "command": "rehab",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  record_tracking                Log an AM/PM session
  evaluate_progression           Evaluate and scale a prescription
  initialize_prescription        Seed one exercise from an endurance test
  initialize_all_prescriptions   Seed the whole catalog
  get_prescription               Current target of one exercise
  list_prescriptions             All stored prescriptions
  calculate_irritability_index   Preview the index of a survey
  submit_survey                  Store a load-management survey

AVAILABLE RESOURCES:

  rehab://prescriptions   Prescriptions with statistics
  rehab://program         Program start and reassessment status

Tools default to the --user flag, or the configured user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(eng, currentUser(), logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
