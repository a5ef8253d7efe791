// ABOUTME: CLI commands for exporting and importing rehab data.
// ABOUTME: Supports JSON and YAML export and JSON import.
package main

import (
	"fmt"
	"os"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export rehab data",
	Long: `Export all prescriptions, surveys and programs.

FORMATS:

  json   Full JSON export (suitable for backup/restore)
  yaml   YAML export (human-readable)

EXAMPLES:

  rehab export json                  # Export all data as JSON
  rehab export json -o backup.json   # Save to file
  rehab export yaml                  # Export as YAML`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var data []byte
		var err error
		switch args[0] {
		case "json":
			data, err = storage.ExportJSON(ctx, repo)
		case "yaml":
			data, err = storage.ExportYAML(ctx, repo)
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.New(color.FgGreen).Fprintf(out, "✓ Exported to %s\n", exportOutput)
			return nil
		}
		fmt.Fprintln(out, string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rehab data from JSON",
	Long: `Import rehab data from a JSON backup file.

Prescriptions are replaced by (user, exercise), so importing the same
backup twice leaves the data unchanged.

EXAMPLES:

  rehab import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := storage.ImportJSON(cmd.Context(), repo, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Imported from %s\n", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
