// ABOUTME: CLI command for migrating data between storage backends.
// ABOUTME: Copies prescriptions, surveys and programs from Charm KV to SQLite or back.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/charm"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/config"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between Charm KV and SQLite",
	Long: `Copy all rehab data from one storage backend to the other.

Prescriptions in the destination are replaced by (user, exercise), so the
migration can be repeated safely. The source is never modified.

BACKENDS:

  sqlite   ~/.local/share/rehab/rehab.db (or data_dir in config)
  charm    Charm KV, stored at ~/.local/share/charm/kv/rehab/

EXAMPLES:

  rehab migrate --dry-run                   # Preview charm -> sqlite
  rehab migrate                             # Copy charm -> sqlite
  rehab migrate --from sqlite --to charm    # Move local data into sync

AFTER MIGRATION:

  Switch the active backend in ~/.config/rehab/config.json:
    {"backend": "sqlite"}`,
	Annotations: map[string]string{noStorage: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		if migrateFrom == migrateTo {
			return fmt.Errorf("--from and --to are both %q", migrateFrom)
		}
		for _, b := range []string{migrateFrom, migrateTo} {
			if b != config.BackendSQLite && b != config.BackendCharm {
				return fmt.Errorf("unknown backend: %q (use sqlite or charm)", b)
			}
		}

		if migrateFrom == config.BackendCharm {
			ok, err := storage.IsDirNonEmpty(charmKVDir())
			if err != nil {
				return err
			}
			if !ok {
				color.New(color.FgYellow).Fprintf(out, "No Charm KV data found at %s\n", charmKVDir())
				return nil
			}
		}

		src, err := cfg.OpenBackend(migrateFrom)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", migrateFrom, err)
		}
		defer src.Close()

		if migrateDryRun {
			data, err := src.GetAllData(ctx)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", migrateFrom, err)
			}
			color.New(color.FgYellow).Fprintln(out, "Dry run mode - no changes will be made")
			fmt.Fprintf(out, "Would migrate %d prescriptions, %d surveys, %d programs from %s to %s\n",
				len(data.Prescriptions), len(data.Surveys), len(data.Programs), migrateFrom, migrateTo)
			return nil
		}

		dst, err := cfg.OpenBackend(migrateTo)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", migrateTo, err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(ctx, src, dst)
		if err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintf(out, "✓ Migrated %s to %s\n", migrateFrom, migrateTo)
		fmt.Fprintf(out, "  Prescriptions:      %d\n", summary.Prescriptions)
		fmt.Fprintf(out, "  Tracking instances: %d\n", summary.TrackingInstances)
		fmt.Fprintf(out, "  Scaling events:     %d\n", summary.ScalingEvents)
		fmt.Fprintf(out, "  Surveys:            %d\n", summary.Surveys)
		fmt.Fprintf(out, "  Programs:           %d\n", summary.Programs)
		return nil
	},
}

// charmKVDir is where Charm keeps the local copy of the rehab database.
func charmKVDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "charm", "kv", charm.DBName)
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendCharm, "source backend (sqlite or charm)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendSQLite, "destination backend (sqlite or charm)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
