// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, repair, reset, and wipe operations.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/charm"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// managesKV marks sync commands that open the Charm database themselves.
var managesKV = map[string]string{noStorage: "true"}

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync rehab data across devices",
	Long: `Sync rehab data across devices using Charm Cloud.

Sync requires the charm backend: set "backend": "charm" in
~/.config/rehab/config.json or export REHAB_BACKEND=charm.

Your data is E2E encrypted with your SSH key before upload.
The server never sees your unencrypted rehab data.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     rehab sync link

  2. On other devices, link with the same Charm account:
     rehab sync link

  3. Check sync status:
     rehab sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

Data syncs automatically after each tracked session or survey.`,
}

var syncLinkCmd = &cobra.Command{
	Use:         "link",
	Short:       "Link this device to Charm",
	Annotations: managesKV,
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.
If you already have an account, you'll be prompted to link via charm.sh.

Example:
  rehab sync link`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := runCharm(cmd, "link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.New(color.FgGreen).Fprintln(out, "\n✓ Device linked to Charm")
		fmt.Fprintln(out, "Your rehab data will now sync automatically across devices.")

		if cfg.GetBackend() != config.BackendCharm {
			return nil
		}
		client, err := charm.InitClient(cfg.GetCharmHost())
		if err != nil {
			color.New(color.FgYellow).Fprintf(out, "⚠ Initial sync failed: %v\n", err)
			return nil
		}
		defer client.Close()
		if err := client.Sync(); err != nil {
			color.New(color.FgYellow).Fprintf(out, "⚠ Initial sync failed: %v\n", err)
		} else {
			color.New(color.FgGreen).Fprintln(out, "✓ Initial sync complete")
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Disconnect from Charm",
	Annotations: managesKV,
	Long: `Disconnect this device from Charm.

This does not delete your local rehab data.
You can link again later with 'rehab sync link'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintln(out, "✓ Device unlinked from Charm")
		fmt.Fprintln(out, "Your local rehab data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show current sync status including:
- Charm account info
- Connection status
- Local data info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		yellow := color.New(color.FgYellow)

		client, ok := repo.(*charm.Client)
		if !ok {
			yellow.Fprintf(out, "Sync is off: the active backend is %s\n", cfg.GetBackend())
			fmt.Fprintln(out, "\nSet REHAB_BACKEND=charm (or \"backend\": \"charm\" in config) to enable sync.")
			return nil
		}

		id, err := client.ID()
		if err != nil {
			yellow.Fprintln(out, "Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'rehab sync link' to connect to Charm.")
			return nil
		}

		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "Server:", client.Host())
		if client.IsReadOnly() {
			yellow.Fprintln(out, "⚠ Read-only: another process holds the database lock")
		}
		fmt.Fprintln(out)

		data, err := client.GetAllData(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read local data: %w", err)
		}

		color.New(color.FgGreen).Fprintln(out, "✓ Connected to Charm")
		fmt.Fprintf(out, "  Prescriptions: %d\n", len(data.Prescriptions))
		fmt.Fprintf(out, "  Surveys: %d\n", len(data.Surveys))
		fmt.Fprintf(out, "  Programs: %d\n", len(data.Programs))
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:         "wipe",
	Short:       "Delete all cloud and local data",
	Annotations: managesKV,
	Long: `Delete all cloud backups and local data.

This is a DESTRUCTIVE operation. ALL data will be permanently deleted.
Use this to:
- Completely remove all rehab data
- Start completely fresh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all cloud backups and local rehab data.")
		fmt.Fprint(out, "Type 'wipe' to confirm: ")
		if confirm(cmd) != "wipe" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.New(color.FgGreen).Fprintln(out, "✓ Data wiped successfully")
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:         "repair",
	Short:       "Repair database corruption",
	Annotations: managesKV,
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		force, _ := cmd.Flags().GetBool("force")
		green := color.New(color.FgGreen)

		fmt.Fprintln(out, "Repairing rehab database...")
		result, err := kv.Repair(charm.DBName, force)

		if result.WalCheckpointed {
			green.Fprintln(out, "  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			green.Fprintln(out, "  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			green.Fprintln(out, "  ✓ Integrity check passed")
		} else {
			color.New(color.FgRed).Fprintln(out, "  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			green.Fprintln(out, "  ✓ Database vacuumed")
		}

		if err != nil {
			if !force {
				color.New(color.FgYellow).Fprintln(out, "\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		green.Fprintln(out, "\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Reset local data and restore from cloud",
	Annotations: managesKV,
	Long: `Delete all local data and restore from Charm Cloud.

This is a destructive operation. All local data will be lost and restored from cloud.
Use this to:
- Fix sync conflicts
- Reset a device to cloud state
- Start fresh on a device`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all local rehab data and restore from cloud.")
		fmt.Fprint(out, "Continue? [y/N]: ")
		if c := confirm(cmd); c != "y" && c != "Y" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		if err := kv.Reset(charm.DBName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		color.New(color.FgGreen).Fprintln(out, "✓ Local data reset and restored from cloud")
		return nil
	},
}

// runCharm runs the charm CLI attached to the terminal.
func runCharm(cmd *cobra.Command, args ...string) error {
	charmCmd := exec.Command("charm", args...)
	charmCmd.Env = append(os.Environ(), "CHARM_HOST="+cfg.GetCharmHost())
	charmCmd.Stdin = cmd.InOrStdin()
	charmCmd.Stdout = cmd.OutOrStdout()
	charmCmd.Stderr = cmd.ErrOrStderr()
	return charmCmd.Run()
}

func confirm(cmd *cobra.Command) string {
	var answer string
	_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
	return answer
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}
