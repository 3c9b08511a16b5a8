// ABOUTME: Sync commands for the charm backend
// ABOUTME: Status, immediate sync, device linking, and local database maintenance

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harper/stride/internal/charm"
	"github.com/harper/stride/internal/config"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync todos and activities through Charm Cloud",
	Long: `Keep todos and activity history in step across devices with Charm Cloud.
Authentication uses your SSH key. Sync needs "backend": "charm" in config.json;
writes then sync automatically.

Examples:
  stride sync status
  stride sync link
  stride sync now
  stride sync repair --force
  stride sync reset
  stride sync wipe`,
}

var syncStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show backend, host and linked account",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		fmt.Printf("Backend:    %s\n", c.GetBackend())
		fmt.Printf("Charm Host: %s\n", c.GetCharmHost())
		fmt.Printf("Database:   %s\n", charm.DBName)

		if c.GetBackend() != config.BackendCharm {
			color.Yellow("\nSync is off for the %s backend.", c.GetBackend())
			fmt.Println("Copy your data with 'stride migrate --to charm', then set \"backend\": \"charm\".")
			return nil
		}

		account, err := linkedAccount()
		if err != nil {
			color.Yellow("\nStatus: %v", err)
			fmt.Println("Run 'stride sync link' to connect this device.")
			return nil
		}
		fmt.Printf("\nAccount: %s\n", account)
		color.Green("Status: Connected")
		return nil
	},
}

// linkedAccount returns the charm account id for this machine's key.
func linkedAccount() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("not connected")
	}
	id, err := cc.ID()
	if err != nil || id == "" {
		return "", fmt.Errorf("not linked")
	}
	return id, nil
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Push and pull changes immediately",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if backend := currentConfig().GetBackend(); backend != config.BackendCharm {
			color.Yellow("⚠ Sync is off for the %s backend", backend)
			return nil
		}
		if err := repo.Sync(); err != nil {
			return fmt.Errorf("failed to sync: %w", err)
		}
		color.Green("✓ Synced")
		return nil
	},
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to your Charm account",
	Long: `Run the charm CLI's interactive linking flow. An account is created on
first use. Requires the charm binary on PATH.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Starting Charm link...")
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to run 'charm link': %w\nInstall the charm CLI with: go install github.com/charmbracelet/charm@latest", err)
		}
		color.Green("\n✓ Device linked")
		fmt.Println("Todos and activities now sync on every write.")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:         "unlink",
	Short:       "Unlink this device from your Charm account",
	Long:        `Stop syncing from this device. Local data is kept.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to run 'charm unlink': %w", err)
		}
		color.Green("\n✓ Device unlinked")
		return nil
	},
}

func runCharm(sub string) error {
	c := exec.Command("charm", sub)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

var repairForce bool

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair the local sync database",
	Long: `Checkpoint the WAL, drop a stale SHM file, check integrity and vacuum
the local stride database. With --force a failed integrity check falls
back to REINDEX and finally to a fresh copy from the cloud.

Try this after "database disk image is malformed" or lock errors.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := kv.Repair(charm.DBName, repairForce)
		if err != nil {
			color.Red("✗ Repair failed: %v", err)
			if !repairForce {
				fmt.Println("Retry with: stride sync repair --force")
			}
			return err
		}

		steps := []struct {
			done bool
			msg  string
		}{
			{result.WalCheckpointed, "WAL checkpointed"},
			{result.ShmRemoved, "SHM file removed"},
			{result.Vacuumed, "database vacuumed"},
		}
		for _, s := range steps {
			if s.done {
				color.Green("  ✓ %s", s.msg)
			}
		}
		if result.IntegrityOK {
			color.Green("  ✓ integrity check passed")
		} else {
			color.Red("  ✗ integrity check failed")
		}
		if result.RecoveryAttempted {
			color.Yellow("  ⚠ REINDEX recovery attempted")
		}
		if result.ResetFromCloud {
			color.Yellow("  ⚠ reset from cloud")
		}
		if result.Error != nil {
			color.Yellow("  ⚠ %v", result.Error)
		}
		color.Green("✓ Repair completed")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the local database with the cloud copy",
	Long: `Delete the local stride database and pull a fresh copy from Charm Cloud.
Unsynced local changes are lost.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Yellow("Unsynced local changes will be lost.")
		if !confirmTyped("Continue? (y/N): ", "y", "yes") {
			fmt.Println("Aborted.")
			return nil
		}
		if err := kv.Reset(charm.DBName); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
		color.Green("✓ Local database refreshed from the cloud")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Permanently delete all data, local and cloud",
	Long: `Delete every todo and activity on this device, on Charm Cloud, and so
on every linked device. This cannot be undone.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Red("This deletes all stride data on every linked device and cannot be undone.")
		if !confirmTyped("Type 'wipe' to confirm: ", "wipe") {
			fmt.Println("Aborted.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("failed to wipe: %w", err)
		}
		if result.CloudBackupsDeleted > 0 {
			color.Green("✓ Deleted %d cloud backup(s)", result.CloudBackupsDeleted)
		}
		if result.LocalFilesDeleted > 0 {
			color.Green("✓ Deleted %d local file(s)", result.LocalFilesDeleted)
		}
		if result.Error != nil {
			color.Yellow("⚠ %v", result.Error)
		}
		color.Green("✓ All data wiped")
		return nil
	},
}

// confirmTyped prompts on stdin and reports whether the answer is one of accepted.
func confirmTyped(prompt string, accepted ...string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, a := range accepted {
		if answer == a {
			return true
		}
	}
	return false
}

func init() {
	syncRepairCmd.Flags().BoolVarP(&repairForce, "force", "f", false, "fall back to REINDEX and cloud reset if integrity fails")

	syncCmd.AddCommand(syncStatusCmd, syncNowCmd, syncLinkCmd, syncUnlinkCmd, syncRepairCmd, syncResetCmd, syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
