package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"wiiware-modder/config"
	"wiiware-modder/logger"
	"wiiware-modder/patch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// revertCmd represents the revert command
var revertCmd = &cobra.Command{
	Use:   "revert [original]",
	Short: "Restore a file from its most recent backup",
	Long: `Restore a patched file from a backup in the backup directory.
The newest backup is used unless --backup names a specific one.
Example: wiiware-modder revert game.brres`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
		}

		backupPath, _ := cmd.Flags().GetString("backup")
		if backupPath == "" {
			backupPath, err = latestBackup(cfg.BackupDir)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
		}

		dispatcher := patch.NewDispatcher(cfg.BackupDir)
		record := patch.Record{
			OriginalPath: args[0],
			BackupPath:   backupPath,
		}
		if err := dispatcher.Revert(record); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("Restored %s from %s\n", args[0], backupPath)
	},
}

func init() {
	rootCmd.AddCommand(revertCmd)

	revertCmd.Flags().String("backup", "", "Backup file to restore from")
}

// latestBackup finds the newest backup_*.bak file in the backup directory.
// Backup names embed a sortable timestamp, so lexical order is enough.
func latestBackup(backupDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(backupDir, "backup_*.bak"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no backups found in %s: %w", backupDir, os.ErrNotExist)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
