package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"wiiware-modder/config"
	"wiiware-modder/logger"
	"wiiware-modder/patch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// patchCmd represents the patch command
var patchCmd = &cobra.Command{
	Use:   "patch [original] [patchfile]",
	Short: "Apply a patch file to a game file",
	Long: `Apply an IPS, BPS or plain patch to a game file. A backup of the
original is written to the backup directory unless AUTO_BACKUP is off
or --no-backup is given.
Example: wiiware-modder patch game.brres fix.ips --output game_fixed.brres`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			ext := filepath.Ext(args[0])
			output = strings.TrimSuffix(args[0], ext) + "_patched" + ext
		}

		noBackup, _ := cmd.Flags().GetBool("no-backup")
		createBackup := cfg.AutoBackup && !noBackup

		dispatcher := patch.NewDispatcher(cfg.BackupDir)
		record, err := dispatcher.Apply(args[0], args[1], output, createBackup)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("Patched %s -> %s\n", args[0], output)
		if createBackup {
			fmt.Printf("Backup saved to %s\n", record.BackupPath)
		}
	},
}

func init() {
	rootCmd.AddCommand(patchCmd)

	patchCmd.Flags().String("output", "", "Output path (default: <name>_patched<ext>)")
	patchCmd.Flags().Bool("no-backup", false, "Skip the automatic backup")
}
