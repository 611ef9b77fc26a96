package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; every subcommand registers itself in init().
var rootCmd = &cobra.Command{
	Use:   "wiiware-modder",
	Short: "Manage WiiWare mods, patches and a local mod sharing library",
	Long: `wiiware-modder manages WiiWare game file modifications:
browse and extract archives with the external wit tool, apply binary
patches with automatic backups, and share mods through a local
SQLite-backed community library.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
