package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"wiiware-modder/config"
	"wiiware-modder/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [patchfile] [files...]",
	Short: "Apply one patch to many files",
	Long: `Apply a single patch to a set of game files. Outputs are written to
the batch output directory as <name>_patched<ext>. A file that fails is
logged to batch_patch_errors.txt and skipped; the batch always finishes.
Example: wiiware-modder batch fix.ips stage1.brres stage2.brres`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
		}

		outDir, _ := cmd.Flags().GetString("out-dir")
		if outDir == "" {
			outDir = cfg.BatchOutputDir
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			logger.Log.Fatalw("Failed to create output directory",
				zap.String("directory", outDir), zap.Error(err))
		}

		runBatch(cfg, args[0], args[1:], outDir)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("out-dir", "", "Directory for patched outputs (default: the configured batch directory)")
}

func runBatch(cfg config.Config, patchPath string, files []string, outDir string) {
	m := initialBatchModel(cfg, patchPath, files, outDir)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run batch UI", zap.Error(err))
	}

	// The log files carry the durable record; the closing line just points
	// the user at them.
	fmt.Printf("Logs written to %s\n", filepath.Join(outDir, "batch_patch_log.txt"))
}

