package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"wiiware-modder/config"
	"wiiware-modder/logger"
	"wiiware-modder/wit"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [archive] [output-dir]",
	Short: "Extract a WAD or WBFS archive with the wit tool",
	Long: `Extract a game archive using the external wit tool, streaming its
progress as it runs.
Example: wiiware-modder extract game.wad extracted/`,
	Args: cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
		}

		tool, err := wit.Find(cfg.WitPath)
		if errors.Is(err, wit.ErrToolNotFound) {
			fmt.Println("wit tool not found; install it or set WIT_PATH.")
			os.Exit(1)
		}
		if err != nil {
			logger.Log.Fatalw("Failed to locate wit", zap.Error(err))
		}

		if err := os.MkdirAll(args[1], 0755); err != nil {
			logger.Log.Fatalw("Failed to create output directory",
				zap.String("directory", args[1]), zap.Error(err))
		}

		err = tool.Extract(context.Background(), args[0], args[1], func(percent float64) {
			fmt.Printf("\rExtracting... %.0f%%", percent)
		})
		fmt.Println()
		if err != nil {
			logger.Log.Errorw("Extraction failed", zap.Error(err))
			fmt.Printf("Error: extraction failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Extracted %s to %s\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
