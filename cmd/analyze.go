package cmd

import (
	"context"
	"errors"
	"fmt"

	"wiiware-modder/config"
	"wiiware-modder/logger"
	"wiiware-modder/probe"
	"wiiware-modder/wit"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Identify a game file by its header",
	Long: `Read the file header and report the recognized WiiWare format.
With --wit-info the external wit tool is also asked for archive details.
Example: wiiware-modder analyze stage.brres`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		description, err := probe.Identify(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println(description)

		witInfo, _ := cmd.Flags().GetBool("wit-info")
		if !witInfo {
			return
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
		}

		tool, err := wit.Find(cfg.WitPath)
		if errors.Is(err, wit.ErrToolNotFound) {
			fmt.Println("wit tool not found; install it or set WIT_PATH.")
			return
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		info, err := tool.Info(context.Background(), args[0])
		if err != nil {
			logger.Log.Errorw("wit info failed", zap.Error(err))
			fmt.Printf("Error: wit could not read the file: %v\n", err)
			return
		}
		fmt.Println(info)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("wit-info", false, "Also run 'wit info' on the file")
}
