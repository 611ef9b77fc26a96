package cmd

import (
	"fmt"
	"os"

	"wiiware-modder/logger"
	"wiiware-modder/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Share a mod file through the local library",
	Long: `Copy a mod file into the shared library and create its listing.
Example: wiiware-modder upload hat-mod.zip --title "Hat Mod" --game "Super Smash Bros. Brawl" --as alice --password secret1`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, reg := bootstrap(".")

		identifier, _ := cmd.Flags().GetString("as")
		password, _ := cmd.Flags().GetString("password")
		user := mustAuthenticate(reg, identifier, password)

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		game, _ := cmd.Flags().GetString("game")
		version, _ := cmd.Flags().GetString("mod-version")
		tags, _ := cmd.Flags().GetString("tags")
		private, _ := cmd.Flags().GetBool("private")

		modID, err := shareMod(reg, cfg.SharedModsDir, args[0], registry.UploadModParams{
			Title:             title,
			Description:       description,
			AuthorID:          user.ID,
			GameCompatibility: game,
			Version:           version,
			Tags:              tags,
			IsPublic:          !private,
		})
		if err != nil {
			reportRegistryError(err)
			return
		}

		fmt.Printf("Mod uploaded successfully! (ID: %d)\n", modID)
	},
}

// shareMod copies the file into shared storage and creates the listing.
// The registry only records the durable path, so a listing that fails
// validation must not leave the copy behind.
func shareMod(reg *registry.Registry, sharedModsDir, srcPath string, params registry.UploadModParams) (uint, error) {
	storedPath, err := registry.StoreModFile(sharedModsDir, params.AuthorID, srcPath)
	if err != nil {
		logger.Log.Errorw("Failed to store mod file", zap.Error(err))
		return 0, fmt.Errorf("could not copy the mod into the library: %w", err)
	}

	params.FilePath = storedPath
	modID, err := reg.UploadMod(params)
	if err != nil {
		if rmErr := os.Remove(storedPath); rmErr != nil {
			logger.Log.Warnw("Failed to remove stored copy after rejected upload",
				zap.String("path", storedPath), zap.Error(rmErr))
		}
		return 0, err
	}
	return modID, nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().String("as", "", "Username or email to upload as")
	uploadCmd.Flags().String("password", "", "Password for the account")
	uploadCmd.Flags().String("title", "", "Mod title")
	uploadCmd.Flags().String("description", "", "Mod description")
	uploadCmd.Flags().String("game", "", "Game the mod is compatible with")
	uploadCmd.Flags().String("mod-version", "1.0", "Mod version string")
	uploadCmd.Flags().String("tags", "", "Comma separated tags")
	uploadCmd.Flags().Bool("private", false, "Keep the listing out of public browsing")
}
