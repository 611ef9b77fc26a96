package cmd

import (
	"fmt"

	"wiiware-modder/ui"

	"github.com/spf13/cobra"
)

// myModsCmd represents the my-mods command
var myModsCmd = &cobra.Command{
	Use:   "my-mods",
	Short: "List your own uploads, including private ones",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		_, reg := bootstrap(".")

		identifier, _ := cmd.Flags().GetString("as")
		password, _ := cmd.Flags().GetString("password")
		user := mustAuthenticate(reg, identifier, password)

		mods, err := reg.ListModsByAuthor(user.ID)
		if err != nil {
			reportRegistryError(err)
			return
		}
		if len(mods) == 0 {
			fmt.Println("You have not uploaded any mods yet.")
			return
		}

		for _, mod := range mods {
			visibility := "public"
			if !mod.IsPublic {
				visibility = "private"
			}
			fmt.Printf("%4d  %-30s  v%-6s  %s  %d downloads  %s\n",
				mod.ID, mod.Title, mod.Version, visibility,
				mod.DownloadCount, ui.Stars(mod.Rating, mod.RatingCount))
		}
	},
}

func init() {
	rootCmd.AddCommand(myModsCmd)

	myModsCmd.Flags().String("as", "", "Username or email to list uploads for")
	myModsCmd.Flags().String("password", "", "Password for the account")
}
