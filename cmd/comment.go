package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// commentCmd represents the comment command
var commentCmd = &cobra.Command{
	Use:   "comment [mod-id] [text]",
	Short: "Comment on a shared mod, optionally with a rating",
	Long: `Leave a comment on a mod in the library. Add --rating 1-5 to rate
the mod at the same time; the listing's average updates immediately.
Example: wiiware-modder comment 3 "Works great on Brawl" --rating 5 --as alice --password secret1`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, reg := bootstrap(".")

		modID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: %q is not a mod ID\n", args[0])
			return
		}

		identifier, _ := cmd.Flags().GetString("as")
		password, _ := cmd.Flags().GetString("password")
		user := mustAuthenticate(reg, identifier, password)

		var rating *int
		if cmd.Flags().Changed("rating") {
			value, _ := cmd.Flags().GetInt("rating")
			rating = &value
		}

		if err := reg.AddComment(uint(modID), user.ID, args[1], rating); err != nil {
			reportRegistryError(err)
			return
		}

		fmt.Println("Comment added.")
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)

	commentCmd.Flags().String("as", "", "Username or email to comment as")
	commentCmd.Flags().String("password", "", "Password for the account")
	commentCmd.Flags().Int("rating", 0, "Rating from 1 to 5")
}
