package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register [username] [email] [password]",
	Short: "Create a mod library account",
	Long: `Create an account in the local mod sharing library.
Example: wiiware-modder register alice alice@example.com secret1`,
	Args: cobra.ExactArgs(3),
	Run: func(_ *cobra.Command, args []string) {
		_, reg := bootstrap(".")

		accountID, err := reg.CreateAccount(args[0], args[1], args[2])
		if err != nil {
			reportRegistryError(err)
			return
		}

		fmt.Printf("Account created for %s (ID: %d)\n", args[0], accountID)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
