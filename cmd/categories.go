package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the mod categories",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		_, reg := bootstrap(".")

		categories, err := reg.ListCategories()
		if err != nil {
			reportRegistryError(err)
			return
		}

		for _, category := range categories {
			fmt.Printf("%4d  %-16s %s\n", category.ID, category.Name, category.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
