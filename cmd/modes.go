package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"ocrfix/internal/view"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List all page segmentation modes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		view.NewConsole(os.Stdin, os.Stdout).ShowModes()
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
