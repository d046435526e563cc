package main

import (
	"fmt"

	"github.com/aretw0/automate"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of automate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "automate version %s\n", automate.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
