package main

import (
	"github.com/aretw0/automate/internal/cli"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions [query]",
	Short: "List the registered actions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := commonFlags(cmd)
		jsonMode, _ := cmd.Flags().GetBool("json")

		var query string
		if len(args) > 0 {
			query = args[0]
		}
		return cli.ListActions(cmd.Context(), cli.ActionsOptions{
			ConfigPath: configPath,
			Query:      query,
			JSON:       jsonMode,
			Out:        cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.Flags().Bool("json", false, "Print the action metadata as JSON")
}
