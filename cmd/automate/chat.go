package main

import (
	"github.com/aretw0/automate/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, debug := commonFlags(cmd)
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunChat(ctx, cli.ChatOptions{
			ConfigPath: configPath,
			Debug:      debug,
			NoBanner:   noBanner,
			In:         cmd.InOrStdin(),
			Out:        cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
	rootCmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
}
