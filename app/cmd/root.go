package cmd

import (
	"fmt"
	"os"

	"quizbot/app/config"

	"github.com/spf13/cobra"
)

var flagConfig string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "quizbot",
		Short:         "Text quiz bot for Telegram, VK and Twitch chats",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultPath, "path to config file")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
