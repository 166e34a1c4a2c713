package cmd

import (
	"quizbot/app/client/mcp"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the quiz as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			di, _, cancel, err := bootstrap(flagConfig)
			if err != nil {
				return err
			}
			defer shutdown(di)
			defer cancel()

			server, err := do.Invoke[*mcp.Server](di)
			if err != nil {
				return err
			}

			return server.Serve()
		},
	}
}
