package cmd

import (
	"fmt"

	"quizbot/app/config"
	"quizbot/app/service/corpus"

	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Parse quiz files and load them into the quiz bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			di, appCtx, cancel, err := bootstrap(flagConfig)
			if err != nil {
				return err
			}
			defer shutdown(di)
			defer cancel()

			if dir == "" {
				dir = do.MustInvoke[*config.Config](di).Corpus.Dir
			}

			loader, err := do.Invoke[*corpus.Loader](di)
			if err != nil {
				return err
			}

			stats, err := loader.LoadDir(appCtx, dir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d questions from %d files (%d failed, %d malformed) in %s\n",
				stats.Pairs, stats.Files, stats.Failed, stats.Malformed, stats.Elapsed)

			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory with quiz files (defaults to corpus.dir)")

	return cmd
}
