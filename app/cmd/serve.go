package cmd

import (
	"context"
	"log/slog"

	"quizbot/app/client/httpapi"
	"quizbot/app/client/telegram"
	"quizbot/app/client/twitch"
	"quizbot/app/client/twitch_irc"
	"quizbot/app/client/vk"
	"quizbot/app/config"
	"quizbot/app/service/engine"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot on all enabled channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			di, appCtx, cancel, err := bootstrap(flagConfig)
			if err != nil {
				return err
			}
			defer shutdown(di)
			defer cancel()

			return serve(appCtx, di)
		},
	}
}

func serve(ctx context.Context, di *do.Injector) error {
	cfg := do.MustInvoke[*config.Config](di)

	engineSvc, err := do.Invoke[*engine.Service](di)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Telegram.Enabled {
		client, err := do.Invoke[*telegram.Client](di)
		if err != nil {
			return err
		}
		engineSvc.Register(client)
	}

	if cfg.VK.Enabled {
		client, err := do.Invoke[*vk.Client](di)
		if err != nil {
			return err
		}
		engineSvc.Register(client)
	}

	if cfg.Twitch.Enabled {
		apiClient, err := do.Invoke[*twitch.Client](di)
		if err != nil {
			return err
		}
		ircClient, err := do.Invoke[*twitch_irc.Client](di)
		if err != nil {
			return err
		}
		engineSvc.Register(ircClient)

		g.Go(func() error {
			apiClient.RunRefreshLoop(gctx)
			return nil
		})
		g.Go(func() error {
			ircClient.RunRefreshLoop(gctx)
			return nil
		})
	}

	if cfg.HTTP.Enabled {
		server, err := do.Invoke[*httpapi.Server](di)
		if err != nil {
			return err
		}
		g.Go(func() error {
			engine.Supervise(gctx, "http", cfg.Engine.RetryTimeout, server.Run)
			return nil
		})
	}

	g.Go(func() error {
		if !cfg.Telegram.Enabled && !cfg.VK.Enabled && !cfg.Twitch.Enabled {
			<-gctx.Done()
			return nil
		}
		return engineSvc.Run(gctx)
	})

	slog.Info("Service started")

	return g.Wait()
}
