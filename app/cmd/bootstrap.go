package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quizbot/app/client/httpapi"
	"quizbot/app/client/mcp"
	"quizbot/app/client/telegram"
	"quizbot/app/client/twitch"
	"quizbot/app/client/twitch_irc"
	"quizbot/app/client/vk"
	"quizbot/app/config"
	"quizbot/app/service/corpus"
	"quizbot/app/service/engine"
	"quizbot/app/service/queue"
	"quizbot/app/service/quiz"
	"quizbot/app/service/storage"
	"quizbot/app/util/mylog"

	"github.com/samber/do"
)

// bootstrap loads config, sets up logging and registers every provider.
// Providers are lazy, so disabled channels never connect.
func bootstrap(configPath string) (*do.Injector, context.Context, context.CancelFunc, error) {
	mylog.Preinit()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	if err = mylog.Init(cfg); err != nil {
		return nil, nil, nil, err
	}

	appCtx, cancel := context.WithCancel(context.Background())

	di := do.New()
	do.ProvideValue(di, appCtx)
	do.ProvideValue(di, cfg)

	do.Provide(di, storage.New)
	do.Provide(di, corpus.New)
	do.Provide(di, quiz.New)
	do.Provide(di, queue.New)
	do.Provide(di, engine.New)
	do.Provide(di, telegram.NewClient)
	do.Provide(di, vk.NewClient)
	do.Provide(di, twitch.NewClient)
	do.Provide(di, twitch_irc.NewClient)
	do.Provide(di, httpapi.New)
	do.Provide(di, mcp.New)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigint:
			slog.Info("Shutting down...")
			cancel()
		case <-appCtx.Done():
		}
	}()

	return di, appCtx, cancel, nil
}

func shutdown(di *do.Injector) {
	slog.Info("Waiting for services to finish...")

	if err := di.Shutdown(); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
