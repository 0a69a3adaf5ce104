package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fotomagic/internal/adapter/repo"
	"fotomagic/internal/broadcast"
	"fotomagic/internal/generation"
	"fotomagic/internal/http/handlers"
	httpapi "fotomagic/internal/http/httpapi"
	"fotomagic/internal/infra"
	"fotomagic/internal/notify"
	"fotomagic/internal/payment"
	"fotomagic/internal/providers/unify"
	"fotomagic/internal/tasks"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store := repo.NewStore(dbpool)
	rates := repo.NewRateRepository(dbpool)

	unifyClient, err := unify.NewClient(unify.Options{
		Token:     cfg.UnifyToken,
		BaseURL:   cfg.UnifyBaseURL,
		UploadURL: cfg.UnifyUploadURL,
		Logger:    &logger,
		ImagePoll: cfg.ImagePoll,
		VideoPoll: cfg.VideoPoll,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}

	card := payment.NewYooKassaClient(payment.YooKassaOptions{
		ShopID:    cfg.YooKassaShopID,
		SecretKey: cfg.YooKassaSecret,
		BaseURL:   cfg.YooKassaBase,
	})
	crypto := payment.NewOxaClient(payment.OxaOptions{
		APIKey:  cfg.OxaAPIKey,
		BaseURL: cfg.OxaBase,
	})
	notifier := notify.NewTelegramClient(notify.TelegramOptions{
		Token:   cfg.TelegramToken,
		BaseURL: cfg.TelegramBaseURL,
	})

	registry := tasks.NewRegistry(logger)
	watcher := payment.NewWatcher(registry, payment.NewChecker(card, crypto), store, notifier, logger)
	broadcaster := broadcast.New(store, store, notifier, cfg.BroadcastPerSecond, logger)
	scheduler := broadcast.NewTimerScheduler()
	defer scheduler.Stop()

	app := &handlers.App{
		Generator: generation.New(unifyClient, logger),
		Motions:   unifyClient,
		Rates:     rates,
		Store:     store,
		Payments:  payment.NewLinks(card, crypto),
		Watcher:   watcher,
		Broadcast: broadcaster,
		Scheduler: scheduler,
		Logger:    logger,

		PaymentInterval: cfg.PaymentInterval,
		PaymentDeadline: cfg.PaymentDeadline,
	}

	router := httpapi.NewRouter(app, logger, cfg.RateLimitPerMin)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
