package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"FundEye/internal/config"
	"FundEye/internal/failure"
	"FundEye/internal/logging"
	"FundEye/internal/notifier"
	"FundEye/internal/provider"
	"FundEye/internal/recorder"
	"FundEye/internal/refresh"
	"FundEye/internal/retry"
	"FundEye/internal/scheduler"
	"FundEye/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		l := logging.New(logging.Config{})
		l.Fatal().Err(err).Msg("load config")
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Msg("FundEye starting")

	// Persistence
	fundStore, err := store.NewJSONStore(cfg.Storage.FundFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init fund store")
	}

	// Cycle history
	var rec recorder.Recorder
	if cfg.Storage.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Providers
	valuations := provider.NewGuzhiFetcher(cfg.DataSource.ValuationBaseURL, cfg.Proxy)
	quotes := provider.NewQtQuoteFetcher(cfg.DataSource.QuoteBaseURL, cfg.Proxy)
	log.Info().Str("valuations", valuations.Name()).Str("quotes", quotes.Name()).Msg("data sources ready")

	// Retry policy shared by all provider calls; terminal failures are
	// mirrored into the recorder for post-mortem queries.
	history := failure.NewHistory(failure.DefaultHistoryCapacity)
	history.SetSink(func(state failure.ErrorState) {
		if err := rec.RecordError(&state); err != nil {
			log.Warn().Err(err).Msg("record error state failed")
		}
	})
	executor := retry.NewExecutor(retry.Config{
		MaxRetries:        cfg.Retry.MaxRetries,
		BaseDelay:         cfg.Retry.BaseDelay.Std(),
		MaxDelay:          cfg.Retry.MaxDelay.Std(),
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
	}, history, log)

	// Event sinks
	var sink notifier.Notifier = notifier.NewLogNotifier(log)
	if cfg.Telegram.BotToken != "" {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sink = notifier.NewMultiNotifier(sink, tn)
		log.Info().Msg("telegram notifications enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := refresh.NewOrchestrator(valuations, quotes, fundStore, executor, rec, cfg.Refresh.Concurrency, log)
	sched := scheduler.NewScheduler(ctx, scheduler.Config{
		Interval:   cfg.Refresh.Interval.Std(),
		MaxRetries: cfg.Refresh.MaxRetries,
		RetryDelay: cfg.Refresh.RetryDelay.Std(),
	}, orch, fundStore, sink, log)

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("start scheduler")
	}
	defer sched.Stop()

	// SIGUSR1 forces an ungated refresh; SIGINT/SIGTERM shut down.
	refreshCh := make(chan os.Signal, 1)
	signal.Notify(refreshCh, syscall.SIGUSR1)
	go func() {
		for range refreshCh {
			log.Info().Msg("manual refresh requested")
			sched.Refresh()
		}
	}()

	log.Info().Msg("FundEye is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("FundEye stopped")
}
