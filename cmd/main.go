package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/piratarr/piratarr/internal/config"
	"github.com/piratarr/piratarr/internal/httpapi"
	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/library"
	"github.com/piratarr/piratarr/internal/persistence"
	"github.com/piratarr/piratarr/internal/pirate"
	"github.com/piratarr/piratarr/internal/provider"
	"github.com/piratarr/piratarr/internal/service"
	"github.com/piratarr/piratarr/pkg/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	level := log.ParseLevel(cfg.System.LogLevel)
	if cfg.System.LogFile != "" {
		fileLogger, err := log.NewFileLogger(cfg.System.LogFile, level)
		if err != nil {
			log.Fatal("Failed to open log file: %v", err)
		}
		defer fileLogger.Close()
		log.UseLogger(fileLogger.Logger)
	} else {
		log.InitLogger(level)
	}

	store, err := persistence.NewSQLiteStore(cfg.System.DBPath())
	if err != nil {
		log.Fatal("Failed to open database: %v", err)
	}
	defer store.Close()

	dict := pirate.DefaultDictionary()
	if cfg.Translate.DictionaryPath != "" {
		dict, err = pirate.LoadDictionary(cfg.Translate.DictionaryPath)
		if err != nil {
			log.Fatal("Failed to load dictionary %s: %v", cfg.Translate.DictionaryPath, err)
		}
	}

	var transformOpts []pirate.TransformOption
	if cfg.Translate.ExclamationChance > 0 {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		transformOpts = append(transformOpts, pirate.WithExclamations(rng, cfg.Translate.ExclamationChance))
	}
	transformer := pirate.NewTransformer(dict, transformOpts...)
	translator := service.NewTranslator(transformer)

	queue := jobs.NewQueue(2, store)
	queue.Start(translator.Executor())
	defer queue.Stop()

	providers := make([]provider.MediaProvider, 0, 2)
	if cfg.Providers.Radarr.Enabled() {
		providers = append(providers, provider.NewRadarrClient(cfg.Providers.Radarr.BaseURL, cfg.Providers.Radarr.APIKey))
	}
	if cfg.Providers.Sonarr.Enabled() {
		providers = append(providers, provider.NewSonarrClient(cfg.Providers.Sonarr.BaseURL, cfg.Providers.Sonarr.APIKey))
	}
	if len(providers) == 0 {
		log.Warn("No providers configured; only manual translations will work")
	}

	scanner := library.NewScanner(providers, store, queue, cfg.Scan.PathMappings, cfg.Scan.AutoTranslate)

	scheduler := cron.New()
	if len(providers) > 0 {
		if err := scanner.Schedule(scheduler, cfg.Scan.CronExpr()); err != nil {
			log.Fatal("Failed to schedule scans: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()

		if err := scanner.TriggerScan(); err != nil {
			log.Warn("Initial scan not started: %v", err)
		}
	}

	server := httpapi.NewServer(scanner, queue, translator, httpapi.WithMediaStore(store))

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", cfg.System.HTTPAddr)
		errCh <- server.ListenAndServe(cfg.System.HTTPAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received %s, shutting down", sig)
	case err := <-errCh:
		log.Error("HTTP server stopped: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down HTTP server cleanly: %v", err)
	}
}
