// Command scribed runs the scribe transcription relay.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxlab/scribe/config"
	"github.com/voxlab/scribe/convert"
	"github.com/voxlab/scribe/logger"
	"github.com/voxlab/scribe/observability"
	"github.com/voxlab/scribe/provider"
	"github.com/voxlab/scribe/relay"
	"github.com/voxlab/scribe/server"
	"github.com/voxlab/scribe/server/endpoint"
	"github.com/voxlab/scribe/transcription"
	"github.com/voxlab/scribe/transcription/openai"
	"github.com/voxlab/scribe/transcription/whisper"
	"github.com/voxlab/scribe/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Init(cfg.Logging)
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	log.Info("starting scribe", logger.Fields(
		"version", version.Short(),
		"environment", cfg.Environment,
		"provider", cfg.Transcription.Provider,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Telemetry.Enabled {
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: version.Short(),
			Environment:    cfg.Environment,
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
			SampleRate:     cfg.Telemetry.SampleRate,
		})
		if err != nil {
			log.Fatal("failed to init tracer", logger.Fields("error", err.Error()))
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()

		mp, err := observability.InitMeter(ctx, observability.MeterConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: version.Short(),
			Environment:    cfg.Environment,
			Endpoint:       cfg.Telemetry.Endpoint,
			Insecure:       cfg.Telemetry.Insecure,
		})
		if err != nil {
			log.Fatal("failed to init meter", logger.Fields("error", err.Error()))
		}
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err = observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			log.Fatal("failed to create metrics", logger.Fields("error", err.Error()))
		}
	}

	converter, err := convert.New(cfg.Convert)
	if err != nil {
		log.Fatal("failed to create converter", logger.Fields("error", err.Error()))
	}

	registry, err := buildProviders(cfg)
	if err != nil {
		log.Fatal("failed to build transcription providers", logger.Fields("error", err.Error()))
	}
	if _, ok := registry.Get(cfg.Transcription.Provider); !ok {
		log.Fatal("default provider not built", logger.Fields(
			logger.FieldProvider, cfg.Transcription.Provider,
			"available", registry.List(),
		))
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, healthChecker(registry, cfg.Transcription.Provider))

	handler := relay.NewHandler(registry, cfg.Transcription.Provider, converter, metrics)
	handler.RegisterRoutes(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		log.Fatal("failed to start server", logger.Fields("error", err.Error()))
	}

	<-ctx.Done()
	log.Info("shutdown signal received")
	if err := srv.Stop(context.Background()); err != nil {
		log.Error("shutdown error", logger.Fields("error", err.Error()))
		os.Exit(1)
	}
}

// buildProviders registers every backend factory and builds an instance
// of each from its section of the config.
func buildProviders(cfg *config.Config) (*provider.Registry[transcription.Provider], error) {
	registry := transcription.NewRegistry()
	registry.RegisterFactory(openai.ProviderName, openai.Factory())
	registry.RegisterFactory(whisper.ProviderName, whisper.Factory())

	settings := map[string]map[string]any{
		openai.ProviderName: {
			"api_key":  cfg.Transcription.OpenAI.APIKey,
			"base_url": cfg.Transcription.OpenAI.BaseURL,
			"model":    cfg.Transcription.OpenAI.Model,
			"language": cfg.Transcription.OpenAI.Language,
			"timeout":  cfg.Transcription.OpenAI.Timeout,
		},
		whisper.ProviderName: {
			"url":     cfg.Transcription.Whisper.URL,
			"model":   cfg.Transcription.Whisper.Model,
			"timeout": cfg.Transcription.Whisper.Timeout,
		},
	}
	for name, backendCfg := range settings {
		if err := registry.Build(name, backendCfg); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func healthChecker(registry *provider.Registry[transcription.Provider], defaultProvider string) endpoint.HealthChecker {
	return func(ctx context.Context) []endpoint.Check {
		check := endpoint.Check{Name: "transcription:" + defaultProvider, Status: endpoint.StatusHealthy}
		p, ok := registry.Get(defaultProvider)
		switch {
		case !ok:
			check.Status = endpoint.StatusUnhealthy
			check.Message = "provider not registered"
		case !p.IsAvailable(ctx):
			check.Status = endpoint.StatusDegraded
			check.Message = "provider not reachable"
		}
		return []endpoint.Check{check}
	}
}
