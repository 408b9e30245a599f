// Command underwrite serves credit decisions from a trained model
// bundle over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/ahrav/go-underwrite/infrastructure/explain"
	"github.com/ahrav/go-underwrite/infrastructure/httpapi"
	"github.com/ahrav/go-underwrite/infrastructure/middleware"
	"github.com/ahrav/go-underwrite/infrastructure/model"
	"github.com/ahrav/go-underwrite/infrastructure/pipeline"
	"github.com/ahrav/go-underwrite/internal/application"
	"github.com/ahrav/go-underwrite/internal/logging"
	"github.com/ahrav/go-underwrite/internal/metrics"
	"github.com/ahrav/go-underwrite/internal/ports"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "underwrite",
		Usage:   "credit decision service over a trained model bundle",
		Version: version,
		Commands: []*cli.Command{
			serveCommand(),
			checkCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "underwrite: %v\n", err)
		os.Exit(1)
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the service config YAML",
		Value:   "config.yaml",
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "load the bundle and serve predictions over HTTP",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address, overrides the config value",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := application.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			if addr := cmd.String("addr"); addr != "" {
				cfg.Server.Addr = addr
			}

			logger := logging.New(cfg.Logging.Level)
			slog.SetDefault(logger)

			server, bundle, err := buildServer(cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("bundle loaded",
				"model", bundle.Model.Name,
				"model_version", bundle.Model.Version,
				"features", bundle.Manifest.Count(),
				"explain_available", bundle.ExplainAvailable(),
			)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx)
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "validate the config and bundle without serving",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := application.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			loader, err := application.NewBundleLoader()
			if err != nil {
				return err
			}
			bundle, err := loader.LoadFromFile(cfg.BundlePath)
			if err != nil {
				return fmt.Errorf("load bundle: %w", err)
			}

			fmt.Printf("config OK: %s\n", cmd.String("config"))
			fmt.Printf("bundle OK: %s\n", cfg.BundlePath)
			fmt.Printf("- model: %s %s\n", bundle.Model.Name, bundle.Model.Version)
			fmt.Printf("- raw fields: %d\n", bundle.Schema.Len())
			fmt.Printf("- features: %d\n", bundle.Manifest.Count())
			fmt.Printf("- calibrated: %t\n", bundle.Calibrated())
			fmt.Printf("- explainable: %t\n", bundle.ExplainAvailable())
			return nil
		},
	}
}

// buildServer assembles the full serving stack from a validated config:
// bundle, pipeline, model, explanation cache, metrics, and HTTP server.
func buildServer(cfg application.Config, logger *slog.Logger) (*httpapi.Server, *application.Bundle, error) {
	loader, err := application.NewBundleLoader()
	if err != nil {
		return nil, nil, err
	}
	bundle, err := loader.LoadFromFile(cfg.BundlePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load bundle: %w", err)
	}

	builder, err := pipeline.NewOneHotBuilder(bundle.Features)
	if err != nil {
		return nil, nil, err
	}

	scorer, err := model.NewLogisticModel(
		bundle.Model.Name,
		bundle.Model.Version,
		bundle.Model.Coefficients,
		bundle.Model.Intercept,
		bundle.Manifest,
	)
	if err != nil {
		return nil, nil, err
	}
	var scoring ports.Model = scorer
	if !bundle.Calibrated() {
		// Uncalibrated probabilities are misleading; serve labels only
		// and let the decision engine map absent probabilities to
		// UNKNOWN.
		scoring = model.ClassOnly(scorer)
	}

	var cache *application.ExplanationCache
	if bundle.ExplainAvailable() {
		baseline := bundle.Explainer.Baseline
		coefficients := bundle.Model.Coefficients
		manifest := bundle.Manifest
		factory := func(ctx context.Context) (ports.Explainer, error) {
			return explain.NewLinearExplainer(coefficients, baseline, manifest)
		}
		cache, err = application.NewExplanationCache(factory, cfg.Explain.CacheCapacity)
		if err != nil {
			return nil, nil, err
		}
	}

	collector := middleware.NewPrometheusMetrics(nil)
	observer := middleware.NewOTelPipelineObserver(collector)
	aggregator := metrics.NewAggregator()

	service, err := application.NewScoringService(application.ScoringDeps{
		Schema:      bundle.Schema,
		Manifest:    bundle.Manifest,
		Thresholds:  bundle.Thresholds,
		Cleaner:     pipeline.NewSchemaCleaner(bundle.Schema),
		Builder:     builder,
		Model:       scoring,
		Aggregator:  aggregator,
		Explainer:   cache,
		ExplainTopK: cfg.Explain.TopK,
		Observer:    observer,
		Collector:   collector,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}

	server, err := httpapi.NewServer(cfg.Server, httpapi.Deps{
		Service:    service,
		Aggregator: aggregator,
		Collector:  collector,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return server, bundle, nil
}
