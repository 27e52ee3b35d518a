package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/internal/metrics"
	"salesetl/internal/metrics/datadog"
	"salesetl/internal/metrics/prompush"
	"salesetl/internal/pipeline"
)

// main is the entry point for the pipeline binary. It loads the config,
// optionally initializes a metrics backend, and executes the batch run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		stopOnFailureFlg  bool
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "config YAML path (default: config.yaml in . or ./configs)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&stopOnFailureFlg, "stop-on-failure", true, "halt the run on the first failed stage")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	// Flags explicitly set on the command line override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "metrics-backend":
			cfg.Metrics.Backend = metricsBackendFlg
		case "pushgateway-url":
			cfg.Metrics.PushgatewayURL = pushGatewayURLFlg
		case "stop-on-failure":
			cfg.Pipeline.StopOnFailure = stopOnFailureFlg
		}
	})
	if *verbose {
		cfg.Log.Level = "debug"
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	// Decide metrics backend: flag → config → disabled.
	switch cfg.Metrics.Backend {
	case "pushgateway":
		gwURL := cfg.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(cfg.Job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, cfg.Metrics.Backend, cfg.Job)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.StatsdAddr,
			GlobalTags: []string{"service:" + cfg.Job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", cfg.Metrics.Backend)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", cfg.Metrics.Backend)
	}

	ctx := context.Background()
	start := time.Now()

	runner := pipeline.New(cfg, logger)
	if err := runner.EnsureDirs(); err != nil {
		logger.Error("creating layer directories failed", zap.Error(err))
		os.Exit(1)
	}

	runErr := runner.Run(ctx)

	// The report is written even for failed runs; it records what happened.
	if err := runner.WriteReport(); err != nil {
		logger.Error("writing report failed", zap.Error(err))
	}

	if runErr != nil {
		logger.Error("pipeline failed", zap.Error(runErr))
		os.Exit(1)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
