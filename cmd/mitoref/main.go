package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"mitoref/internal/config"
	"mitoref/internal/etl"
	"mitoref/internal/metrics"
	"mitoref/internal/metrics/prompush"

	// register all backends with the storage factory; the config picks
	// which one a run actually uses.
	_ "mitoref/internal/storage/all"
)

// main is the entry point for the mitoref binary. It loads the dataset
// config, optionally initializes a metrics backend, and executes the
// pipeline run.
func main() {
	var (
		cfgPath           string
		force             bool
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/datasets/sample.json", "dataset config JSON path")
	flag.BoolVar(&force, "f", false, "overwrite an existing output table")
	flag.BoolVar(&force, "force-write", false, "overwrite an existing output table")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	var p config.Pipeline
	err = json.NewDecoder(f).Decode(&p)
	f.Close()
	if err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid: %v", cfgPath)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		return
	}

	runID := uuid.NewString()
	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, p.Job, runID, *verbose)

	logger := log.Default()
	if !*verbose {
		logger = log.New(io.Discard, "", 0)
	}

	ctx := context.Background()
	start := time.Now()

	sum, err := etl.Run(ctx, p, etl.Options{
		Force:  force,
		RunID:  runID,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("wrote %d rows to %s (%d parsed, %d filtered out) in %s",
		sum.Written, sum.Table, sum.Parsed, sum.FilteredOut,
		time.Since(start).Truncate(time.Millisecond))
}

// setupMetrics installs a metrics backend chosen by flag, then env, then the
// nop default.
func setupMetrics(backendName, gwURL, job, runID string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		if job == "" {
			job = "mitoref"
		}
		b, err := prompush.NewBackend(job, gwURL, runID)
		if err != nil {
			log.Printf("metrics: init pushgateway backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: url=%v backend=%v job=%v run=%v", gwURL, backendName, job, runID)
		}
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
