// Package main provides the library assistant webhook server entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/app"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/buildinfo"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/config"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/sentry"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	release := cfg.SentryRelease
	if release == "" {
		release = buildinfo.Release()
	}
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     release,
		ServerName:  cfg.ServerName,
		SampleRate:  cfg.SentrySampleRate,
		Debug:       cfg.LogLevel == "debug",
	}); err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}

	application, err := app.Initialize(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}
	return application.Run()
}
