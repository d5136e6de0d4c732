package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-outbox/internal/client"
	"github.com/MKhiriev/go-outbox/internal/config"
	"github.com/MKhiriev/go-outbox/internal/logger"
	"github.com/MKhiriev/go-outbox/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("go-outbox").Fatal().Err(err).Msg("error getting configs")
	}
	cfg.App.Build = models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	log, closeLog := logger.NewClientLogger("go-outbox", cfg.Log.Path)
	defer closeLog()

	log.Debug().Any("config", cfg).Msg("received configs")

	app, err := client.NewApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init outbox agent error")
	}

	if err = app.Run(); err != nil {
		log.Error().Err(err).Msg("outbox agent stopped with error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
