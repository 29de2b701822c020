// Package main is the entry point for the traktor2rekordbox API server
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/james-see/traktor2rekordbox/pkg/api"
	"github.com/james-see/traktor2rekordbox/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	logger.Info("starting traktor2rekordbox API server", "port", cfg.Server.Port)
	logger.Info("swagger docs available", "url", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port))

	if err := api.StartServer(cfg.Server.Port, cfg.ConverterOptions(logger)); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
