package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/poll-search/api"
	"github.com/gcbaptista/poll-search/config"
	"github.com/gcbaptista/poll-search/internal/obs"
	"github.com/gcbaptista/poll-search/internal/polls"
	"github.com/gcbaptista/poll-search/store"
)

func main() {
	var (
		help   = flag.Bool("help", false, "Show help message")
		port   = flag.String("port", "", "Port to run the server on (overrides PORT)")
		dbPath = flag.String("db", "", "Path to the SQLite database (overrides DB_PATH)")
	)

	flag.Parse()

	if *help {
		fmt.Printf("Poll Search Service - poll CRUD with trie autocomplete and fuzzy title search\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("main")

	pollStore, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open poll store")
	}
	defer func() { _ = pollStore.Close() }()

	service, err := polls.NewService(pollStore, polls.Settings{
		AutocompleteLimit: cfg.AutocompleteLimit,
		FuzzyMaxDistance:  cfg.FuzzyMaxDistance,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create poll service")
	}

	// Build the title index from the store before serving requests.
	if err := service.Initialize(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("failed to build poll title index")
	}

	router := gin.Default()
	api.SetupRoutes(router, service)

	logger.Info().Str("port", cfg.Port).Str("db", cfg.DBPath).Msg("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
