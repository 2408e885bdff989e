package main

import (
	"github.com/joho/godotenv"

	"github.com/wfunc/findthespy/config"
	"github.com/wfunc/findthespy/logger"
	"github.com/wfunc/findthespy/persistence"
	"github.com/wfunc/findthespy/server"
	"github.com/wfunc/findthespy/words"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration (.env first, then config.yaml + env)
	_ = godotenv.Load()
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	var store persistence.Store
	pg := cfg.Database.Postgres
	switch cfg.Database.Driver {
	case "postgres":
		store, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		store, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	logger.Log.Info("Database connection successful.")

	// Word supply with local fallback
	supplier := words.NewHTTPSupplier(cfg.Words.APIURL, cfg.Words.Timeout)

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, store, supplier)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
