package main

import (
	"github.com/wfunc/crossroads/config"
	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/monitor"
	"github.com/wfunc/crossroads/persistence"
	"github.com/wfunc/crossroads/server"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// Fall back to a development logger so the failure is visible.
		logger.Init(true)
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Server.Development)

	// Match records go to PostgreSQL when configured, otherwise to the
	// in-memory store. In-flight games are never persisted either way.
	var db persistence.Database
	if cfg.Database.Enabled {
		gormDB, err := persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")
		db = gormDB
	} else {
		logger.Log.Info("Database disabled; keeping match records in memory.")
		db = persistence.NewMemory()
	}
	defer db.Close()

	mon := monitor.NewMonitor("crossroads")
	mon.StartServer(cfg.Server.MetricsAddress)

	gameServer := server.NewGameServer(cfg, db, mon)

	logger.Log.Infof("Starting crossroads server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
