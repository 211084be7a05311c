package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	_ "github.com/lib/pq"

	"costume-rental-backend/internal/config"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/migrations"
	"costume-rental-backend/internal/seed"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	seedPath := flag.String("data", "config/seed.dev.yaml", "Path to seed data file")
	migrate := flag.Bool("migrate", true, "Apply database migrations before seeding")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	data, err := seed.LoadFile(*seedPath)
	if err != nil {
		log.Fatalf("Failed to read seed data: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Connected to database", "host", cfg.Database.Host, "database", cfg.Database.Database)

	if *migrate {
		if err := migrations.Up(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	res, err := seed.Apply(context.Background(), db, data)
	if err != nil {
		log.Fatalf("Failed to populate data: %v", err)
	}
	logger.Info("Test data successfully populated", "items", res.Items, "customers", res.Customers, "users", res.Users)
}
