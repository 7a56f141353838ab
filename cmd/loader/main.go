package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/austerelabs/stockfinder/internal/config"
	"github.com/austerelabs/stockfinder/internal/database"
	"github.com/austerelabs/stockfinder/internal/kafka"
	"github.com/austerelabs/stockfinder/internal/loader"
	"github.com/austerelabs/stockfinder/internal/provider"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	migrationsPath := flag.String("migrations", "", "run migrations from this directory before loading")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *migrationsPath != "" {
		if err := db.RunMigrations(*migrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	var publisher loader.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	}

	l := loader.New(db, provider.NewClient(cfg.Provider), publisher)

	report, err := l.Run(context.Background())
	if err != nil {
		log.Printf("Loader run failed: %v", err)
		os.Exit(1)
	}

	for symbol, ferr := range report.Failed {
		log.Printf("Symbol %s failed: %v", symbol, ferr)
	}
	log.Printf("Loader run complete: %d symbols, %d staged, %d merged, %d failed",
		report.Symbols, report.Staged, report.Merged, len(report.Failed))
}
