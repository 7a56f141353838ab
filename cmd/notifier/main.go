package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/austerelabs/stockfinder/internal/alert"
	"github.com/austerelabs/stockfinder/internal/cache"
	"github.com/austerelabs/stockfinder/internal/config"
	"github.com/austerelabs/stockfinder/internal/database"
	"github.com/austerelabs/stockfinder/internal/kafka"
	"github.com/austerelabs/stockfinder/internal/notify"
	"github.com/austerelabs/stockfinder/internal/provider"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	once := flag.Bool("once", false, "run a single tick and exit")
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

	watchSource := alert.WatchSource(db)
	if cfg.Notifier.WatchFile != "" {
		seeded, err := config.LoadWatchFile(cfg.Notifier.WatchFile)
		if err != nil {
			log.Fatalf("Failed to load watch file: %v", err)
		}
		watchSource = alert.FallbackSource{
			Primary:  db,
			Fallback: alert.StaticSource(seeded),
		}
	}

	var priceCache alert.PriceCache
	if cfg.Redis.Enabled {
		c := cache.New(cfg.Redis)
		defer c.Close()
		priceCache = c
	}

	var publisher alert.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
	}

	notifier := alert.New(
		watchSource,
		db,
		provider.NewClient(cfg.Provider),
		notify.NewClient(cfg.Ntfy),
		priceCache,
		publisher,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := notifier.Tick(ctx); err != nil {
			log.Printf("Error on notifier tick: %v", err)
		}
		return
	}

	interval := time.Duration(cfg.Notifier.IntervalSeconds) * time.Second
	log.Printf("Starting notifier, polling every %s", interval)
	notifier.Run(ctx, interval)
}
