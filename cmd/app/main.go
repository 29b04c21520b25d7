package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rifasolidaria/rifa/config"
	"github.com/rifasolidaria/rifa/internal/bootstrap"
	"github.com/rifasolidaria/rifa/internal/cache"
	"github.com/rifasolidaria/rifa/internal/kafka"
	"github.com/rifasolidaria/rifa/internal/repository"
	"github.com/rifasolidaria/rifa/internal/service/purchase"
	"github.com/rifasolidaria/rifa/internal/service/tickets"
	"github.com/rifasolidaria/rifa/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	ticketRepo := repository.NewTicketRepository(pool)
	if err := ticketRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Raffle.GridCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	proofStore, err := storage.NewProofStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("connect object storage: %v", err)
	}
	if err := proofStore.EnsureBucket(ctx); err != nil {
		// Placeholder storage credentials land here. Uploads will fail until
		// real ones are configured, the rest of the app still serves.
		log.Printf("ensure bucket: %v", err)
	}

	ticketService := tickets.NewTicketService(ticketRepo, redisCache, cfg.Raffle.TotalNumbers, cfg.Raffle.NumbersPerPage)
	purchaseService := purchase.NewPurchaseService(
		ticketRepo,
		redisCache,
		producer,
		proofStore,
		cfg.Kafka.PurchaseTopic,
		cfg.Raffle.TotalNumbers,
		cfg.Raffle.PriceCents,
		time.Duration(cfg.Raffle.HoldTTLMinutes)*time.Minute,
		purchase.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, ticketService, purchaseService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
