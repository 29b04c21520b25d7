package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rifasolidaria/rifa/config"
	"github.com/rifasolidaria/rifa/internal/cache"
	"github.com/rifasolidaria/rifa/internal/kafka"
	"github.com/rifasolidaria/rifa/internal/notify"
	"github.com/rifasolidaria/rifa/internal/repository"
	"github.com/rifasolidaria/rifa/internal/service/purchase"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Raffle.GridCacheTTL)*time.Second)

	ticketRepo := repository.NewTicketRepository(pool)
	purchaseService := purchase.NewPurchaseService(
		ticketRepo,
		redisCache,
		producer,
		nil,
		cfg.Kafka.PurchaseTopic,
		cfg.Raffle.TotalNumbers,
		cfg.Raffle.PriceCents,
		time.Duration(cfg.Raffle.HoldTTLMinutes)*time.Minute,
		purchase.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := notify.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.TicketEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return sender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := purchaseService.ExpireStaleReservations(ctx)
			if err != nil {
				log.Printf("expire reservations error: %v", err)
				continue
			}
			if len(expired) > 0 {
				log.Printf("released %d expired reservations", len(expired))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
