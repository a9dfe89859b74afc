package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tourdesk/config"
	"github.com/Domenick1991/tourdesk/internal/cache"
	"github.com/Domenick1991/tourdesk/internal/email"
	"github.com/Domenick1991/tourdesk/internal/kafka"
	"github.com/Domenick1991/tourdesk/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New("production").Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.App.Env).Component("worker")
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS must be set for the notifier worker")
	}
	if cfg.Notify.SalesEmail == "" {
		log.Fatal().Msg("SALES_EMAIL must be set for the notifier worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dedupe email.Deduper
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cache.NewRedisClient(cfg.Redis))
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, duplicate notifications possible")
		} else {
			dedupe = redisCache
		}
	}

	notifier := email.NewNotifier(email.NewSender(log), dedupe, cfg.Notify.SalesEmail, log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.InquiryTopic, log)
	defer consumer.Close()

	log.Info().Str("topic", cfg.Kafka.InquiryTopic).Str("group", cfg.Kafka.GroupID).Msg("notifier started")

	err = consumer.ConsumeInquiryEvents(ctx, func(ctx context.Context, event kafka.InquiryEvent) error {
		// The offset is already committed; a failed notification is logged
		// and skipped rather than stopping the consumer.
		if err := notifier.Handle(ctx, event); err != nil {
			log.Error().Err(err).Str("event_id", event.EventID).Msg("notification failed")
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("consumer stopped")
		return
	}
	log.Info().Msg("notifier stopped")
}
