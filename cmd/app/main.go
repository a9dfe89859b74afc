package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/tourdesk/config"
	"github.com/Domenick1991/tourdesk/internal/auth"
	"github.com/Domenick1991/tourdesk/internal/bootstrap"
	"github.com/Domenick1991/tourdesk/internal/cache"
	"github.com/Domenick1991/tourdesk/internal/kafka"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/ratelimit"
	"github.com/Domenick1991/tourdesk/internal/repository"
	"github.com/Domenick1991/tourdesk/internal/service/inquiry"
	"github.com/Domenick1991/tourdesk/internal/service/stats"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
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

	log := logger.New(cfg.App.Env)
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	usedDefaults, err := cfg.ApplyCredentialPolicy()
	if err != nil {
		log.Fatal().Err(err).Msg("admin credentials")
	}
	if usedDefaults {
		log.Warn().Str("user", cfg.Admin.User).Msg("ADMIN CREDENTIALS ARE THE INSECURE DEFAULTS; set ADMIN_USER and ADMIN_PASS before exposing this server")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repository.InquiryRepository
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()
		store = repository.NewPGInquiryRepository(pool, cfg.Storage.DocumentName, log)
	default:
		store = repository.NewFileInquiryRepository(cfg.Storage.Path, log)
	}
	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("init inquiry store")
	}

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case "redis":
		client := cache.NewRedisClient(cfg.Redis)
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.Limit, window)
	default:
		memory := ratelimit.NewMemoryLimiter(cfg.RateLimit.Limit, window)
		go memory.Run(ctx, time.Duration(cfg.RateLimit.SweepIntervalSeconds)*time.Second)
		limiter = memory
	}

	opts := []inquiry.InquiryServiceOption{inquiry.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.Warn().Err(err).Msg("kafka unreachable, inquiry events may be dropped")
		}
		opts = append(opts, inquiry.WithProducer(producer, cfg.Kafka.InquiryTopic))
	}

	inquiryService := inquiry.NewInquiryService(store, opts...)
	statsService := stats.NewStatsService(store, stats.WithLogger(log))

	router := bootstrap.NewRouter(cfg, bootstrap.Dependencies{
		Inquiries:     inquiryService,
		Stats:         statsService,
		Limiter:       limiter,
		Authenticator: auth.NewBasicAuthenticator(cfg.Admin.User, cfg.Admin.Password),
		Log:           log,
	})

	if err := bootstrap.Run(ctx, cfg, router, log); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
