package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/Aryan192003/Chatify-backend/internal/auth"
	"github.com/Aryan192003/Chatify-backend/internal/cache"
	"github.com/Aryan192003/Chatify-backend/internal/config"
	"github.com/Aryan192003/Chatify-backend/internal/events"
	"github.com/Aryan192003/Chatify-backend/internal/handlers"
	"github.com/Aryan192003/Chatify-backend/internal/logger"
	"github.com/Aryan192003/Chatify-backend/internal/middleware"
	"github.com/Aryan192003/Chatify-backend/internal/repository"
	"github.com/Aryan192003/Chatify-backend/internal/routes"
	"github.com/Aryan192003/Chatify-backend/internal/service"
	"github.com/Aryan192003/Chatify-backend/internal/storage"
	"github.com/Aryan192003/Chatify-backend/internal/ws"
)

func main() {
	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zlog, err := logger.New(logger.Config{Development: cfg.Server.Development})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	db, err := repository.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		zlog.Fatalw("mongo connect", "err", err)
	}
	defer func() { _ = db.Client().Disconnect(ctx) }()

	userRepo := repository.NewMongoUserRepo(db)
	chatRepo := repository.NewMongoChatRepo(db)
	messageRepo := repository.NewMongoMessageRepo(db)
	requestRepo := repository.NewMongoRequestRepo(db)

	store, err := storage.NewS3Store(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.UploadTimeout)
	if err != nil {
		zlog.Fatalw("s3 init", "err", err)
	}

	var mirror ws.Mirror
	if cfg.Redis.Addr != "" {
		redisCli, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			zlog.Fatalw("redis connect", "err", err)
		}
		defer func() { _ = redisCli.Close() }()
		mirror = redisCli
	}

	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MessageTopic, cfg.Kafka.ChatTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	registry := ws.NewRegistry()
	tracker := ws.NewTracker(mirror, zlog)
	router := ws.NewRouter(registry, zlog)

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.TokenTTL)
	messageSvc := service.NewMessageService(chatRepo, messageRepo, userRepo, store, router, publisher, zlog)
	chatSvc := service.NewChatService(chatRepo, userRepo, router, publisher, zlog)
	userSvc := service.NewUserService(userRepo, chatRepo, requestRepo, store, router, tokens, zlog)

	userH := handlers.NewUserHandler(userSvc, cfg.TokenTTL, cfg.JWT.CookieSecure)
	chatH := handlers.NewChatHandler(chatSvc, messageSvc)
	wsH := ws.NewHandler(registry, tracker, router, messageSvc, zlog)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    32 * 1024 * 1024,
	})
	routes.Register(app, userH, chatH, wsH, middleware.Authenticate(tokens))

	errs := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		zlog.Infow("starting chat server", "addr", addr)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		zlog.Fatalw("server error", "err", e)
	case s := <-sig:
		zlog.Infow("signal received", "signal", s.String())
	}

	if err := app.Shutdown(); err != nil {
		zlog.Warnw("fiber shutdown", "err", err)
	}
	zlog.Infow("shutting down")
}
