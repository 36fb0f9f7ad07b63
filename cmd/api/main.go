package main

import (
	"context"
	"log"
	"time"

	"journey-chat/config"
	"journey-chat/internal/events"
	"journey-chat/internal/handler"
	"journey-chat/internal/proxy"
	"journey-chat/internal/redis"
	"journey-chat/internal/repository"
	"journey-chat/internal/server"
	"journey-chat/internal/services"
	"journey-chat/internal/storage"
	"journey-chat/internal/websocket"
	"journey-chat/pkg/database"
	"journey-chat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthChecks := map[string]server.HealthCheck{}

	// Storage
	var (
		messages repository.MessageRepository
		users    repository.UserRepository
		journeys repository.JourneyRepository
	)
	switch cfg.StorageDriver {
	case "memory":
		demo := database.DemoData(database.DefaultSeedConfig(), time.Now().UTC())
		memMessages := repository.NewMemoryMessageRepository()
		for _, m := range demo.Messages {
			if err := memMessages.Create(ctx, m); err != nil {
				log.Fatalf("Failed to load demo messages: %v", err)
			}
		}
		messages = memMessages
		users = repository.NewMemoryUserRepository(demo.Users...)
		journeys = repository.NewMemoryJourneyRepository(demo.Journeys...)
		l.Infof("Using in-memory storage with %d demo users", len(demo.Users))
	default:
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := repository.InitSchema(ctx, pool); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
		messages = repository.NewMessageRepository(pool)
		users = repository.NewUserRepository(pool)
		journeys = repository.NewJourneyRepository(pool)
		healthChecks["postgres"] = func(ctx context.Context) error { return database.HealthCheck(ctx, pool) }
		l.Infof("Connected to Postgres")
	}

	// Redis: cache, rate limiting and optionally pub/sub and presence.
	// An unreachable Redis degrades the service instead of stopping it.
	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redis.Ping(ctx, redisClient); err != nil {
		l.Warnf("Redis unavailable, running degraded: %v", err)
	}
	healthChecks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, redisClient) }

	cacheStore := redis.NewCacheStore(redisClient, redis.NewBreaker(redis.DefaultBreakerConfig("redis-cache"), l.Logger))
	rateLimiter := redis.NewRateLimiter(redisClient, redis.RateLimitConfig{
		MessageLimit:  cfg.MessageRateLimit,
		MessageWindow: cfg.MessageRateWindow,
	})

	backbone, err := newBackbone(cfg, redisClient, l)
	if err != nil {
		log.Fatalf("Failed to set up %s backbone: %v", cfg.BackboneDriver, err)
	}
	defer backbone.Close()
	bus := events.NewBus(backbone, nil, cfg.InstanceID, l.Named("events"))

	// Chat service
	access := proxy.NewAccessControl(journeys, l.Named("access"))
	opts := []services.ChatOption{
		services.WithAccessControl(access),
		services.WithHistoryCache(cacheStore, cfg.HistoryCacheTTL),
		services.WithProfileCache(cacheStore, cfg.ProfileCacheTTL),
	}
	if cfg.S3Enabled() {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: cfg.S3PresignTTL,
		}, l.Named("storage"))
		if err != nil {
			log.Fatalf("Failed to set up S3 client: %v", err)
		}
		opts = append(opts, services.WithAttachmentResolver(s3Client))
		l.Infof("Attachment URLs signed against bucket %s", cfg.S3Bucket)
	}
	chat := services.NewChatService(messages, users, journeys, bus, l.Named("chat"), opts...)
	auth := services.NewAuthService(cfg)

	// Gateway and relay
	var presence websocket.PresenceRegistry
	if cfg.PresenceDriver == "redis" {
		presence = redis.NewPresenceStore(redisClient, 0)
	} else {
		presence = websocket.NewMemoryPresence()
	}
	hub := websocket.NewHub()
	gateway := websocket.NewHandler(hub, chat, access, auth, presence, l.Logger, websocket.Options{
		EventsPerSecond: cfg.SocketEventsPerSec,
		EventBurst:      cfg.SocketEventBurst,
	})
	relay := websocket.NewRelay(hub, bus, cfg.RelayNewMessages, l.Logger)
	// a failed first subscription is retried by the relay itself
	_ = relay.Start(ctx)

	srv := server.New(cfg, l)
	srv.SetupRoutes(server.Routes{
		Chat:           handler.NewChatHandler(chat, gateway),
		WebSocket:      gateway.Connect,
		Auth:           auth,
		MessageLimiter: rateLimiter,
		HealthChecks:   healthChecks,
	})

	l.Logger.Info("journey-chat starting",
		zap.String("instance_id", cfg.InstanceID),
		zap.String("storage", cfg.StorageDriver),
		zap.String("backbone", cfg.BackboneDriver),
		zap.String("presence", cfg.PresenceDriver),
		zap.Bool("relay_new_messages", cfg.RelayNewMessages),
	)
	if err := srv.Start(); err != nil {
		l.Errorf("Server stopped with error: %v", err)
	}
}

func newBackbone(cfg *config.Config, client *goredis.Client, l *logger.Logger) (events.Backbone, error) {
	switch cfg.BackboneDriver {
	case "nats":
		return events.NewNATSBackbone(cfg.NATSURL, "journey-chat-"+cfg.InstanceID, l.Named("nats"))
	case "memory":
		return events.NewMemoryBackbone(), nil
	default:
		breaker := redis.NewBreaker(redis.DefaultBreakerConfig("redis-pubsub"), l.Logger)
		return redis.NewBackbone(client, breaker, l.Named("redis")), nil
	}
}
