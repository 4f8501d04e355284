package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fitcheck-backend/internal/config"
	"fitcheck-backend/internal/db"
	"fitcheck-backend/pkg/cache"
	"fitcheck-backend/pkg/messagequeue"
	"fitcheck-backend/pkg/storage"
)

func newObjectStore(ctx context.Context, cfg *config.Config, clients *db.Clients) (storage.ObjectStore, error) {
	switch cfg.StorageBackend {
	case config.StorageMinIO:
		return storage.NewMinIOStore(ctx, storage.NewMinIOStoreConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	case config.StorageFirebase:
		return storage.NewFirebaseStore(ctx, clients.App, cfg.FirebaseStorageBucket)
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
}

func newMessageQueue(cfg *config.Config, logger *zap.Logger) (messagequeue.MessageQueue, error) {
	switch cfg.EventBus {
	case config.EventBusRabbitMQ:
		return messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: cfg.RabbitMQURL}, logger)
	case config.EventBusKafka:
		return messagequeue.NewKafkaService(messagequeue.NewKafkaServiceConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
		}, logger)
	case config.EventBusMemory:
		logger.Warn("Using the in-memory event bus; queued events are lost on restart")
		return messagequeue.NewMemoryQueue(messagequeue.NewMemoryQueueConfig{}, logger), nil
	}
	return nil, fmt.Errorf("unsupported event bus %q", cfg.EventBus)
}

// newCache returns Redis when REDIS_ADDR is set and a no-op cache otherwise.
func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, suggestion cache disabled")
		return cache.NoopCache{}, func() {}, nil
	}
	rc, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{
		Address:  cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return rc, func() { _ = rc.Close() }, nil
}
