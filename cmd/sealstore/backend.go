package main

import (
	"context"

	"github.com/kochabx/sealstore/app"
	"github.com/kochabx/sealstore/errors"
	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/store"
	"github.com/kochabx/sealstore/store/bolt"
	"github.com/kochabx/sealstore/store/db"
	"github.com/kochabx/sealstore/store/etcd"
	"github.com/kochabx/sealstore/store/file"
	"github.com/kochabx/sealstore/store/kafka"
	"github.com/kochabx/sealstore/store/memory"
	"github.com/kochabx/sealstore/store/mongo"
	"github.com/kochabx/sealstore/store/oss/minio"
	"github.com/kochabx/sealstore/store/redis"
)

const (
	backendMemory = "memory"
	backendFile   = "file"
	backendBolt   = "bolt"
	backendMinio  = "minio"
	backendRedis  = "redis"
	backendDB     = "db"
	backendMongo  = "mongo"
	backendEtcd   = "etcd"
)

type closer interface {
	Close() error
}

// openAdapter builds the adapter named by cfg.Type and registers its Close
// with the application.
func openAdapter(ctx context.Context, cfg *BackendConfig, a *app.Application, logger *log.Logger) (store.Adapter, error) {
	adapter, err := newAdapter(ctx, cfg, logger)
	if err != nil {
		return nil, errors.WrapWithMetadata(err, errors.CodeStorage,
			map[string]string{"backend": cfg.Type}, "failed to open storage backend")
	}

	if c, ok := adapter.(closer); ok {
		if err := a.RegisterCloser("backend:"+cfg.Type, c); err != nil {
			return nil, err
		}
	}

	logger.Debug().Str("backend", cfg.Type).Msg("storage backend opened")
	return adapter, nil
}

func newAdapter(ctx context.Context, cfg *BackendConfig, logger *log.Logger) (store.Adapter, error) {
	switch cfg.Type {
	case backendMemory:
		return memory.New(), nil
	case backendFile:
		return file.New(&cfg.File)
	case backendBolt:
		return bolt.Open(&cfg.Bolt)
	case backendMinio:
		return minio.New(ctx, &cfg.Minio)
	case backendRedis:
		return redis.New(ctx, &cfg.Redis, redis.WithLogger(logger))
	case backendDB:
		driver, err := cfg.DB.DriverConfig()
		if err != nil {
			return nil, err
		}
		return db.Open(ctx, driver, db.WithLogger(logger), db.WithTable(cfg.DB.Table))
	case backendMongo:
		return mongo.Open(ctx, &cfg.Mongo, mongo.WithLogger(logger))
	case backendEtcd:
		return etcd.New(ctx, &cfg.Etcd, etcd.WithLogger(logger))
	default:
		return nil, errors.InvalidArgumentWithMetadata(map[string]string{"type": cfg.Type}, "unknown backend type")
	}
}

// openNotifier returns the Kafka event publisher, or nil when events are
// disabled.
func openNotifier(cfg *EventsConfig, a *app.Application, logger *log.Logger) (store.Notifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client, err := kafka.New(&cfg.Kafka, kafka.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to create event publisher")
	}
	if err := a.RegisterCloser("events", client); err != nil {
		return nil, err
	}
	return kafka.NewPublisher(client), nil
}
