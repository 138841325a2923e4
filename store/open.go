// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/db"
)

// Open connects to the backend selected by cfg.DatabaseType, verifies the
// connection and prepares the schema or collection it needs.
func Open(ctx context.Context, cfg cliparse.Config) (Store, error) {
	switch cfg.DatabaseType {
	case cliparse.StoreMemory:
		return NewMemoryStore(), nil
	case cliparse.StoreSQLite, cliparse.StorePostgres:
		return openSQL(ctx, cfg)
	case cliparse.StoreMongo:
		return openMongo(ctx, cfg)
	case cliparse.StoreRedis:
		return openRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}
}

func openSQL(ctx context.Context, cfg cliparse.Config) (*SQLStore, error) {
	conn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if cfg.DatabaseType == cliparse.StoreSQLite {
		// SQLite allows one writer; a single connection also keeps
		// :memory: databases alive for the lifetime of the pool.
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := withTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("database schema ready", "type", cfg.DatabaseType)

	return NewSQLStore(conn, cfg.DatabaseType, cfg.StoreTimeout), nil
}

func openMongo(ctx context.Context, cfg cliparse.Config) (*MongoStore, error) {
	opts := options.Client().ApplyURI(cfg.DatabaseURL).SetConnectTimeout(cfg.StoreTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connection failed: %w", err)
	}

	pingCtx, cancel := withTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	database := client.Database(cfg.DatabaseName)
	if err := db.EnsureCollection(pingCtx, database, CollectionName); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	slog.Info("mongo collection ready", "database", cfg.DatabaseName, "collection", CollectionName)

	return NewMongoStore(client, database, cfg.StoreTimeout), nil
}

func openRedis(ctx context.Context, cfg cliparse.Config) (*RedisStore, error) {
	var opts *redis.Options
	if strings.HasPrefix(cfg.DatabaseURL, "redis://") || strings.HasPrefix(cfg.DatabaseURL, "rediss://") {
		parsed, err := redis.ParseURL(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.DatabaseURL}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := withTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	slog.Info("redis connection ready", "addr", opts.Addr)

	return NewRedisStore(client, cfg.StoreTimeout), nil
}
