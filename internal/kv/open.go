package kv

import (
	"context"
	"fmt"

	"samaajseva/internal/kv/bolt"
	"samaajseva/internal/kv/memory"
	"samaajseva/internal/kv/postgres"
	"samaajseva/internal/kv/redis"
	"samaajseva/internal/kv/s3"
	"samaajseva/internal/kv/sqlite"
	"samaajseva/pkg/types"
)

// Open selects a Store implementation from config.StoreDriver.
func Open(ctx context.Context, config *types.Config) (Store, error) {
	switch Driver(config.StoreDriver) {
	case DriverMemory:
		return memory.New(), nil
	case DriverBolt, "":
		return bolt.New(config.BoltPath)
	case DriverSQLite:
		return sqlite.New(config.SQLitePath)
	case DriverPostgres:
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("set DATABASE_URL for the postgres store")
		}
		return postgres.Open(ctx, config.DatabaseURL)
	case DriverRedis:
		return redis.New(ctx, redisConfig(config))
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    config.S3Bucket,
			Region:    config.S3Region,
			Endpoint:  config.S3Endpoint,
			PathStyle: config.S3PathStyle,
			Prefix:    config.S3Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %s", config.StoreDriver)
	}
}

func redisConfig(config *types.Config) redis.Config {
	return redis.Config{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
		Prefix:   config.RedisPrefix,
	}
}
