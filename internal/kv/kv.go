// Package kv is the storage port shared by the identity provider and the
// need ledger. Values are opaque byte slices and every Set replaces the whole
// value stored under a key.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed wraps decode failures from GetJSON.
var ErrMalformed = errors.New("malformed record")

// Store is implemented by every driver. Get returns types.ErrKeyNotFound
// when nothing is stored under key. Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverBolt     Driver = "bolt"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverS3       Driver = "s3"
)

func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w %s: %v", ErrMalformed, key, err)
	}

	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}
