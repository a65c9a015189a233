package postgres

import (
	"context"
	"fmt"
	"time"

	"samaajseva/internal/utils"
	"samaajseva/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordTableName = "samaajseva.kv_records"

type record struct {
	Key       string    `db:"key"`
	Value     []byte    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

var recordColumns = utils.StructTagValues(record{})

type Store struct {
	pool *pgxpool.Pool
}

// New takes ownership of pool and makes sure the records table exists.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	_, err := pool.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS samaajseva;
		CREATE TABLE IF NOT EXISTS samaajseva.kv_records (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv_records table: %w", err)
	}

	return &Store{pool: pool}, nil
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := psql().
		Select(recordColumns...).
		From(recordTableName).
		Where(sq.Eq{"key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate record query: %w", err)
	}

	var rec record
	err = pgxscan.Get(ctx, s.pool, &rec, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to fetch record %s: %w", key, err)
	}

	return rec.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	rec := record{Key: key, Value: value, UpdatedAt: time.Now()}

	query, args, err := psql().
		Insert(recordTableName).
		SetMap(utils.StructToMap(rec)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert record query: %w", err)
	}

	_, err = s.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert record")
}

func (s *Store) Remove(ctx context.Context, key string) error {
	query, args, err := psql().Delete(recordTableName).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete record query for %s: %w", key, err)
	}

	_, err = s.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete record")
}
