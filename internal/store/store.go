package store

import (
	"context"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// psql builds queries with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store owns the connection pool and is the only component that talks SQL.
type Store struct {
	pool  *pgxpool.Pool
	clock clockwork.Clock
	log   zerolog.Logger
}

func New(pool *pgxpool.Pool, clock clockwork.Clock, logger zerolog.Logger) *Store {
	return &Store{pool: pool, clock: clock, log: logger}
}

func (s *Store) Close() {
	s.pool.Close()
}

// MustPool connects to Postgres, retrying for up to 30s so the server
// survives the database coming up after it.
func MustPool(url string) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatal(err)
	}
	cfg.MaxConns = 10

	var pool *pgxpool.Pool

	deadline := time.Now().Add(30 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				cancel()
				break
			}
			pool.Close()
			err = ctx.Err()
		}
		cancel()

		if time.Now().After(deadline) {
			log.Fatalf("failed to connect DB after retries: %v", err)
		}
		time.Sleep(1 * time.Second)
	}

	return pool
}

/* ----------- squirrel helpers ----------- */

func (s *Store) exec(ctx context.Context, q sq.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return s.pool.Exec(ctx, sql, args...)
}

func (s *Store) query(ctx context.Context, q sq.SelectBuilder) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return s.pool.Query(ctx, sql, args...)
}

func (s *Store) row(ctx context.Context, q sq.SelectBuilder) pgx.Row {
	sql, args, _ := q.ToSql()
	return s.pool.QueryRow(ctx, sql, args...)
}
