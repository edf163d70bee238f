package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/internship-portal-api/pkg/config"
)

// Opener dials a new database handle.
type Opener func(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error)

// Store owns the single process-wide connection pool. Ensure is safe to call
// repeatedly and concurrently; failed attempts are not cached so a later call
// can retry.
type Store struct {
	cfg  config.DatabaseConfig
	open Opener

	mu sync.Mutex
	db *sqlx.DB
}

// NewStore builds a lazily connected store.
func NewStore(cfg config.DatabaseConfig, open Opener) *Store {
	if open == nil {
		open = OpenPostgres
	}
	return &Store{cfg: cfg, open: open}
}

// Ensure returns the shared handle, connecting on first use.
func (s *Store) Ensure(ctx context.Context) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	db, err := s.open(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	s.db = db
	return db, nil
}

// Ping verifies the shared handle is still usable.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.Ensure(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close tears the handle down; a later Ensure reconnects.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// OpenPostgres returns a configured PostgreSQL client.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
