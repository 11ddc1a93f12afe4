// Package postgres implements store.Store on PostgreSQL via database/sql and
// lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jogardn/storefront/internal/store"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// ConnectAttempts bounds how long Open waits for the database to accept
	// connections, RetryDelay apart.
	ConnectAttempts int
	RetryDelay      time.Duration
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

type DB struct {
	db     *sql.DB
	logger *logrus.Logger
}

var _ store.Store = (*DB)(nil)

// Open connects to PostgreSQL, waiting for it to come up.
func Open(ctx context.Context, cfg Config, logger *logrus.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			logger.Info("Database connection established")
			return New(db, logger), nil
		}
		logger.WithError(err).WithField("attempt", i+1).Info("Waiting for database...")

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("database not reachable after %d attempts: %w", attempts, err)
}

// New wraps an already opened handle.
func New(db *sql.DB, logger *logrus.Logger) *DB {
	return &DB{db: db, logger: logger}
}

func (d *DB) WithTx(ctx context.Context, fn func(q store.Queries) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.db.Close()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

// mapError translates driver errors into the store sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "customer_accounts_username_key":
				return store.ErrUsernameTaken
			case "customer_accounts_customer_id_key":
				return store.ErrAccountExists
			}
		case "23503":
			return fmt.Errorf("%w: %s", store.ErrInUse, pqErr.Detail)
		case "22001", "22003":
			return fmt.Errorf("%w: %s", store.ErrOutOfRange, pqErr.Message)
		}
	}
	return err
}

// expectOne turns an update or delete that touched no rows into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
