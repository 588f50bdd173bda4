// Package db opens the database clients the service talks to.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"northwind/internal/config"
)

// NewPostgres opens a pgx connection pool and verifies it with a ping.
// The pool is handed to the repositories by reference; nothing here is global.
func NewPostgres(ctx context.Context, dsn string, pool config.PoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if pool.MaxConns > 0 {
		pc.MaxConns = pool.MaxConns
	}
	if pool.MinConns > 0 {
		pc.MinConns = pool.MinConns
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 5 * time.Minute

	p, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect pgx: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping pgx: %w", err)
	}
	return p, nil
}
