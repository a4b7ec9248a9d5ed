package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// contextKey is a custom type for context keys to avoid collisions.
// Using a UUID keeps the key unique across the process.
type contextKey struct {
	name string
}

var txKey = contextKey{name: uuid.New().String()}

// Transactioner runs a function inside a single database transaction.
// Every external operation of the engine is scoped to exactly one Do call.
type Transactioner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EngineFactory resolves the executor bound to the current context.
type EngineFactory interface {
	Engine(ctx context.Context) Engine
}

// Engine is satisfied by both pgxpool.Pool and pgx.Tx.
type Engine interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ContextManager carries the active transaction in the context so that
// repositories transparently join an in-flight transaction.
type ContextManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewContextManager(pool *pgxpool.Pool, logger *zap.Logger) *ContextManager {
	return &ContextManager{pool: pool, logger: logger}
}

// Engine returns the transaction bound to ctx, or the pool when none is.
func (cm *ContextManager) Engine(ctx context.Context) Engine {
	if tx, ok := ctx.Value(txKey).(pgx.Tx); ok {
		return tx
	}
	return cm.pool
}

// Do executes fn within a transaction. Nested calls join the outer
// transaction instead of opening a new one.
func (cm *ContextManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := cm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	ctx = context.WithValue(ctx, txKey, tx)

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			cm.logger.Error("rollback failed", zap.Error(rbErr))
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
