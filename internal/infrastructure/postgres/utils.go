package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier lo implementan *pgxpool.Pool y pgx.Tx: los repositorios funcionan igual dentro o fuera de una tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// count ejecuta un SELECT count(*) con las mismas condiciones que el listado.
func count(ctx context.Context, q Querier, table string, s selectSQL) (int, error) {
	var n int
	if err := q.QueryRow(ctx, "SELECT count(*) FROM "+table+s.Where, s.Args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// countWhere ejecuta un count(*) con un único argumento.
func countWhere(ctx context.Context, q Querier, sql, arg string) (int, error) {
	var n int
	if err := q.QueryRow(ctx, sql, arg).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
