package postgres

import (
	"context"
	"fmt"
)

// schemaDDL tablas del back-office. Idempotente: se ejecuta en cada arranque.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id          uuid PRIMARY KEY,
		kind        text NOT NULL,
		seq         bigserial,
		names       jsonb NOT NULL DEFAULT '{}'::jsonb,
		priority    integer NOT NULL DEFAULT 0,
		active      boolean NOT NULL DEFAULT true,
		removed     boolean NOT NULL DEFAULT false,
		attributes  jsonb NOT NULL DEFAULT '{}'::jsonb,
		created_at  timestamptz NOT NULL,
		updated_at  timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS resources_kind_seq_idx ON resources (kind, removed, seq)`,
	`CREATE TABLE IF NOT EXISTS users (
		id             uuid PRIMARY KEY,
		seq            bigserial,
		login          text NOT NULL UNIQUE,
		password_hash  text NOT NULL,
		name           text NOT NULL,
		role_id        uuid,
		status         text NOT NULL DEFAULT 'active',
		created_at     timestamptz NOT NULL,
		updated_at     timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS barcodes (
		id          uuid PRIMARY KEY,
		seq         bigserial,
		code        text NOT NULL UNIQUE,
		items       jsonb NOT NULL DEFAULT '[]'::jsonb,
		created_at  timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventories (
		id            uuid PRIMARY KEY,
		seq           bigserial,
		kind          text NOT NULL,
		warehouse_id  uuid NOT NULL,
		number        text NOT NULL,
		status        text NOT NULL,
		created_by    text NOT NULL DEFAULT '',
		created_at    timestamptz NOT NULL,
		updated_at    timestamptz NOT NULL,
		finalized_at  timestamptz
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id                 uuid PRIMARY KEY,
		seq                bigserial,
		inventory_id       uuid NOT NULL REFERENCES inventories (id) ON DELETE CASCADE,
		product_id         uuid NOT NULL,
		expected_quantity  numeric NOT NULL DEFAULT 0,
		scanned_quantity   numeric NOT NULL DEFAULT 0,
		received_quantity  numeric,
		unexpected         boolean NOT NULL DEFAULT false,
		discrepancy        numeric,
		UNIQUE (inventory_id, product_id)
	)`,
}

// EnsureSchema crea las tablas que falten.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, ddl := range schemaDDL {
		if _, err := q.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
