package storage

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		brand TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		currency VARCHAR(8) NOT NULL DEFAULT 'AUD',
		stock INTEGER NOT NULL DEFAULT 0,
		image TEXT,
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		tags TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		subtotal NUMERIC(12,2) NOT NULL,
		shipping NUMERIC(12,2) NOT NULL,
		total NUMERIC(12,2) NOT NULL,
		currency VARCHAR(8) NOT NULL,
		items_json TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_email ON orders (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key_id TEXT PRIMARY KEY,
		response_status INTEGER NOT NULL,
		response_body BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// MySQL's default collation already compares email case-insensitively.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		brand VARCHAR(255) NOT NULL DEFAULT '',
		category VARCHAR(255) NOT NULL DEFAULT '',
		price DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		currency VARCHAR(8) NOT NULL DEFAULT 'AUD',
		stock INT NOT NULL DEFAULT 0,
		image TEXT,
		featured TINYINT(1) NOT NULL DEFAULT 0,
		tags TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT '',
		subtotal DECIMAL(12,2) NOT NULL,
		shipping DECIMAL(12,2) NOT NULL,
		total DECIMAL(12,2) NOT NULL,
		currency VARCHAR(8) NOT NULL,
		items_json LONGTEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_orders_email (email)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key_id VARCHAR(255) PRIMARY KEY,
		response_status INT NOT NULL,
		response_body LONGBLOB NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	)`,
}

// EnsureSchema creates the storefront tables if they don't exist.
func EnsureSchema(ctx context.Context, db *DB) error {
	stmts := postgresSchema
	if db.Dialect == MySQL {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
