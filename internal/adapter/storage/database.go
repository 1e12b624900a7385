package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Dialect int

const (
	Postgres Dialect = iota + 1
	MySQL
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	default:
		return "unknown"
	}
}

// DB is a connection pool plus the SQL dialect spoken on the other end.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// ConnectDB opens and pings the relational store named by databaseURL.
// postgres:// URLs use pgx; anything else is parsed as a MySQL DSN.
func ConnectDB(ctx context.Context, databaseURL string) (*DB, error) {
	// 1. Check the URL
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	// 2. Pick the driver
	driver, dsn, dialect, err := resolveDSN(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s pool: %w", dialect, err)
	}

	// 3. Configure Pool Settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	// 4. Test Connection (Ping)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func resolveDSN(databaseURL string) (driver, dsn string, dialect Dialect, err error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return "pgx", u, Postgres, nil
	case strings.HasPrefix(u, "mysql://"):
		u = strings.TrimPrefix(u, "mysql://")
	}
	cfg, err := mysql.ParseDSN(u)
	if err != nil {
		return "", "", 0, err
	}
	// created_at columns are scanned into time.Time
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return "mysql", cfg.FormatDSN(), MySQL, nil
}

// Rebind rewrites ? placeholders into the dialect's form.
func (db *DB) Rebind(query string) string {
	if db.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
