package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

// AccountRepository stores registered customers in the relational backend.
type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a customer. Email uniqueness is enforced by the schema.
func (r *AccountRepository) Create(ctx context.Context, acc domain.Account) (domain.Account, error) {
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}
	id, err := r.db.insertReturningID(ctx,
		`INSERT INTO users (email, name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		acc.Email, acc.Name, acc.PasswordHash, acc.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.Account{}, domain.Conflict("email_taken", "Email already registered")
	}
	if err != nil {
		return domain.Account{}, domain.Persistence("failed to create account", err)
	}
	acc.ID = id
	return acc, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE LOWER(email) = ?`
	row := r.db.QueryRowContext(ctx, r.db.Rebind(query), strings.ToLower(strings.TrimSpace(email)))
	return scanAccount(row)
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`
	return scanAccount(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
}

// List returns every customer, oldest first.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, name, password_hash, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, domain.Persistence("failed to list accounts", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("failed to list accounts", err)
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var acc domain.Account
	err := row.Scan(&acc.ID, &acc.Email, &acc.Name, &acc.PasswordHash, &acc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.NotFound("account_not_found", "Account not found")
	}
	if err != nil {
		return domain.Account{}, domain.Persistence("failed to read account", err)
	}
	return acc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

// insertReturningID runs an INSERT and reports the generated id.
// Postgres has no LastInsertId, so the statement gets a RETURNING clause.
func (db *DB) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if db.Dialect == Postgres {
		var id int64
		err := db.QueryRowContext(ctx, db.Rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
