package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore persists accounts to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore builds a Postgres-backed account store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("identity: db cannot be nil")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guardian_accounts (id, email, password_hash, created_at)
		VALUES ($1,$2,$3,$4)`,
		a.ID, a.Email, a.PasswordHash, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("identity: failed to persist account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Account, error) {
	return s.getWhere(ctx, `id = $1`, id)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.getWhere(ctx, `email = $1`, email)
}

func (s *PostgresStore) getWhere(ctx context.Context, where string, arg any) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM guardian_accounts WHERE `+where, arg)

	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("identity: failed to fetch account: %w", err)
	}
	return &a, nil
}
