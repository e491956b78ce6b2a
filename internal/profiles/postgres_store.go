package profiles

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists profiles to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore builds a Postgres-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("profiles: db cannot be nil")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, p *UserProfile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guardian_profiles (uid, name, email, phone, relationship, photo_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (uid) DO UPDATE SET
		    name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    relationship = EXCLUDED.relationship,
		    photo_url = EXCLUDED.photo_url,
		    updated_at = EXCLUDED.updated_at`,
		p.UID, p.Name, p.Email, p.Phone, p.Relationship, p.PhotoURL, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("profiles: failed to persist profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, uid string) (*UserProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uid, name, email, phone, relationship, photo_url, created_at, updated_at
		FROM guardian_profiles WHERE uid = $1`, uid)

	var p UserProfile
	err := row.Scan(&p.UID, &p.Name, &p.Email, &p.Phone, &p.Relationship, &p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profiles: failed to fetch profile: %w", err)
	}
	return &p, nil
}
