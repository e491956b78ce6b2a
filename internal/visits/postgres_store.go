package visits

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists visits to PostgreSQL for deployments without
// DynamoDB.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore builds a Postgres-backed visit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		panic("visits: db cannot be nil")
	}
	return &PostgresStore{db: db}
}

const visitColumns = `id, user_id, caregiver_name, scheduled_date, scheduled_time,
	actual_arrival, status, notes, created_at, acknowledged`

func (s *PostgresStore) Create(ctx context.Context, v *Visit) error {
	v.ID = uuid.New().String()
	v.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (id, user_id, caregiver_name, scheduled_date, scheduled_time,
		    actual_arrival, status, notes, created_at, acknowledged)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		v.ID, v.UserID, v.CaregiverName, v.ScheduledDate, v.ScheduledTime,
		v.ActualArrival, v.Status, v.Notes, v.CreatedAt, v.Acknowledged)
	if err != nil {
		return fmt.Errorf("visits: failed to persist visit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Visit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+visitColumns+` FROM visits WHERE id = $1`, id)

	var v Visit
	err := row.Scan(&v.ID, &v.UserID, &v.CaregiverName, &v.ScheduledDate, &v.ScheduledTime,
		&v.ActualArrival, &v.Status, &v.Notes, &v.CreatedAt, &v.Acknowledged)
	if err == sql.ErrNoRows {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("visits: failed to fetch visit: %w", err)
	}
	return &v, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Visit, error) {
	return s.listWhere(ctx, `user_id = $1`, userID)
}

func (s *PostgresStore) ListByUserAndStatus(ctx context.Context, userID string, status Status) ([]Visit, error) {
	return s.listWhere(ctx, `user_id = $1 AND status = $2`, userID, status)
}

func (s *PostgresStore) ListByUserAndDateRange(ctx context.Context, userID, from, to string) ([]Visit, error) {
	return s.listWhere(ctx, `user_id = $1 AND scheduled_date >= $2 AND scheduled_date < $3`, userID, from, to)
}

func (s *PostgresStore) listWhere(ctx context.Context, where string, args ...any) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+visitColumns+` FROM visits WHERE `+where+` ORDER BY scheduled_date, scheduled_time`, args...)
	if err != nil {
		return nil, fmt.Errorf("visits: failed to query visits: %w", err)
	}
	defer rows.Close()

	out := []Visit{}
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.UserID, &v.CaregiverName, &v.ScheduledDate, &v.ScheduledTime,
			&v.ActualArrival, &v.Status, &v.Notes, &v.CreatedAt, &v.Acknowledged); err != nil {
			return nil, fmt.Errorf("visits: failed to scan visit: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListScheduledUserIDs returns the distinct owners of visits still in the
// scheduled status. Used by the background sweep loop.
func (s *PostgresStore) ListScheduledUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM visits WHERE status = $1`, StatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("visits: failed to query scheduled owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, id string, upd Update) error {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.CaregiverName != nil {
		add("caregiver_name", *upd.CaregiverName)
	}
	if upd.ScheduledDate != nil {
		add("scheduled_date", *upd.ScheduledDate)
	}
	if upd.ScheduledTime != nil {
		add("scheduled_time", *upd.ScheduledTime)
	}
	if upd.ActualArrival != nil {
		add("actual_arrival", *upd.ActualArrival)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Notes != nil {
		add("notes", *upd.Notes)
	}
	if upd.Acknowledged != nil {
		add("acknowledged", *upd.Acknowledged)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE visits SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return s.exec(ctx, query, args...)
}

func (s *PostgresStore) MarkMissed(ctx context.Context, id string) error {
	return s.exec(ctx, `
		UPDATE visits SET status = $1, acknowledged = FALSE WHERE id = $2`, StatusMissed, id)
}

func (s *PostgresStore) SetAcknowledged(ctx context.Context, id string, acknowledged bool) error {
	return s.exec(ctx, `
		UPDATE visits SET acknowledged = $1 WHERE id = $2`, acknowledged, id)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM visits WHERE id = $1`, id)
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("visits: failed to update visit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if affected == 0 {
		return ErrVisitNotFound
	}
	return nil
}
