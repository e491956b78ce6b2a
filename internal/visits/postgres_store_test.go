package visits

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newMockDB(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func visitRows(visits ...Visit) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "caregiver_name", "scheduled_date", "scheduled_time",
		"actual_arrival", "status", "notes", "created_at", "acknowledged",
	})
	for _, v := range visits {
		rows.AddRow(v.ID, v.UserID, v.CaregiverName, v.ScheduledDate, v.ScheduledTime,
			v.ActualArrival, string(v.Status), v.Notes, v.CreatedAt, v.Acknowledged)
	}
	return rows
}

func TestPostgresCreate(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO visits")).
		WithArgs(sqlmock.AnyArg(), "guardian-1", "Maria", "2024-06-01", "09:00",
			"", StatusScheduled, "", sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	v := &Visit{UserID: "guardian-1", CaregiverName: "Maria", ScheduledDate: "2024-06-01", ScheduledTime: "09:00", Status: StatusScheduled}
	if err := store.Create(context.Background(), v); err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.ID == "" || v.CreatedAt.IsZero() {
		t.Fatalf("expected id and createdAt assigned, got %+v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresGetNotFound(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM visits WHERE id =").
		WithArgs("missing").
		WillReturnRows(visitRows())

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrVisitNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresGet(t *testing.T) {
	store, mock := newMockDB(t)
	want := Visit{ID: "v1", UserID: "guardian-1", CaregiverName: "Maria", ScheduledDate: "2024-06-01",
		ScheduledTime: "09:00", Status: StatusScheduled, CreatedAt: time.Now().UTC()}

	mock.ExpectQuery("SELECT .+ FROM visits WHERE id =").
		WithArgs("v1").
		WillReturnRows(visitRows(want))

	got, err := store.Get(context.Background(), "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != want.ID || got.Status != want.Status || got.CaregiverName != want.CaregiverName {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPostgresListByUserAndStatus(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM visits WHERE user_id = .+ AND status = .+ ORDER BY scheduled_date, scheduled_time").
		WithArgs("guardian-1", StatusScheduled).
		WillReturnRows(visitRows(
			Visit{ID: "v1", UserID: "guardian-1", Status: StatusScheduled, ScheduledDate: "2024-06-01", ScheduledTime: "08:00"},
			Visit{ID: "v2", UserID: "guardian-1", Status: StatusScheduled, ScheduledDate: "2024-06-01", ScheduledTime: "14:00"},
		))

	visits, err := store.ListByUserAndStatus(context.Background(), "guardian-1", StatusScheduled)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visits) != 2 || visits[0].ID != "v1" {
		t.Fatalf("unexpected visits: %+v", visits)
	}
}

func TestPostgresUpdateBuildsSetClause(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE visits SET caregiver_name = $1, status = $2 WHERE id = $3")).
		WithArgs("Ana Silva", StatusDelayed, "v1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	name := "Ana Silva"
	status := StatusDelayed
	if err := store.Update(context.Background(), "v1", Update{CaregiverName: &name, Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresUpdateNoFieldsIsNoop(t *testing.T) {
	store, mock := newMockDB(t)

	if err := store.Update(context.Background(), "v1", Update{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("empty update must not hit the database: %v", err)
	}
}

func TestPostgresMarkMissed(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE visits SET status = $1, acknowledged = FALSE WHERE id = $2")).
		WithArgs(StatusMissed, "v1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.MarkMissed(context.Background(), "v1"); err != nil {
		t.Fatalf("mark missed: %v", err)
	}
}

func TestPostgresMarkMissedNotFound(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectExec("UPDATE visits SET status").
		WithArgs(StatusMissed, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.MarkMissed(context.Background(), "missing"); !errors.Is(err, ErrVisitNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresListScheduledUserIDs(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectQuery("SELECT DISTINCT user_id FROM visits WHERE status =").
		WithArgs(StatusScheduled).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("guardian-1").AddRow("guardian-2"))

	ids, err := store.ListScheduledUserIDs(context.Background())
	if err != nil {
		t.Fatalf("list scheduled user ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "guardian-1" || ids[1] != "guardian-2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestPostgresDelete(t *testing.T) {
	store, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM visits WHERE id = $1")).
		WithArgs("v1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Delete(context.Background(), "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
