package visits

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryCreateAssignsIdentity(t *testing.T) {
	store := NewInMemoryStore()

	v := &Visit{UserID: "guardian-1", CaregiverName: "Maria", ScheduledDate: "2024-06-01", ScheduledTime: "09:00", Status: StatusScheduled}
	require.NoError(t, store.Create(context.Background(), v))
	require.NotEmpty(t, v.ID)
	require.False(t, v.CreatedAt.IsZero())
}

func TestInMemoryGetReturnsCopy(t *testing.T) {
	store := NewInMemoryStore()
	v := &Visit{UserID: "guardian-1", CaregiverName: "Maria", ScheduledDate: "2024-06-01", ScheduledTime: "09:00", Status: StatusScheduled}
	require.NoError(t, store.Create(context.Background(), v))

	got, err := store.Get(context.Background(), v.ID)
	require.NoError(t, err)

	// mutating the returned value must not leak into the store
	got.CaregiverName = "changed"
	again, err := store.Get(context.Background(), v.ID)
	require.NoError(t, err)
	require.Equal(t, "Maria", again.CaregiverName)
}

func TestInMemoryUpdatePartial(t *testing.T) {
	store := NewInMemoryStore()
	v := &Visit{UserID: "guardian-1", CaregiverName: "Maria", ScheduledDate: "2024-06-01", ScheduledTime: "09:00", Status: StatusScheduled}
	require.NoError(t, store.Create(context.Background(), v))

	notes := "gate code 4411"
	status := StatusDelayed
	require.NoError(t, store.Update(context.Background(), v.ID, Update{Notes: &notes, Status: &status}))

	got, err := store.Get(context.Background(), v.ID)
	require.NoError(t, err)
	require.Equal(t, "gate code 4411", got.Notes)
	require.Equal(t, StatusDelayed, got.Status)
	require.Equal(t, "Maria", got.CaregiverName)
}

func TestInMemoryListByUserAndDateRange(t *testing.T) {
	store := NewInMemoryStore()
	for _, date := range []string{"2024-05-31", "2024-06-01", "2024-06-02"} {
		v := &Visit{UserID: "guardian-1", CaregiverName: "Maria", ScheduledDate: date, ScheduledTime: "09:00", Status: StatusScheduled}
		require.NoError(t, store.Create(context.Background(), v))
	}

	// from is inclusive, to is exclusive
	got, err := store.ListByUserAndDateRange(context.Background(), "guardian-1", "2024-06-01", "2024-06-02")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2024-06-01", got[0].ScheduledDate)
}

func TestInMemoryNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrVisitNotFound)
	require.ErrorIs(t, store.MarkMissed(context.Background(), "ghost"), ErrVisitNotFound)
	require.ErrorIs(t, store.SetAcknowledged(context.Background(), "ghost", true), ErrVisitNotFound)
	require.ErrorIs(t, store.Delete(context.Background(), "ghost"), ErrVisitNotFound)
}
