package visits

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestOverduePastDate(t *testing.T) {
	all := []Visit{
		{ID: "v1", Status: StatusScheduled, ScheduledDate: "2024-01-01", ScheduledTime: "09:00"},
	}
	now := mustTime(t, "2024-06-01T10:00")

	overdue := Overdue(all, now)
	if len(overdue) != 1 || overdue[0].ID != "v1" {
		t.Fatalf("expected v1 overdue, got %+v", overdue)
	}
}

func TestOverdueSameDayEarlierTime(t *testing.T) {
	all := []Visit{
		{ID: "earlier", Status: StatusScheduled, ScheduledDate: "2024-06-01", ScheduledTime: "09:59"},
		{ID: "exact", Status: StatusScheduled, ScheduledDate: "2024-06-01", ScheduledTime: "10:00"},
		{ID: "later", Status: StatusScheduled, ScheduledDate: "2024-06-01", ScheduledTime: "10:01"},
	}
	now := mustTime(t, "2024-06-01T10:00")

	overdue := Overdue(all, now)
	if len(overdue) != 1 || overdue[0].ID != "earlier" {
		t.Fatalf("expected only the earlier visit overdue, got %+v", overdue)
	}
}

func TestOverdueExactMinuteNotFlagged(t *testing.T) {
	all := []Visit{
		{ID: "exact", Status: StatusScheduled, ScheduledDate: "2024-06-01", ScheduledTime: "10:00"},
	}
	// seconds past the minute do not tip a visit scheduled at that minute
	now := mustTime(t, "2024-06-01T10:00").Add(30 * time.Second)

	if overdue := Overdue(all, now); len(overdue) != 0 {
		t.Fatalf("expected no overdue visits, got %+v", overdue)
	}
}

func TestOverdueSkipsNonScheduled(t *testing.T) {
	all := []Visit{
		{ID: "completed", Status: StatusCompleted, ScheduledDate: "2024-01-01", ScheduledTime: "09:00"},
		{ID: "missed", Status: StatusMissed, ScheduledDate: "2024-01-01", ScheduledTime: "09:00"},
		{ID: "delayed", Status: StatusDelayed, ScheduledDate: "2024-01-01", ScheduledTime: "09:00"},
		{ID: "substituted", Status: StatusSubstituted, ScheduledDate: "2024-01-01", ScheduledTime: "09:00"},
	}
	now := mustTime(t, "2024-06-01T10:00")

	if overdue := Overdue(all, now); len(overdue) != 0 {
		t.Fatalf("expected no overdue visits, got %+v", overdue)
	}
}

func TestOverdueSkipsMalformedSchedule(t *testing.T) {
	all := []Visit{
		{ID: "bad-date", Status: StatusScheduled, ScheduledDate: "01/01/2024", ScheduledTime: "09:00"},
		{ID: "bad-time", Status: StatusScheduled, ScheduledDate: "2024-01-01", ScheduledTime: "9am"},
		{ID: "empty", Status: StatusScheduled},
	}
	now := mustTime(t, "2024-06-01T10:00")

	if overdue := Overdue(all, now); len(overdue) != 0 {
		t.Fatalf("malformed schedules must never be flagged, got %+v", overdue)
	}
}

func TestOverdueFutureDate(t *testing.T) {
	all := []Visit{
		{ID: "tomorrow", Status: StatusScheduled, ScheduledDate: "2024-06-02", ScheduledTime: "09:00"},
	}
	now := mustTime(t, "2024-06-01T10:00")

	if overdue := Overdue(all, now); len(overdue) != 0 {
		t.Fatalf("expected no overdue visits, got %+v", overdue)
	}
}

func TestUnacknowledgedAlertsFiltersAndOrders(t *testing.T) {
	all := []Visit{
		{ID: "scheduled", Status: StatusScheduled, ScheduledDate: "2024-06-05"},
		{ID: "completed", Status: StatusCompleted, ScheduledDate: "2024-06-04"},
		{ID: "missed-old", Status: StatusMissed, ScheduledDate: "2024-06-01"},
		{ID: "acked", Status: StatusMissed, ScheduledDate: "2024-06-03", Acknowledged: true},
		{ID: "delayed-new", Status: StatusDelayed, ScheduledDate: "2024-06-02"},
		{ID: "substituted", Status: StatusSubstituted, ScheduledDate: "2024-06-06"},
	}

	alerts := UnacknowledgedAlerts(all)
	got := make([]string, 0, len(alerts))
	for _, a := range alerts {
		got = append(got, a.ID)
	}

	want := []string{"substituted", "delayed-new", "missed-old"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestUnacknowledgedAlertsStableOnEqualDates(t *testing.T) {
	all := []Visit{
		{ID: "first", Status: StatusMissed, ScheduledDate: "2024-06-01"},
		{ID: "second", Status: StatusDelayed, ScheduledDate: "2024-06-01"},
		{ID: "third", Status: StatusSubstituted, ScheduledDate: "2024-06-01"},
	}

	alerts := UnacknowledgedAlerts(all)
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	for i, want := range []string{"first", "second", "third"} {
		if alerts[i].ID != want {
			t.Fatalf("tie order not preserved: position %d got %s, want %s", i, alerts[i].ID, want)
		}
	}
}

func TestVisitsOnFiltersAndSortsByTime(t *testing.T) {
	all := []Visit{
		{ID: "afternoon", ScheduledDate: "2024-06-01", ScheduledTime: "14:00"},
		{ID: "other-day", ScheduledDate: "2024-06-02", ScheduledTime: "08:00"},
		{ID: "morning", ScheduledDate: "2024-06-01", ScheduledTime: "08:30"},
		{ID: "noon", ScheduledDate: "2024-06-01", ScheduledTime: "12:00"},
	}

	today := VisitsOn(all, "2024-06-01")
	want := []string{"morning", "noon", "afternoon"}
	if len(today) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(today))
	}
	for i := range want {
		if today[i].ID != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, today[i].ID, want[i])
		}
	}
}

func TestVisitsOnEmpty(t *testing.T) {
	if got := VisitsOn(nil, "2024-06-01"); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}
