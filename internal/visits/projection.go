package visits

import (
	"sort"
	"time"
)

// Overdue returns the scheduled visits whose date and time have passed as of
// now. A visit scheduled for an earlier day is overdue; one scheduled today
// is overdue once its HH:MM is strictly before now's wall clock. Visits with
// malformed date or time strings are never considered overdue. Visits not in
// the scheduled status are ignored.
func Overdue(all []Visit, now time.Time) []Visit {
	minute := now.Truncate(time.Minute)
	var out []Visit
	for _, v := range all {
		if v.Status != StatusScheduled {
			continue
		}
		at, ok := v.ScheduledAt(now.Location())
		if !ok {
			continue
		}
		if at.Before(minute) {
			out = append(out, v)
		}
	}
	return out
}

// UnacknowledgedAlerts filters visits down to those in an alert-worthy status
// (missed, substituted or delayed) that the guardian has not acknowledged,
// sorted by scheduled date descending. Ties keep their input order.
func UnacknowledgedAlerts(all []Visit) []Visit {
	var out []Visit
	for _, v := range all {
		if v.Status.AlertWorthy() && !v.Acknowledged {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate > out[j].ScheduledDate
	})
	return out
}

// VisitsOn returns the visits scheduled on the given calendar date, ascending
// by scheduled time. Ties keep their input order.
func VisitsOn(all []Visit, date string) []Visit {
	var out []Visit
	for _, v := range all {
		if v.ScheduledDate == date {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledTime < out[j].ScheduledTime
	})
	return out
}
