package visits

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a visit.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusMissed      Status = "missed"
	StatusSubstituted Status = "substituted"
	StatusDelayed     Status = "delayed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusMissed, StatusSubstituted, StatusDelayed:
		return true
	}
	return false
}

// AlertWorthy reports whether a visit in this status should surface as an
// alert to the guardian.
func (s Status) AlertWorthy() bool {
	switch s {
	case StatusMissed, StatusSubstituted, StatusDelayed:
		return true
	}
	return false
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Visit represents one scheduled or realized caregiver appointment.
// ScheduledDate and ScheduledTime are zero-padded "YYYY-MM-DD" / "HH:MM"
// strings so their lexicographic order matches chronological order.
type Visit struct {
	ID            string    `json:"id" dynamodbav:"id"`
	UserID        string    `json:"userId" dynamodbav:"userId"`
	CaregiverName string    `json:"caregiverName" dynamodbav:"caregiverName"`
	ScheduledDate string    `json:"scheduledDate" dynamodbav:"scheduledDate"`
	ScheduledTime string    `json:"scheduledTime" dynamodbav:"scheduledTime"`
	ActualArrival string    `json:"actualArrival,omitempty" dynamodbav:"actualArrival,omitempty"`
	Status        Status    `json:"status" dynamodbav:"status"`
	Notes         string    `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"createdAt"`
	Acknowledged  bool      `json:"acknowledged" dynamodbav:"acknowledged"`
}

// ScheduledAt parses the visit's date and time in loc. The boolean is false
// when either string is malformed.
func (v *Visit) ScheduledAt(loc *time.Location) (time.Time, bool) {
	ts, err := time.ParseInLocation(dateLayout+" "+timeLayout, v.ScheduledDate+" "+v.ScheduledTime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// CreateVisitRequest is the request body for scheduling a visit. Status is
// always scheduled at creation.
type CreateVisitRequest struct {
	CaregiverName string `json:"caregiverName"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	Notes         string `json:"notes"`
}

// Validate validates the create visit request
func (r *CreateVisitRequest) Validate() error {
	if strings.TrimSpace(r.CaregiverName) == "" {
		return ErrMissingCaregiverName
	}
	if !ValidDate(r.ScheduledDate) {
		return ErrInvalidDate
	}
	if !ValidTime(r.ScheduledTime) {
		return ErrInvalidTime
	}
	return nil
}

// Update describes a partial update to a visit. Nil fields are left
// untouched. UserID and CreatedAt are immutable and cannot appear here.
type Update struct {
	CaregiverName *string `json:"caregiverName"`
	ScheduledDate *string `json:"scheduledDate"`
	ScheduledTime *string `json:"scheduledTime"`
	ActualArrival *string `json:"actualArrival"`
	Status        *Status `json:"status"`
	Notes         *string `json:"notes"`
	Acknowledged  *bool   `json:"acknowledged"`
}

// Validate validates the fields present in the update.
func (u *Update) Validate() error {
	if u.CaregiverName != nil && strings.TrimSpace(*u.CaregiverName) == "" {
		return ErrMissingCaregiverName
	}
	if u.ScheduledDate != nil && !ValidDate(*u.ScheduledDate) {
		return ErrInvalidDate
	}
	if u.ScheduledTime != nil && !ValidTime(*u.ScheduledTime) {
		return ErrInvalidTime
	}
	if u.ActualArrival != nil && *u.ActualArrival != "" && !ValidTime(*u.ActualArrival) {
		return ErrInvalidTime
	}
	if u.Status != nil && !u.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ValidDate reports whether s is a zero-padded "YYYY-MM-DD" calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil && len(s) == len(dateLayout)
}

// ValidTime reports whether s is a zero-padded 24-hour "HH:MM" time of day.
func ValidTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil && len(s) == len(timeLayout)
}

// DateOf formats the calendar date of t.
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}
