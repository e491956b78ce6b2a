package visits

import "errors"

var (
	// ErrVisitNotFound is returned when a visit id does not exist
	ErrVisitNotFound = errors.New("visits: visit not found")

	// ErrMissingCaregiverName is returned when the caregiver name is blank
	ErrMissingCaregiverName = errors.New("visits: caregiver name is required")

	// ErrInvalidDate is returned when a scheduled date is not YYYY-MM-DD
	ErrInvalidDate = errors.New("visits: scheduled date must be YYYY-MM-DD")

	// ErrInvalidTime is returned when a time of day is not 24-hour HH:MM
	ErrInvalidTime = errors.New("visits: time must be 24-hour HH:MM")

	// ErrInvalidStatus is returned for an unknown status value
	ErrInvalidStatus = errors.New("visits: unknown status")
)
