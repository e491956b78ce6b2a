package profiles

import (
	"errors"
	"strings"
	"time"
)

// Relationship describes how the guardian relates to the person receiving
// care.
type Relationship string

const (
	RelationshipParent   Relationship = "Parent"
	RelationshipRelative Relationship = "Relative"
	RelationshipGuardian Relationship = "Guardian"
)

// Valid reports whether the relationship is one of the known values.
func (r Relationship) Valid() bool {
	switch r {
	case RelationshipParent, RelationshipRelative, RelationshipGuardian:
		return true
	}
	return false
}

var (
	// ErrProfileNotFound is returned when no profile exists for the user.
	ErrProfileNotFound = errors.New("profiles: profile not found")

	// ErrInvalidRelationship is returned for an unknown relationship value.
	ErrInvalidRelationship = errors.New("profiles: invalid relationship")
)

// UserProfile is a guardian's profile. UID matches the account id; profiles
// are created at signup and never deleted.
type UserProfile struct {
	UID          string       `json:"uid" dynamodbav:"uid"`
	Name         string       `json:"name" dynamodbav:"name"`
	Email        string       `json:"email" dynamodbav:"email"`
	Phone        string       `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Relationship Relationship `json:"relationship,omitempty" dynamodbav:"relationship,omitempty"`
	PhotoURL     string       `json:"photoURL,omitempty" dynamodbav:"photoURL,omitempty"`
	CreatedAt    time.Time    `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Update carries a partial profile edit. Nil fields are untouched.
type Update struct {
	Name         *string       `json:"name"`
	Phone        *string       `json:"phone"`
	Relationship *Relationship `json:"relationship"`
}

// Validate checks the populated fields.
func (u *Update) Validate() error {
	if u.Name != nil {
		trimmed := strings.TrimSpace(*u.Name)
		u.Name = &trimmed
	}
	if u.Relationship != nil && !u.Relationship.Valid() {
		return ErrInvalidRelationship
	}
	return nil
}
