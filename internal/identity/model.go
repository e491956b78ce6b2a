package identity

import (
	"strings"
	"time"
)

// minPasswordLength matches the constraint the mobile client enforces.
const minPasswordLength = 6

// Account is a guardian login. The password hash never leaves the server.
type Account struct {
	ID           string    `json:"id" dynamodbav:"id"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalizes the email and checks the fields.
func (r *SignUpRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
	if !ValidEmail(r.Email) {
		return ErrInvalidEmail
	}
	if len(r.Password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// SignInRequest is the request body for POST /auth/login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned to the client after signup or login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail performs a shape check, not full RFC validation.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}
