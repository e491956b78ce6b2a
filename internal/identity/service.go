package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/careconnect/guardian-api/pkg/logging"
)

// ProfileSeeder creates the initial guardian profile when an account is
// registered. Implemented by the profiles service.
type ProfileSeeder interface {
	CreateInitial(ctx context.Context, uid, name, email string) error
}

// Service implements signup, login, logout, and current-user lookup.
type Service struct {
	accounts Store
	tokens   *TokenIssuer
	revoker  Revoker
	profiles ProfileSeeder
	logger   *logging.Logger
}

// NewService creates the identity service. profiles may be nil when no
// profile store is wired.
func NewService(accounts Store, tokens *TokenIssuer, revoker Revoker, profiles ProfileSeeder, logger *logging.Logger) *Service {
	if accounts == nil {
		panic("identity: account store cannot be nil")
	}
	if tokens == nil {
		panic("identity: token issuer cannot be nil")
	}
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{accounts: accounts, tokens: tokens, revoker: revoker, profiles: profiles, logger: logger}
}

// SignUp registers a new guardian account and opens a session.
func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to hash password: %w", err)
	}

	account := &Account{Email: req.Email, PasswordHash: string(hash)}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	if s.profiles != nil {
		if err := s.profiles.CreateInitial(ctx, account.ID, req.Name, req.Email); err != nil {
			// the account exists; profile completion can retry later
			s.logger.Error("failed to seed guardian profile", "user_id", account.ID, "error", err)
		}
	}

	s.logger.Info("guardian signed up", "user_id", account.ID)
	return s.openSession(account)
}

// SignIn verifies the credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*Session, error) {
	email := NormalizeEmail(req.Email)
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("guardian signed in", "user_id", account.ID)
	return s.openSession(account)
}

// SignOut revokes the presented token until its natural expiry.
func (s *Service) SignOut(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.logger.Info("guardian signed out", "user_id", claims.Subject)
	return nil
}

// Authenticate verifies a presented token and returns the account id it
// belongs to. Revoked tokens are rejected.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (string, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return "", err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// CurrentUser returns the account behind an authenticated session.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*Account, error) {
	return s.accounts.GetByID(ctx, userID)
}

func (s *Service) openSession(account *Account) (*Session, error) {
	token, claims, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    account.ID,
		Email:     account.Email,
	}, nil
}
