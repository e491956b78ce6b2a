package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

type seededProfile struct {
	uid, name, email string
}

type fakeSeeder struct {
	seeded []seededProfile
	err    error
}

func (f *fakeSeeder) CreateInitial(ctx context.Context, uid, name, email string) error {
	if f.err != nil {
		return f.err
	}
	f.seeded = append(f.seeded, seededProfile{uid: uid, name: name, email: email})
	return nil
}

func newTestService(seeder ProfileSeeder) *Service {
	tokens := NewTokenIssuer("test-secret", "guardian-api", time.Hour)
	return NewService(NewInMemoryStore(), tokens, NewMemoryRevoker(), seeder, nil)
}

func TestSignUpOpensSessionAndSeedsProfile(t *testing.T) {
	seeder := &fakeSeeder{}
	svc := newTestService(seeder)

	sess, err := svc.SignUp(context.Background(), &SignUpRequest{
		Name:     "Dana Reyes",
		Email:    "Dana@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if sess.Token == "" || sess.UserID == "" {
		t.Fatalf("incomplete session %+v", sess)
	}
	if sess.Email != "dana@example.com" {
		t.Fatalf("email not normalized: %q", sess.Email)
	}

	if len(seeder.seeded) != 1 {
		t.Fatalf("expected 1 seeded profile, got %d", len(seeder.seeded))
	}
	if seeder.seeded[0].uid != sess.UserID || seeder.seeded[0].name != "Dana Reyes" {
		t.Fatalf("unexpected seed %+v", seeder.seeded[0])
	}

	uid, err := svc.Authenticate(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if uid != sess.UserID {
		t.Fatalf("token subject %q, want %q", uid, sess.UserID)
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(nil)
	req := &SignUpRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22"}

	if _, err := svc.SignUp(context.Background(), req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.SignUp(context.Background(), req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc := newTestService(nil)

	cases := []struct {
		name string
		req  SignUpRequest
		want error
	}{
		{"no at sign", SignUpRequest{Email: "dana.example.com", Password: "hunter22"}, ErrInvalidEmail},
		{"no domain dot", SignUpRequest{Email: "dana@example", Password: "hunter22"}, ErrInvalidEmail},
		{"short password", SignUpRequest{Email: "dana@example.com", Password: "abc"}, ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SignUp(context.Background(), &tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSignUpSurvivesSeederFailure(t *testing.T) {
	svc := newTestService(&fakeSeeder{err: errors.New("profile store down")})

	sess, err := svc.SignUp(context.Background(), &SignUpRequest{
		Name: "Dana", Email: "dana@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("signup should not fail on profile seed error: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a session despite seed failure")
	}
}

func TestSignInVerifiesPassword(t *testing.T) {
	svc := newTestService(nil)
	if _, err := svc.SignUp(context.Background(), &SignUpRequest{
		Name: "Dana", Email: "dana@example.com", Password: "hunter22",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	sess, err := svc.SignIn(context.Background(), &SignInRequest{Email: "DANA@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a token")
	}

	if _, err := svc.SignIn(context.Background(), &SignInRequest{Email: "dana@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.SignIn(context.Background(), &SignInRequest{Email: "nobody@example.com", Password: "hunter22"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	svc := newTestService(nil)
	sess, err := svc.SignUp(context.Background(), &SignUpRequest{
		Name: "Dana", Email: "dana@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.SignOut(context.Background(), sess.Token); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token must not authenticate, got %v", err)
	}

	// a fresh login works; only the revoked token is dead
	again, err := svc.SignIn(context.Background(), &SignInRequest{Email: "dana@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("signin after signout: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), again.Token); err != nil {
		t.Fatalf("fresh token should authenticate: %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	svc := newTestService(nil)
	sess, err := svc.SignUp(context.Background(), &SignUpRequest{
		Name: "Dana", Email: "dana@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	account, err := svc.CurrentUser(context.Background(), sess.UserID)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if account.Email != "dana@example.com" {
		t.Fatalf("unexpected account %+v", account)
	}

	if _, err := svc.CurrentUser(context.Background(), "nobody"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
