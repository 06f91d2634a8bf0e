package services

import (
	"context"
	"testing"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	log := newTestLogger(t)
	service, err := NewAuthService(log, db, repos.NewUserRepo(db, log), repos.NewUserTokenRepo(db, log))
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return service
}

func registerTestUser(t *testing.T, service AuthService) *AuthResult {
	t.Helper()
	result, err := service.Register(context.Background(), &RegisterRequest{
		Email:     "Candidate@Example.com",
		Password:  "correct-horse",
		FirstName: "Avery",
		LastName:  "Chen",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return result
}

func TestRegisterAndLogin(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result := registerTestUser(t, service)
	if result.User.Email != "candidate@example.com" {
		t.Errorf("email not normalized: %q", result.User.Email)
	}
	if result.User.Password == "correct-horse" {
		t.Error("password stored in plaintext")
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Error("registration did not issue tokens")
	}

	login, err := service.Login(ctx, &LoginRequest{Email: "candidate@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Error("login resolved a different user")
	}

	if _, err := service.Login(ctx, &LoginRequest{Email: "candidate@example.com", Password: "wrong"}); !apierr.IsUnauthorized(err) {
		t.Errorf("wrong password error = %v, want unauthorized", err)
	}
	if _, err := service.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "x"}); !apierr.IsUnauthorized(err) {
		t.Errorf("unknown user error = %v, want unauthorized", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, &RegisterRequest{Email: "not-an-email", Password: "long-enough"}); !apierr.IsValidation(err) {
		t.Errorf("bad email error = %v, want validation error", err)
	}
	if _, err := service.Register(ctx, &RegisterRequest{Email: "a@b.com", Password: "short"}); !apierr.IsValidation(err) {
		t.Errorf("short password error = %v, want validation error", err)
	}

	registerTestUser(t, service)
	_, err := service.Register(ctx, &RegisterRequest{Email: "candidate@example.com", Password: "correct-horse"})
	if !apierr.IsConflict(err) {
		t.Errorf("duplicate email error = %v, want conflict", err)
	}
}

func TestSetContextFromToken(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result := registerTestUser(t, service)

	authedCtx, err := service.SetContextFromToken(ctx, result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != result.User.ID {
		t.Error("request data not populated from token")
	}
	if rd.Email != result.User.Email {
		t.Errorf("request data email %q, want %q", rd.Email, result.User.Email)
	}

	if _, err := service.SetContextFromToken(ctx, "not-a-jwt"); !apierr.IsUnauthorized(err) {
		t.Errorf("garbage token error = %v, want unauthorized", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result := registerTestUser(t, service)

	refreshed, err := service.Refresh(ctx, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Tokens.AccessToken == result.Tokens.AccessToken {
		t.Error("refresh did not rotate the access token")
	}

	// The old pair is retired; using it again must fail.
	if _, err := service.Refresh(ctx, result.Tokens.RefreshToken); !apierr.IsUnauthorized(err) {
		t.Errorf("reused refresh token error = %v, want unauthorized", err)
	}
	if _, err := service.SetContextFromToken(ctx, result.Tokens.AccessToken); !apierr.IsUnauthorized(err) {
		t.Errorf("retired access token error = %v, want unauthorized", err)
	}
	if _, err := service.SetContextFromToken(ctx, refreshed.Tokens.AccessToken); err != nil {
		t.Errorf("new access token rejected: %v", err)
	}
}

func TestLogoutRevokesTokens(t *testing.T) {
	service := newAuthService(t)
	ctx := context.Background()

	result := registerTestUser(t, service)
	if err := service.Logout(ctx, result.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := service.SetContextFromToken(ctx, result.Tokens.AccessToken); !apierr.IsUnauthorized(err) {
		t.Errorf("post-logout token error = %v, want unauthorized", err)
	}
	if _, err := service.Refresh(ctx, result.Tokens.RefreshToken); !apierr.IsUnauthorized(err) {
		t.Errorf("post-logout refresh error = %v, want unauthorized", err)
	}
}
