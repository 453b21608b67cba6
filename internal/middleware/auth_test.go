package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/testutil"
)

func setupAuth(t *testing.T) (repository.APITokenRepository, repository.UserRepository, models.User) {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	tokenRepo := repository.NewAPITokenRepository(db)
	userRepo := repository.NewUserRepository(db)

	user, err := userRepo.Create(context.Background(), models.User{
		Email: "member@example.com",
		Name:  "Member",
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return tokenRepo, userRepo, user
}

func issueToken(t *testing.T, tokenRepo repository.APITokenRepository, userID, raw, scope string, expiresAt *time.Time) {
	t.Helper()
	_, err := tokenRepo.Create(context.Background(), models.APIToken{
		Name:            "test token",
		TokenHash:       repository.HashToken(raw),
		Scope:           scope,
		CreatedByUserID: userID,
		ExpiresAt:       expiresAt,
	})
	if err != nil {
		t.Fatalf("creating token: %v", err)
	}
}

func authProbe(t *testing.T, tokenRepo repository.APITokenRepository, userRepo repository.UserRepository, adminToken, header string) (*httptest.ResponseRecorder, models.User) {
	t.Helper()
	var seen models.User
	handler := middleware.APITokenAuth(tokenRepo, userRepo, adminToken)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = middleware.GetUser(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder, seen
}

func TestAPITokenAuth_ValidToken(t *testing.T) {
	tokenRepo, userRepo, user := setupAuth(t)
	issueToken(t, tokenRepo, user.ID, "secret-token", "api", nil)

	recorder, seen := authProbe(t, tokenRepo, userRepo, "", "Bearer secret-token")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if seen.ID != user.ID {
		t.Errorf("expected request user %s, got %s", user.ID, seen.ID)
	}
}

func TestAPITokenAuth_MissingOrBadToken(t *testing.T) {
	tokenRepo, userRepo, user := setupAuth(t)
	issueToken(t, tokenRepo, user.ID, "secret-token", "api", nil)

	for name, header := range map[string]string{
		"no header":   "",
		"wrong token": "Bearer nope",
	} {
		recorder, _ := authProbe(t, tokenRepo, userRepo, "", header)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, recorder.Code)
		}
	}
}

func TestAPITokenAuth_RejectsICalScope(t *testing.T) {
	tokenRepo, userRepo, user := setupAuth(t)
	issueToken(t, tokenRepo, user.ID, "feed-token", "ical", nil)

	recorder, _ := authProbe(t, tokenRepo, userRepo, "", "Bearer feed-token")
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("feed-scoped token should not reach the API, got %d", recorder.Code)
	}
}

func TestAPITokenAuth_RejectsExpiredToken(t *testing.T) {
	tokenRepo, userRepo, user := setupAuth(t)
	expired := time.Now().Add(-time.Hour)
	issueToken(t, tokenRepo, user.ID, "old-token", "api", &expired)

	recorder, _ := authProbe(t, tokenRepo, userRepo, "", "Bearer old-token")
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", recorder.Code)
	}
}

func TestAPITokenAuth_AdminBootstrapToken(t *testing.T) {
	tokenRepo, userRepo, _ := setupAuth(t)

	recorder, seen := authProbe(t, tokenRepo, userRepo, "bootstrap", "Bearer bootstrap")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if seen.Role != models.RoleAdmin {
		t.Errorf("bootstrap token should resolve to an admin, got role %q", seen.Role)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := middleware.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	member := context.WithValue(context.Background(), middleware.UserContextKey, models.User{Role: models.RoleMember})
	req := httptest.NewRequest(http.MethodPost, "/api/users", nil).WithContext(member)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusForbidden {
		t.Errorf("expected 403 for member, got %d", recorder.Code)
	}

	admin := context.WithValue(context.Background(), middleware.UserContextKey, models.User{Role: models.RoleAdmin})
	req = httptest.NewRequest(http.MethodPost, "/api/users", nil).WithContext(admin)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", recorder.Code)
	}
}
