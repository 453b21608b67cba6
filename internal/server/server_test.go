package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/temple-keepers/temple-keepers-sub000/internal/config"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/server"
	"github.com/temple-keepers/temple-keepers-sub000/internal/testutil"
)

const bootstrapToken = "test-bootstrap-token"

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	srv := server.New(db, config.Config{AdminAPIToken: bootstrapToken, Port: "0"})
	return srv.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if out != nil && recorder.Code < 300 {
		if err := json.Unmarshal(recorder.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decoding response %q: %v", method, path, recorder.Body.String(), err)
		}
	}
	return recorder
}

// provisionMember creates a member and an API token for them through the
// admin bootstrap token, mirroring first-run provisioning.
func provisionMember(t *testing.T, handler http.Handler) string {
	t.Helper()

	var user struct {
		ID string
	}
	recorder := doJSON(t, handler, http.MethodPost, "/api/users", bootstrapToken,
		map[string]string{"email": "grace@example.com", "name": "Grace"}, &user)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating user: %d %s", recorder.Code, recorder.Body.String())
	}

	var token struct {
		Token string `json:"token"`
	}
	recorder = doJSON(t, handler, http.MethodPost, "/api/tokens", bootstrapToken,
		map[string]string{"name": "phone", "user_id": user.ID}, &token)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating token: %d %s", recorder.Code, recorder.Body.String())
	}
	return token.Token
}

func TestHealthEndpointIsPublic(t *testing.T) {
	handler := setupServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", recorder.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	handler := setupServer(t)
	recorder := doJSON(t, handler, http.MethodGet, "/api/recipes", "", nil, nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", recorder.Code)
	}
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	handler := setupServer(t)
	memberToken := provisionMember(t, handler)

	recorder := doJSON(t, handler, http.MethodPost, "/api/users", memberToken,
		map[string]string{"email": "x@example.com", "name": "X"}, nil)
	if recorder.Code != http.StatusForbidden {
		t.Errorf("expected 403 for member on admin route, got %d", recorder.Code)
	}
}

func TestPlanToShoppingListFlow(t *testing.T) {
	handler := setupServer(t)
	memberToken := provisionMember(t, handler)

	// Enough recipes per meal type that every slot can be filled.
	for _, mealType := range []models.MealType{models.MealTypeBreakfast, models.MealTypeLunch, models.MealTypeDinner} {
		for i := 0; i < 3; i++ {
			recorder := doJSON(t, handler, http.MethodPost, "/api/recipes", memberToken, map[string]any{
				"title":     fmt.Sprintf("%s %d", mealType, i),
				"meal_type": mealType,
				"ingredients": []map[string]any{
					{"amount": 1, "unit": "cup", "item": "brown rice"},
					{"amount": 2, "unit": "", "item": "tomato"},
				},
			}, nil)
			if recorder.Code != http.StatusCreated {
				t.Fatalf("creating recipe: %d %s", recorder.Code, recorder.Body.String())
			}
		}
	}

	var plan struct {
		ID string
	}
	recorder := doJSON(t, handler, http.MethodPost, "/api/meal-plans", memberToken,
		map[string]string{"week_start": "2026-08-24", "title": "Week 35"}, &plan)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating plan: %d %s", recorder.Code, recorder.Body.String())
	}

	var days []models.MealPlanDay
	recorder = doJSON(t, handler, http.MethodPost, "/api/meal-plans/"+plan.ID+"/generate", memberToken,
		map[string]any{}, &days)
	if recorder.Code != http.StatusOK {
		t.Fatalf("generating plan: %d %s", recorder.Code, recorder.Body.String())
	}
	if len(days) != 21 {
		t.Fatalf("expected 21 generated slots, got %d", len(days))
	}

	var list struct {
		ID    string
		Items []models.ShoppingListItem
	}
	recorder = doJSON(t, handler, http.MethodPost, "/api/meal-plans/"+plan.ID+"/shopping-list", memberToken, nil, &list)
	if recorder.Code != http.StatusOK {
		t.Fatalf("generating shopping list: %d %s", recorder.Code, recorder.Body.String())
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 merged items, got %d: %+v", len(list.Items), list.Items)
	}
	// 21 slots, each contributing 1 cup of rice and 2 tomatoes.
	for _, item := range list.Items {
		switch item.Name {
		case "brown rice":
			if item.Amount == nil || *item.Amount != 21 {
				t.Errorf("expected 21 cups of rice, got %v", item.Amount)
			}
			if item.Category != models.CategoryGrains {
				t.Errorf("expected rice in %q, got %q", models.CategoryGrains, item.Category)
			}
		case "tomato":
			if item.Amount == nil || *item.Amount != 42 {
				t.Errorf("expected 42 tomatoes, got %v", item.Amount)
			}
		default:
			t.Errorf("unexpected item %q", item.Name)
		}
	}

	recorder = doJSON(t, handler, http.MethodPost, "/api/shopping-lists/"+list.ID+"/items/0/toggle", memberToken, nil, &list)
	if recorder.Code != http.StatusOK {
		t.Fatalf("toggling item: %d %s", recorder.Code, recorder.Body.String())
	}
	if !list.Items[0].Checked {
		t.Error("expected first item to be checked after toggle")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/meal-plans/"+plan.ID+"/ical", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	icalRecorder := httptest.NewRecorder()
	handler.ServeHTTP(icalRecorder, req)
	if icalRecorder.Code != http.StatusOK {
		t.Fatalf("exporting ical: %d", icalRecorder.Code)
	}
	feed := icalRecorder.Body.String()
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("expected an iCal feed with events")
	}
}

func TestCheckInAwardsPointsOnce(t *testing.T) {
	handler := setupServer(t)
	memberToken := provisionMember(t, handler)

	submit := map[string]any{"date": "2026-08-24", "mood": 4, "energy": 3}
	if recorder := doJSON(t, handler, http.MethodPost, "/api/checkins", memberToken, submit, nil); recorder.Code != http.StatusOK {
		t.Fatalf("submitting check-in: %d %s", recorder.Code, recorder.Body.String())
	}
	if recorder := doJSON(t, handler, http.MethodPost, "/api/checkins", memberToken, submit, nil); recorder.Code != http.StatusOK {
		t.Fatalf("resubmitting check-in: %d %s", recorder.Code, recorder.Body.String())
	}

	var progress models.Progress
	if recorder := doJSON(t, handler, http.MethodGet, "/api/progress", memberToken, nil, &progress); recorder.Code != http.StatusOK {
		t.Fatalf("fetching progress: %d %s", recorder.Code, recorder.Body.String())
	}
	if progress.TotalPoints != 10 {
		t.Errorf("expected a single check-in award of 10 points, got %d", progress.TotalPoints)
	}
}
