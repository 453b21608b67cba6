package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
)

// APIHandler covers token administration and the progress endpoint.
type APIHandler struct {
	tokenRepo repository.APITokenRepository
	userRepo  repository.UserRepository
	points    *services.PointsService
}

func NewAPIHandler(tokenRepo repository.APITokenRepository, userRepo repository.UserRepository, points *services.PointsService) *APIHandler {
	return &APIHandler{tokenRepo: tokenRepo, userRepo: userRepo, points: points}
}

type createTokenRequest struct {
	Name      string `json:"name"`
	Scope     string `json:"scope"`
	UserID    string `json:"user_id"`
	ExpiresIn *int   `json:"expires_in_days"`
}

type createUserRequest struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

func (handler *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var request createUserRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Email == "" || request.Name == "" {
		writeError(w, http.StatusBadRequest, "email and name are required")
		return
	}

	user, err := handler.userRepo.Create(r.Context(), models.User{
		Email: request.Email,
		Name:  request.Name,
		Role:  request.Role,
	})
	if err != nil {
		slog.Error("creating user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (handler *APIHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request createTokenRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	userID := request.UserID
	if userID == "" {
		userID = middleware.GetUser(ctx).ID
	}
	if _, err := handler.userRepo.FindByID(ctx, userID); err != nil {
		writeError(w, http.StatusBadRequest, "unknown user")
		return
	}

	buffer := make([]byte, 32)
	if _, err := rand.Read(buffer); err != nil {
		slog.Error("generating token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	rawToken := hex.EncodeToString(buffer)

	token := models.APIToken{
		Name:            request.Name,
		TokenHash:       repository.HashToken(rawToken),
		Scope:           request.Scope,
		CreatedByUserID: userID,
	}
	if request.ExpiresIn != nil {
		expiresAt := time.Now().AddDate(0, 0, *request.ExpiresIn)
		token.ExpiresAt = &expiresAt
	}

	created, err := handler.tokenRepo.Create(ctx, token)
	if err != nil {
		slog.Error("creating api token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	// The raw token is shown exactly once; only its hash is stored.
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    created.ID,
		"name":  created.Name,
		"token": rawToken,
	})
}

func (handler *APIHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := handler.tokenRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("deleting api token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *APIHandler) Progress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	progress, err := handler.points.Progress(ctx, user.ID)
	if err != nil {
		slog.Error("loading progress", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
