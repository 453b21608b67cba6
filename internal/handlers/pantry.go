package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
)

type PantryHandler struct {
	pantryRepo repository.PantryRepository
	classifier *services.Classifier
}

func NewPantryHandler(pantryRepo repository.PantryRepository, classifier *services.Classifier) *PantryHandler {
	return &PantryHandler{pantryRepo: pantryRepo, classifier: classifier}
}

type pantryItemRequest struct {
	ItemName string `json:"item_name"`
}

func (handler *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	items, err := handler.pantryRepo.FindByUser(ctx, user.ID)
	if err != nil {
		slog.Error("listing pantry items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load pantry")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (handler *PantryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	var request pantryItemRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(request.ItemName) == "" {
		writeError(w, http.StatusBadRequest, "item_name is required")
		return
	}

	// Category is assigned once, at insert time.
	item, err := handler.pantryRepo.Create(ctx, models.PantryItem{
		UserID:   user.ID,
		ItemName: request.ItemName,
		Category: handler.classifier.Categorize(request.ItemName),
	})
	if err != nil {
		slog.Error("creating pantry item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add pantry item")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (handler *PantryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := handler.pantryRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("deleting pantry item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete pantry item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
