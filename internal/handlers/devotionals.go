package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
)

type DevotionalHandler struct {
	devotionalRepo repository.DevotionalRepository
}

func NewDevotionalHandler(devotionalRepo repository.DevotionalRepository) *DevotionalHandler {
	return &DevotionalHandler{devotionalRepo: devotionalRepo}
}

type devotionalRequest struct {
	Date      string `json:"date"`
	Title     string `json:"title"`
	Scripture string `json:"scripture"`
	Body      string `json:"body"`
}

func (handler *DevotionalHandler) Today(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	devotional, err := handler.devotionalRepo.FindByDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusNotFound, "no devotional for date")
		return
	}
	writeJSON(w, http.StatusOK, devotional)
}

func (handler *DevotionalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request devotionalRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if request.Date == "" || request.Title == "" {
		writeError(w, http.StatusBadRequest, "date and title are required")
		return
	}

	devotional, err := handler.devotionalRepo.Create(r.Context(), models.Devotional{
		Date:      request.Date,
		Title:     request.Title,
		Scripture: request.Scripture,
		Body:      request.Body,
	})
	if err != nil {
		slog.Error("creating devotional", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create devotional")
		return
	}
	writeJSON(w, http.StatusCreated, devotional)
}
