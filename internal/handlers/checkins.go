package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
)

type CheckInHandler struct {
	checkInRepo repository.CheckInRepository
	points      *services.PointsService
}

func NewCheckInHandler(checkInRepo repository.CheckInRepository, points *services.PointsService) *CheckInHandler {
	return &CheckInHandler{checkInRepo: checkInRepo, points: points}
}

type checkInRequest struct {
	Date     string   `json:"date"`
	Mood     int      `json:"mood"`
	Energy   int      `json:"energy"`
	Symptoms []string `json:"symptoms"`
	Notes    string   `json:"notes"`
}

func (handler *CheckInHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	var request checkInRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date := request.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if request.Mood < 1 || request.Mood > 5 || request.Energy < 1 || request.Energy > 5 {
		writeError(w, http.StatusBadRequest, "mood and energy must be 1-5")
		return
	}

	// A repeat submission for the same date is an edit, not a new check-in,
	// and earns no extra points.
	_, alreadyCheckedIn := handler.existing(r, user.ID, date)

	checkIn, err := handler.checkInRepo.Upsert(ctx, models.CheckIn{
		UserID:   user.ID,
		Date:     date,
		Mood:     request.Mood,
		Energy:   request.Energy,
		Symptoms: request.Symptoms,
		Notes:    request.Notes,
	})
	if err != nil {
		slog.Error("saving check-in", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save check-in")
		return
	}

	if !alreadyCheckedIn {
		if err := handler.points.Award(ctx, user.ID, models.ActivityCheckIn); err != nil {
			slog.Error("awarding check-in points", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, checkIn)
}

func (handler *CheckInHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	checkIns, err := handler.checkInRepo.FindByUser(ctx, user.ID,
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		slog.Error("listing check-ins", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load check-ins")
		return
	}
	writeJSON(w, http.StatusOK, checkIns)
}

func (handler *CheckInHandler) existing(r *http.Request, userID string, date string) (models.CheckIn, bool) {
	checkIn, err := handler.checkInRepo.FindByUserAndDate(r.Context(), userID, date)
	return checkIn, err == nil
}
