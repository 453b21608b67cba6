package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/models"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
)

type ShoppingHandler struct {
	shopping     *services.ShoppingService
	shoppingRepo repository.ShoppingListRepository
}

func NewShoppingHandler(shopping *services.ShoppingService, shoppingRepo repository.ShoppingListRepository) *ShoppingHandler {
	return &ShoppingHandler{shopping: shopping, shoppingRepo: shoppingRepo}
}

type manualItemRequest struct {
	Name     string                 `json:"name"`
	Amount   *float64               `json:"amount"`
	Unit     string                 `json:"unit"`
	Category models.GroceryCategory `json:"category"`
}

type replaceItemsRequest struct {
	Items []models.ShoppingListItem `json:"items"`
}

// Generate aggregates the plan's recipes into the plan's shopping list,
// replacing any list generated earlier for the same plan.
func (handler *ShoppingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	list, err := handler.shopping.Generate(ctx, chi.URLParam(r, "id"), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			writeError(w, http.StatusNotFound, "meal plan not found")
			return
		}
		slog.Error("generating shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (handler *ShoppingHandler) GetForPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	list, err := handler.shoppingRepo.FindByPlanAndUser(ctx, chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (handler *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	lists, err := handler.shoppingRepo.FindByUser(ctx, user.ID)
	if err != nil {
		slog.Error("listing shopping lists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load shopping lists")
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (handler *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request manualItemRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	list, err := handler.shopping.AddManualItem(ctx, chi.URLParam(r, "id"), services.ManualItem{
		Name:     request.Name,
		Amount:   request.Amount,
		Unit:     request.Unit,
		Category: request.Category,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyItemName) {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		slog.Error("adding manual item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (handler *ShoppingHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	list, err := handler.shopping.ToggleItem(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		if errors.Is(err, services.ErrItemIndex) {
			writeError(w, http.StatusBadRequest, "item index out of range")
			return
		}
		slog.Error("toggling shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (handler *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}

	list, err := handler.shopping.RemoveItem(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		if errors.Is(err, services.ErrItemIndex) {
			writeError(w, http.StatusBadRequest, "item index out of range")
			return
		}
		slog.Error("removing shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (handler *ShoppingHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	var request replaceItemsRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := handler.shopping.ReplaceItems(r.Context(), chi.URLParam(r, "id"), request.Items); err != nil {
		slog.Error("replacing shopping items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update items")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
