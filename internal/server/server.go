package server

import (
	"database/sql"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/config"
	"github.com/temple-keepers/temple-keepers-sub000/internal/handlers"
	"github.com/temple-keepers/temple-keepers-sub000/internal/middleware"
	"github.com/temple-keepers/temple-keepers-sub000/internal/repository"
	"github.com/temple-keepers/temple-keepers-sub000/internal/services"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config) *Server {
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)
	recipeRepo := repository.NewRecipeRepository(database)
	mealPlanRepo := repository.NewMealPlanRepository(database)
	pantryRepo := repository.NewPantryRepository(database)
	shoppingRepo := repository.NewShoppingListRepository(database)
	checkInRepo := repository.NewCheckInRepository(database)
	devotionalRepo := repository.NewDevotionalRepository(database)
	activityRepo := repository.NewActivityRepository(database)

	classifier := services.NewClassifier(services.DefaultKeywords())
	points := services.NewPointsService(activityRepo, services.DefaultPointsConfig())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	planner := services.NewPlannerService(recipeRepo, mealPlanRepo, points, rng)
	shopping := services.NewShoppingService(mealPlanRepo, shoppingRepo, pantryRepo, classifier, points)

	recipeHandler := handlers.NewRecipeHandler(recipeRepo, mealPlanRepo, points)
	mealHandler := handlers.NewMealHandler(mealPlanRepo, planner)
	pantryHandler := handlers.NewPantryHandler(pantryRepo, classifier)
	shoppingHandler := handlers.NewShoppingHandler(shopping, shoppingRepo)
	checkInHandler := handlers.NewCheckInHandler(checkInRepo, points)
	devotionalHandler := handlers.NewDevotionalHandler(devotionalRepo)
	apiHandler := handlers.NewAPIHandler(tokenRepo, userRepo, points)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(tokenRepo, userRepo, cfg.AdminAPIToken))

		r.Get("/api/recipes", recipeHandler.List)
		r.Post("/api/recipes", recipeHandler.Create)
		r.Get("/api/recipes/{id}", recipeHandler.Get)
		r.Put("/api/recipes/{id}", recipeHandler.Update)
		r.Delete("/api/recipes/{id}", recipeHandler.Delete)

		r.Get("/api/meal-plans", mealHandler.ListPlans)
		r.Post("/api/meal-plans", mealHandler.CreatePlan)
		r.Get("/api/meal-plans/{id}", mealHandler.GetPlan)
		r.Delete("/api/meal-plans/{id}", mealHandler.DeletePlan)
		r.Post("/api/meal-plans/{id}/days", mealHandler.AddDay)
		r.Delete("/api/meal-plans/{id}/days/{dayID}", mealHandler.RemoveDay)
		r.Put("/api/meal-plans/{id}/days/{dayID}", mealHandler.MoveDay)
		r.Post("/api/meal-plans/{id}/generate", mealHandler.Generate)
		r.Get("/api/meal-plans/{id}/ical", mealHandler.ICalExport)

		r.Post("/api/meal-plans/{id}/shopping-list", shoppingHandler.Generate)
		r.Get("/api/meal-plans/{id}/shopping-list", shoppingHandler.GetForPlan)
		r.Get("/api/shopping-lists", shoppingHandler.List)
		r.Post("/api/shopping-lists/{id}/items", shoppingHandler.AddItem)
		r.Post("/api/shopping-lists/{id}/items/{index}/toggle", shoppingHandler.ToggleItem)
		r.Delete("/api/shopping-lists/{id}/items/{index}", shoppingHandler.DeleteItem)
		r.Put("/api/shopping-lists/{id}/items", shoppingHandler.ReplaceItems)

		r.Get("/api/pantry", pantryHandler.List)
		r.Post("/api/pantry", pantryHandler.Create)
		r.Delete("/api/pantry/{id}", pantryHandler.Delete)

		r.Post("/api/checkins", checkInHandler.Submit)
		r.Get("/api/checkins", checkInHandler.List)

		r.Get("/api/devotionals", devotionalHandler.Today)
		r.Get("/api/devotionals/today", devotionalHandler.Today)

		r.Get("/api/progress", apiHandler.Progress)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/api/users", apiHandler.CreateUser)
			r.Post("/api/tokens", apiHandler.CreateToken)
			r.Delete("/api/tokens/{id}", apiHandler.DeleteToken)
			r.Post("/api/devotionals", devotionalHandler.Create)
		})
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}

func (server *Server) Handler() http.Handler {
	return server.router
}
