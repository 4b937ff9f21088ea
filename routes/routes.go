package routes

import (
	"net/http"

	"github.com/Marinovinc/TournamentMaster/handlers"
	"github.com/Marinovinc/TournamentMaster/middleware"
	"github.com/Marinovinc/TournamentMaster/models"
	"github.com/Marinovinc/TournamentMaster/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes собирает все маршруты API на одном chi-роутере.
func SetupRoutes(
	router *chi.Mux,
	authService services.AuthService,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	zoneHandler *handlers.FishingZoneHandler,
	catchHandler *handlers.CatchHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	registrationHandler *handlers.RegistrationHandler,
	speciesHandler *handlers.SpeciesHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(authService)
	organizerOnly := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)
	judgeOnly := middleware.Authorize(models.RoleJudge, models.RoleOrganizer, models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
		})
	})

	router.Get("/species", speciesHandler.List)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты просмотра
		r.Get("/", tournamentHandler.List)
		r.Get("/{id}", tournamentHandler.Get)
		r.Get("/{id}/stats", tournamentHandler.Stats)
		r.Get("/{id}/zones", zoneHandler.List)
		r.Get("/{id}/leaderboard", leaderboardHandler.Get)
		r.Get("/{id}/leaderboard/top", leaderboardHandler.Top)
		r.Get("/{id}/species-scoring", speciesHandler.ListScoring)

		// Участники
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/{id}/ws", webSocketHandler.Subscribe)
			r.Get("/{id}/leaderboard/me", leaderboardHandler.MyPosition)
			r.Post("/{id}/register", registrationHandler.Register)
			r.Get("/{id}/register", registrationHandler.GetOwn)
			r.Delete("/{id}/register", registrationHandler.Withdraw)
			r.Post("/{id}/catches", catchHandler.Submit)
		})

		// Судьи и организаторы
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(judgeOnly)
			r.Get("/{id}/catches", catchHandler.ListByTournament)
			r.Get("/{id}/catches/pending", catchHandler.ListPending)
		})

		// Только организаторы
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)

			r.Post("/", tournamentHandler.Create)
			r.Put("/{id}", tournamentHandler.Update)
			r.Delete("/{id}", tournamentHandler.Delete)
			r.Post("/{id}/logo", tournamentHandler.UploadLogo)

			r.Post("/{id}/publish", tournamentHandler.Publish)
			r.Post("/{id}/open-registration", tournamentHandler.OpenRegistration)
			r.Post("/{id}/close-registration", tournamentHandler.CloseRegistration)
			r.Post("/{id}/start", tournamentHandler.Start)
			r.Post("/{id}/complete", tournamentHandler.Complete)
			r.Post("/{id}/cancel", tournamentHandler.Cancel)

			r.Post("/{id}/zones", zoneHandler.Create)
			r.Put("/{id}/species-scoring", speciesHandler.SetScoring)
		})
	})

	router.Route("/zones", func(r chi.Router) {
		r.Get("/{id}", zoneHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Put("/{id}", zoneHandler.Update)
			r.Delete("/{id}", zoneHandler.Delete)
		})
	})

	router.Route("/catches", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/{id}", catchHandler.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(judgeOnly)
			r.Post("/{id}/approve", catchHandler.Approve)
			r.Post("/{id}/reject", catchHandler.Reject)
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(organizerOnly)
		r.Post("/{id}/confirm", registrationHandler.Confirm)
		r.Post("/{id}/reject", registrationHandler.Reject)
	})
}
