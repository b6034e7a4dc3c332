package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pasos-retail/api/internal/config"
	"github.com/pasos-retail/api/internal/database"
	"github.com/pasos-retail/api/internal/enum"
	"github.com/pasos-retail/api/internal/handler"
	mw "github.com/pasos-retail/api/internal/middleware"
	"github.com/pasos-retail/api/internal/service"
	"github.com/pasos-retail/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, store scoping, and role-based middleware as needed.
func New(cfg *config.Config, store *database.Store, summarySvc *service.SummaryService, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",           // admin dev server
			"https://admin.pasosretail.cl",    // production back-office
			"https://caja.pasosretail.cl",     // in-store POS terminals
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(store, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/stores/{sid}/sales", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	saleService := service.NewSaleService(store)
	salesHandler := handler.NewSalesHandler(saleService, store, hub)
	summaryHandler := handler.NewSummaryHandler(summarySvc)
	reportsHandler := handler.NewReportsHandler(store)
	storesHandler := handler.NewStoresHandler(store)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Admin-only routes (not store-scoped)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			r.Get("/stores", storesHandler.List)
			r.Get("/summary", summaryHandler.AllStoresResume)
		})

		// Store-scoped routes
		r.Route("/stores/{sid}", func(r chi.Router) {
			r.Use(mw.RequireStore)

			r.Get("/", storesHandler.Get)
			r.Get("/summary", summaryHandler.StoreResume)
			r.Route("/sales", salesHandler.RegisterRoutes)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})
	})

	return r
}
