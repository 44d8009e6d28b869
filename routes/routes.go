package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/medchat-gateway/app"
	"github.com/upb/medchat-gateway/handlers"
	"github.com/upb/medchat-gateway/middleware"
	"github.com/upb/medchat-gateway/services"
)

// requestTimeout caps a whole HTTP request, routing included.
const requestTimeout = 60 * time.Second

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	// CORS middleware
	r.Use(cors.Handler(corsOptions(deps.Config.CORS.AllowedOrigins)))

	// Health check endpoints
	r.Get("/health", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)
	r.Get("/status", deps.HealthHandler.HandleStatus)

	// Chat
	r.Post("/chat", deps.ChatHandler.HandleChat)
	r.Get("/chat", deps.ChatHandler.HandleChatUsage)

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.HandleServiceError(w, services.ErrEndpointNotFound, deps.Logger)
	})

	return r
}

// corsOptions allows any origin unless an allow-list is configured.
func corsOptions(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}
}
