package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/auth"
	"github.com/tradelink/backend/internal/middleware"
)

// Router holds all handlers and creates the chi router.
type Router struct {
	authHandler       *AuthHandler
	profileHandler    *ProfileHandler
	connectionHandler *ConnectionHandler
	chatHandler       *ChatHandler
	dashboardHandler  *DashboardHandler
	healthHandler     *HealthHandler
	jwtManager        *auth.JWTManager
	allowedOrigins    []string
	logger            *zap.Logger
}

func NewRouter(
	authHandler *AuthHandler,
	profileHandler *ProfileHandler,
	connectionHandler *ConnectionHandler,
	chatHandler *ChatHandler,
	dashboardHandler *DashboardHandler,
	healthHandler *HealthHandler,
	jwtManager *auth.JWTManager,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:       authHandler,
		profileHandler:    profileHandler,
		connectionHandler: connectionHandler,
		chatHandler:       chatHandler,
		dashboardHandler:  dashboardHandler,
		healthHandler:     healthHandler,
		jwtManager:        jwtManager,
		allowedOrigins:    allowedOrigins,
		logger:            logger,
	}
}

// Setup configures and returns the chi router.
func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware(rt.allowedOrigins))
	r.Use(chimiddleware.Compress(5))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", rt.healthHandler.Health)
		r.Get("/ready", rt.healthHandler.Ready)
		r.Get("/live", rt.healthHandler.Live)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)
			r.Post("/google", rt.authHandler.GoogleLogin)
			r.Post("/refresh", rt.authHandler.Refresh)
			r.Post("/logout", rt.authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.jwtManager))

			r.Get("/me", rt.authHandler.Me)
			r.Put("/profile", rt.profileHandler.UpdateProfile)
			r.Get("/profiles/search", rt.profileHandler.Search)

			r.Get("/dashboard/stats", rt.dashboardHandler.GetStats)

			r.Route("/connections", func(r chi.Router) {
				r.Get("/", rt.connectionHandler.ListConnections)
				r.Post("/request", rt.connectionHandler.RequestConnection)
				r.Post("/respond", rt.connectionHandler.RespondConnection)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", rt.chatHandler.ListConversations)
				r.Post("/", rt.chatHandler.OpenConversation)
				r.Get("/{conversationId}/messages", rt.chatHandler.GetMessages)
				r.Post("/{conversationId}/messages", rt.chatHandler.SendMessage)
				r.Get("/{conversationId}/stream", rt.chatHandler.StreamConversation)
			})

			r.Get("/ws", rt.chatHandler.HandleWebSocket)
		})
	})

	return r
}
