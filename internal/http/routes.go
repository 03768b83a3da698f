package http

import (
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/service"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Config *config.Config
	Tasks  *service.TaskService
	Auth   *service.AuthService
	Hub    *ws.Hub
	Pinger db.Pinger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.Tasks, d.Auth, d.Hub, cfg.CookieSecure)
	healthHandler := handlers.NewHealthHandler(d.Pinger, cfg.StorageDriver, cfg.AppVersion)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	session := middleware.Session(d.Auth)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.SimpleRateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow), session)
	registerAPIRoutes(v1, h, cfg)

	// unversioned alias of v1
	api := r.Group("/api")
	api.Use(middleware.SimpleRateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow), session)
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, cfg)

	// Procedure socket
	r.GET("/ws", session, middleware.RequireUser(),
		ws.HandleWS(d.Hub, ws.NewDispatcher(d.Tasks), cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	authRL := middleware.SimpleRateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
	mutationRL := middleware.UserRateLimit("mutation", cfg.MutationRateLimit, cfg.MutationRateWindow)

	// Auth
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authRL, h.Register)
		authGroup.POST("/login", authRL, h.Login)
		authGroup.GET("/me", h.Me)
		authGroup.POST("/logout", h.Logout)
	}

	// Tasks
	tasks := api.Group("/tasks")
	tasks.Use(middleware.RequireUser())
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", mutationRL, h.CreateTask)
		tasks.PATCH("/:id", mutationRL, h.UpdateTask)
		tasks.DELETE("/:id", mutationRL, h.DeleteTask)
		tasks.PATCH("/:id/toggle", mutationRL, h.ToggleTask)
	}
}
