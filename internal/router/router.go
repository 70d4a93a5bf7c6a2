package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/lms-admin-mock/internal/config"
	"github.com/stemsi/lms-admin-mock/internal/handler"
	"github.com/stemsi/lms-admin-mock/internal/middleware"
	"github.com/stemsi/lms-admin-mock/internal/response"
	"github.com/stemsi/lms-admin-mock/internal/service"
)

// roleTableMaxAge is how long clients may cache the role table.
const roleTableMaxAge = 3600

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Role     *handler.RoleHandler
	User     *handler.UserHandler
	Exams    *handler.RecordHandler
	Webinars *handler.RecordHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// loginLimiter may be nil to disable login rate limiting.
func SetupRouter(
	authService *service.AuthService,
	users middleware.UserLookup,
	handlers *Handlers,
	loginLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.GinMode != gin.TestMode {
		router.Use(gin.Logger())
	}

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.BodyLimit(int64(cfg.StorageQuotaBytes)))
	router.Use(middleware.Brotli())

	// Every authenticated route re-checks the account behind the token.
	session := []gin.HandlerFunc{middleware.RequireJWT(authService), middleware.RequireActiveUser(users)}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "storage": cfg.StorageBackend})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		login := []gin.HandlerFunc{handlers.Auth.Login}
		if loginLimiter != nil {
			login = append([]gin.HandlerFunc{loginLimiter.Middleware()}, login...)
		}
		auth.POST("/login", login...)
		auth.GET("/me", append(session, handlers.Auth.Me)...)
	}

	// ─── 2. Role Table (Public, Cached) ────────────────────────────────
	roles := router.Group("/api/v1/roles")
	roles.Use(middleware.CacheControl(roleTableMaxAge))
	{
		roles.GET("", handlers.Role.List)
		roles.GET("/:role/manageable", handlers.Role.Manageable)
	}

	// ─── 3. Authenticated API (JWT) ────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(session...)
	api.Use(middleware.NoStore())
	{
		registerRecordRoutes(api.Group("/exams"), handlers.Exams)
		registerRecordRoutes(api.Group("/webinars"), handlers.Webinars)

		// Per-target checks happen in the user service.
		users := api.Group("/users")
		{
			users.GET("", handlers.User.List)
			users.POST("", handlers.User.Create)
			users.PATCH("/:id/status", handlers.User.UpdateStatus)
			users.DELETE("/:id", handlers.User.Delete)
		}
	}

	// ─── 4. WebSocket Group (Query Token) ──────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService), middleware.RequireActiveUser(users))
	{
		ws.GET("/events", handlers.WS.ChangeFeed)
	}

	return router
}

// registerRecordRoutes mounts the mock CRUD surface of one record type.
// Any authenticated user may read; writes need a staff role.
func registerRecordRoutes(g *gin.RouterGroup, h *handler.RecordHandler) {
	staff := middleware.RequireStaff()

	g.GET("", h.List)
	g.GET("/export", h.Export)
	g.GET("/schedules", h.ListSchedules)
	g.POST("/schedules", staff, h.Schedule)
	g.GET("/:id", h.Get)
	g.POST("", staff, h.Create)
	g.PATCH("/:id", staff, h.Update)
	g.DELETE("/:id", staff, h.Delete)
}
