package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gsmp/mentorship-backend/internal/config"
	"github.com/gsmp/mentorship-backend/internal/handler"
	"github.com/gsmp/mentorship-backend/internal/metrics"
	"github.com/gsmp/mentorship-backend/internal/middleware"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/response"
	"github.com/gsmp/mentorship-backend/internal/service"
	"github.com/rs/zerolog"
)

const mediaMaxAge = 24 * time.Hour

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Registration *handler.RegistrationHandler
	User         *handler.UserHandler
	Message      *handler.MessageHandler
	Course       *handler.CourseHandler
	Video        *handler.VideoHandler
	Import       *handler.ImportHandler
	System       *handler.SystemHandler
}

// Deps are the shared pieces the middleware chain needs.
type Deps struct {
	Config   *config.Config
	Tokens   *service.TokenService
	Accounts middleware.AccountLoader
	// Limiter guards the public auth routes. Nil disables limiting.
	Limiter *middleware.RateLimiter
	Metrics *metrics.Metrics
	Log     zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(deps Deps, handlers *Handlers) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	// Client IPs key the auth rate limiter; only listed proxies may forward them.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		deps.Log.Error().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// Request id first so the access log and recovery can tag their lines.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.Recovery(deps.Log))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality: middleware.DefaultBrotliConfig.Quality,
		Skipper: middleware.SkipPrefixes(handler.MediaPrefix, "/metrics"),
	}))

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// Stored uploads: intro videos, course videos and thumbnails.
	media := router.Group(handler.MediaPrefix)
	media.Use(middleware.CacheControl(mediaMaxAge))
	{
		media.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api/v1")

	// ─── 1. Public auth (rate limited) ─────────────────────────────────
	public := api.Group("")
	if deps.Limiter != nil {
		public.Use(deps.Limiter.Middleware())
	}
	public.Use(middleware.NoStore())
	{
		public.POST("/register/mentor", handlers.Registration.RegisterMentor)
		public.POST("/login", handlers.Auth.Login)
		public.POST("/send-otp", handlers.Auth.SendOTP)
		public.POST("/verify-otp", handlers.Auth.VerifyOTP)
		public.POST("/password-reset", handlers.Auth.ResetPassword)
		public.POST("/token/refresh", handlers.Auth.Refresh)
		public.POST("/logout", handlers.Auth.Logout)
	}

	// ─── 2. Authenticated ──────────────────────────────────────────────
	authed := api.Group("")
	authed.Use(
		middleware.RequireAuth(deps.Tokens),
		middleware.LoadAccount(deps.Accounts, deps.Log),
	)
	{
		authed.GET("/me", handlers.Auth.Me)
		authed.GET("/students", handlers.User.ListStudents)
		authed.GET("/pairings", handlers.User.ListPairings)
		authed.GET("/users/:id", handlers.User.GetUser)
		authed.POST("/send-message", handlers.Message.SendMessage)
		authed.GET("/firebase-token", handlers.Message.FirebaseToken)
	}

	// ─── 3. Catalog (reads for everyone, writes checked per operation) ─
	courses := authed.Group("/courses")
	{
		courses.GET("", handlers.Course.List)
		courses.POST("", handlers.Course.Create)
		courses.GET("/:id", handlers.Course.Get)
		courses.PUT("/:id", handlers.Course.Replace)
		courses.PATCH("/:id", handlers.Course.Patch)
		courses.DELETE("/:id", handlers.Course.Delete)
		courses.POST("/:id/toggle-active", handlers.Course.ToggleActive)
		courses.GET("/:id/videos", handlers.Course.Videos)
	}

	videos := authed.Group("/videos")
	{
		videos.GET("", handlers.Video.List)
		videos.POST("", handlers.Video.Upload)
		videos.GET("/mine", handlers.Video.Mine)
		videos.GET("/by-course", handlers.Video.ByCourse)
		videos.GET("/:id", handlers.Video.Get)
		videos.PUT("/:id", handlers.Video.Replace)
		videos.PATCH("/:id", handlers.Video.Patch)
		videos.DELETE("/:id", handlers.Video.Delete)
		videos.POST("/:id/toggle-active", handlers.Video.ToggleActive)
	}

	// ─── 4. Admin ──────────────────────────────────────────────────────
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	{
		admin.POST("/pairings", handlers.User.CreatePairing)
		admin.DELETE("/pairings", handlers.User.DeletePairing)
		admin.POST("/accounts/:id/activate", handlers.User.ActivateAccount)
		admin.POST("/students/import", handlers.Import.ImportStudents)
	}

	return router
}
