package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jungianjournals/journals-backend/config"
	_ "github.com/jungianjournals/journals-backend/docs"
	"github.com/jungianjournals/journals-backend/handlers"
	"github.com/jungianjournals/journals-backend/internal/websocket"
	"github.com/jungianjournals/journals-backend/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config                *config.Config
	JWTValidator          middleware.Validator
	Redis                 redis.UniversalClient
	HealthHandler         *handlers.HealthHandler
	ContentHandler        *handlers.ContentHandler
	RecommendationHandler *handlers.RecommendationHandler
	MemberHandler         *handlers.MemberHandler
	AuthHandler           *handlers.AuthHandler
	AdminHandler          *handlers.AdminHandler
	ActivityWSHandler     *websocket.Handler
	Logger                *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil && deps.Logger != nil {
		deps.Logger.Warnw("Invalid trusted proxy list, forwarded headers ignored", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.ErrorHandler())

	// Health and Metrics Routes (typically don't require auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
	authLimit := deps.Config.RateLimit.AuthRequestsPerMinute
	rateLimited := func(scope string) gin.HandlerFunc {
		return middleware.AuthRateLimiter(deps.Redis, scope, authLimit, window)
	}
	viewLimit := deps.Config.RateLimit.ViewRequestsPerMinute
	viewLimited := func(scope string) gin.HandlerFunc {
		return middleware.AuthRateLimiter(deps.Redis, scope, viewLimit, window)
	}

	v1 := r.Group("/v1")
	{
		// Content reads resolve the viewer when a token is present.
		public := v1.Group("")
		public.Use(middleware.OptionalAuthMiddleware(deps.JWTValidator))
		{
			videos := public.Group("/videos")
			videos.GET("", deps.ContentHandler.ListVideosHandler)
			videos.GET("/:id", deps.ContentHandler.GetVideoHandler)
			videos.POST("/:id/view", viewLimited("video_view"), deps.ContentHandler.RecordVideoViewHandler)
			videos.GET("/:id/recommendations", deps.RecommendationHandler.SimilarVideosHandler)
			videos.POST("/:id/recommendations", deps.RecommendationHandler.SimilarByEmbeddingHandler)

			blogs := public.Group("/blogs")
			blogs.GET("", deps.ContentHandler.ListBlogsHandler)
			blogs.GET("/:id", deps.ContentHandler.GetBlogHandler)
			blogs.POST("/:id/view", viewLimited("blog_view"), deps.ContentHandler.RecordBlogViewHandler)

			public.GET("/keywords", deps.ContentHandler.KeywordIndexHandler)
		}

		authRoutes := v1.Group("/auth")
		{
			authRoutes.GET("/callback", rateLimited("auth_callback"), deps.AuthHandler.CallbackHandler)
			authRoutes.POST("/refresh", rateLimited("auth_refresh"), deps.AuthHandler.RefreshHandler)
		}

		// --- Authenticated Routes ---
		member := v1.Group("")
		member.Use(middleware.AuthMiddleware(deps.JWTValidator))
		{
			me := member.Group("/me")
			me.GET("/recommendations", deps.RecommendationHandler.PersonalizedHandler)
			me.GET("/subscription", deps.MemberHandler.GetSubscriptionHandler)
			me.POST("/subscription/cancel", deps.MemberHandler.CancelSubscriptionHandler)

			payments := member.Group("/payments")
			payments.POST("/checkout", deps.MemberHandler.CheckoutHandler)
			payments.POST("/confirm", deps.MemberHandler.ConfirmPaymentHandler)
			payments.POST("/fail", deps.MemberHandler.FailPaymentHandler)
		}

		v1.POST("/admin/login", rateLimited("admin_login"), deps.AuthHandler.AdminLoginHandler)

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware(deps.Config.Admin.TokenSecret))
		{
			admin.GET("/analytics", deps.AdminHandler.AnalyticsHandler)
			admin.GET("/users", deps.AdminHandler.UsersHandler)
			admin.GET("/payments", deps.AdminHandler.ListPaymentsHandler)
			admin.GET("/payments/stats", deps.AdminHandler.PaymentStatsHandler)

			admin.POST("/videos", deps.AdminHandler.CreateVideoHandler)
			admin.PUT("/videos/:id", deps.AdminHandler.UpdateVideoHandler)
			admin.DELETE("/videos/:id", deps.AdminHandler.DeleteVideoHandler)
			admin.POST("/blogs", deps.AdminHandler.CreateBlogHandler)
			admin.PUT("/blogs/:id", deps.AdminHandler.UpdateBlogHandler)
			admin.DELETE("/blogs/:id", deps.AdminHandler.DeleteBlogHandler)
			admin.POST("/uploads/images", deps.AdminHandler.UploadImageHandler)

			admin.GET("/activity/ws", deps.ActivityWSHandler.HandleWebSocket)
		}
	}

	return r
}
