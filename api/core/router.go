package core

import (
	"time"

	handlerAuth "github.com/AyoubFaradi/emotion-ai/api/handler/auth"
	handlerPredict "github.com/AyoubFaradi/emotion-ai/api/handler/predict"
	"github.com/AyoubFaradi/emotion-ai/api/middleware"
	"github.com/AyoubFaradi/emotion-ai/config"
	"github.com/AyoubFaradi/emotion-ai/database/repo/accounts"
	"github.com/AyoubFaradi/emotion-ai/database/repo/analyses"
	authsvc "github.com/AyoubFaradi/emotion-ai/internal/auth"
	"github.com/AyoubFaradi/emotion-ai/internal/emotion"
	"github.com/AyoubFaradi/emotion-ai/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Config         *config.Config
	DB             *gorm.DB
	AccountsRepo   *accounts.Repository
	AnalysesRepo   *analyses.Repository
	TokenService   *authsvc.TokenService
	Predictor      *emotion.Predictor
	StorageFactory *storage.Factory
}

// setupRouter 组装 gin 路由
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := deps.Config
	router := gin.New()

	// 全局中间件
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxMB) << 20

	concurrencyLimiter := middleware.NewConcurrencyLimiter(cfg.MaxConcurrentRequests)
	router.Use(concurrencyLimiter.Middleware())

	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
	}

	// 基础路由
	router.GET("/", rootHandler)
	healthHandler := NewHealthHandler(deps.DB, deps.StorageFactory)
	router.GET("/health", healthHandler.Handle)

	// 创建处理器（依赖注入）
	authHandler := handlerAuth.NewHandler(deps.AccountsRepo, deps.TokenService)
	predictHandler := handlerPredict.NewHandler(deps.AnalysesRepo, deps.Predictor, deps.StorageFactory.GetDefault())

	requireAuth := middleware.RequireAuth(deps.TokenService, deps.AccountsRepo)
	optionalAuth := middleware.OptionalAuth(deps.TokenService, deps.AccountsRepo)

	// 认证接口
	authGroup := router.Group("/auth")
	authGroup.Use(authRateLimiter.Middleware())
	{
		authGroup.POST("/register", authHandler.RegisterHandlerFunc) // POST /auth/register
		authGroup.POST("/login", authHandler.LoginHandlerFunc)       // POST /auth/login
	}

	// 匿名可用：有有效令牌时尽力保存历史
	router.POST("/analyze-face", optionalAuth, predictHandler.AnalyzeFaceHandlerFunc) // POST /analyze-face

	// 仅认证用户
	router.POST("/predict", requireAuth, predictHandler.PredictHandlerFunc) // POST /predict
	router.GET("/history", requireAuth, predictHandler.HistoryHandlerFunc)  // GET /history

	return router, cleanup
}

// rootHandler 存活检测
func rootHandler(c *gin.Context) {
	c.JSON(200, gin.H{"status": "API Emotion AI running"})
}
