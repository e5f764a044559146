package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/config"
	"github.com/eyesmystery/bookclub-api/internal/api/handler"
	"github.com/eyesmystery/bookclub-api/internal/api/middleware"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

// Pinger 健康检查依赖（Redis 等可选组件）
type Pinger interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎；cache 为 nil 时健康检查只探测数据库
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	pol *policy.Policy,
	auth middleware.Authenticator,
	db *gorm.DB,
	cache Pinger,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("请求处理发生 panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		response.InternalError(c)
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Not found")
	})

	api := r.Group("/api")

	// ── 健康检查 ──
	api.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err == nil && cache != nil {
			err = cache.Ping(ctx)
		}
		if err != nil {
			logger.Warn("健康检查失败", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	admin := func(res policy.Resource, action policy.Action) gin.HandlerFunc {
		return middleware.Authorize(pol, res, action)
	}

	// 认证模块（无需认证）
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)

	// 分部浏览公开
	api.GET("/divisions", h.Division.List)
	api.GET("/divisions/:id", h.Division.Get)

	// 需要认证的路由
	authorized := api.Group("")
	authorized.Use(middleware.JWTAuth(auth))
	{
		authorized.POST("/logout", h.Auth.Logout)
		authorized.GET("/user", h.Auth.Me)

		// 分部维护
		divisions := authorized.Group("/divisions")
		{
			divisions.POST("", admin(policy.ResourceDivision, policy.ActionCreate), h.Division.Create)
			divisions.PUT("/:id", admin(policy.ResourceDivision, policy.ActionUpdate), h.Division.Update)
			divisions.DELETE("/:id", admin(policy.ResourceDivision, policy.ActionDelete), h.Division.Delete)
		}

		// 用户模块（查看/修改为本人或管理员，Service 层鉴权）
		users := authorized.Group("/users")
		{
			users.GET("", admin(policy.ResourceUser, policy.ActionList), h.User.List)
			users.GET("/export", admin(policy.ResourceUser, policy.ActionExport), h.Export.ExportUsers)
			users.GET("/:id", h.User.Get)
			users.PUT("/:id", h.User.Update)
			users.DELETE("/:id", h.User.Delete)
		}

		// 书籍模块
		books := authorized.Group("/books")
		{
			books.GET("", h.Book.List)
			books.GET("/popular", h.Book.Popular)
			books.GET("/recent", h.Book.Recent)
			books.GET("/reviewed", h.Book.Reviewed)
			books.GET("/:id", h.Book.Get)
			books.POST("", admin(policy.ResourceBook, policy.ActionCreate), h.Book.Create)
			books.PUT("/:id", admin(policy.ResourceBook, policy.ActionUpdate), h.Book.Update)
			books.DELETE("/:id", admin(policy.ResourceBook, policy.ActionDelete), h.Book.Delete)
			books.POST("/:id/like", h.Book.ToggleLike)
			books.POST("/:id/review", h.Review.Submit)
			books.GET("/:id/reviews", h.Review.ListByBook)
		}

		authorized.DELETE("/reviews/:id", admin(policy.ResourceReview, policy.ActionDelete), h.Review.Delete)

		// 活动模块
		events := authorized.Group("/events")
		{
			events.GET("", h.Event.List)
			events.GET("/calendar.ics", h.Event.Calendar)
			events.GET("/:id", h.Event.Get)
			events.POST("", admin(policy.ResourceEvent, policy.ActionCreate), h.Event.Create)
			events.PUT("/:id", admin(policy.ResourceEvent, policy.ActionUpdate), h.Event.Update)
			events.DELETE("/:id", admin(policy.ResourceEvent, policy.ActionDelete), h.Event.Delete)
		}

		// 文章模块
		articles := authorized.Group("/articles")
		{
			articles.GET("", h.Article.List)
			articles.GET("/:id", h.Article.Get)
			articles.POST("", admin(policy.ResourceArticle, policy.ActionCreate), h.Article.Create)
			articles.PUT("/:id", admin(policy.ResourceArticle, policy.ActionUpdate), h.Article.Update)
			articles.DELETE("/:id", admin(policy.ResourceArticle, policy.ActionDelete), h.Article.Delete)
		}

		// 新闻模块
		news := authorized.Group("/news")
		{
			news.GET("", h.News.List)
			news.GET("/:id", h.News.Get)
			news.POST("", admin(policy.ResourceNews, policy.ActionCreate), h.News.Create)
			news.PUT("/:id", admin(policy.ResourceNews, policy.ActionUpdate), h.News.Update)
			news.DELETE("/:id", admin(policy.ResourceNews, policy.ActionDelete), h.News.Delete)
		}
	}

	return r
}
