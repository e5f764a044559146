package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyesmystery/bookclub-api/config"
	"github.com/eyesmystery/bookclub-api/internal/api/handler"
	"github.com/eyesmystery/bookclub-api/internal/api/router"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	"github.com/eyesmystery/bookclub-api/internal/service"
	"github.com/eyesmystery/bookclub-api/pkg/database"
	"github.com/eyesmystery/bookclub-api/pkg/jwt"
	applogger "github.com/eyesmystery/bookclub-api/pkg/logger"
	"github.com/eyesmystery/bookclub-api/pkg/redis"
	"github.com/eyesmystery/bookclub-api/pkg/validator"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("BOOKCLUB_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, applogger.NewGormLogger(logger, cfg.Log.Level), logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移（sqlite 无 SQL 迁移，启动时补齐初始分部）
	if err := database.Migrate(db, cfg.Database.Driver, logger, model.All()...); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	repo := repository.NewRepository(db)

	if cfg.Database.Driver == database.DriverSQLite {
		if err := repo.Division.SeedDefaults(context.Background(), model.DefaultDivisionNames); err != nil {
			logger.Fatal("初始化分部失败", zap.Error(err))
		}
	}

	// 4. Token 黑名单：启用 Redis 时使用 Redis，否则（或连接失败时）降级到数据库
	var blacklist service.TokenBlacklist = repo.RevokedToken
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，Token 黑名单降级到数据库", zap.Error(err))
			rdb = nil
		} else {
			blacklist = rdb
		}
	}

	// 5. 初始化校验器、授权表与 JWT 管理器
	validator.Setup()
	pol := policy.New()
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, pol, jwtMgr, blacklist, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	var cache router.Pinger
	if rdb != nil {
		cache = rdb
	}
	engine := router.Setup(cfg, h, pol, svc.Auth, db, cache, logger)

	// 8. 定期清理数据库中已过期的吊销记录
	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go purgeRevokedTokens(purgeCtx, repo.RevokedToken, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	stopPurge()

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

func purgeRevokedTokens(ctx context.Context, tokens repository.RevokedTokenRepository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("清理过期吊销记录失败", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("已清理过期吊销记录", zap.Int64("count", n))
			}
		}
	}
}
