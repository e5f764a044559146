package service

import (
	"go.uber.org/zap"

	"github.com/eyesmystery/bookclub-api/config"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	"github.com/eyesmystery/bookclub-api/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	User     UserService
	Division DivisionService
	Book     BookService
	Review   ReviewService
	Event    EventService
	Article  ArticleService
	News     NewsService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	pol *policy.Policy,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	p := newPager(&cfg.Pagination)
	return &Service{
		Auth:     NewAuthService(repo, jwtMgr, blacklist, logger),
		User:     NewUserService(repo, pol, p, logger),
		Division: NewDivisionService(repo, pol, logger),
		Book:     NewBookService(repo, pol, p, logger),
		Review:   NewReviewService(repo, pol, p, logger),
		Event:    NewEventService(repo, pol, p, logger),
		Article:  NewArticleService(repo, pol, p, logger),
		News:     NewNewsService(repo, pol, p, logger),
		Export:   NewExportService(repo, pol, logger),
	}
}
