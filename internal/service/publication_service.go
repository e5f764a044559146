package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
	"github.com/eyesmystery/bookclub-api/pkg/markdown"
)

// publishTime 发布开关为真时取当前时间，为假时清空
func publishTime(published bool, now func() time.Time) *time.Time {
	if !published {
		return nil
	}
	t := now().UTC()
	return &t
}

// ════════════════════════ 文章 ════════════════════════

// ArticleService 文章业务接口
type ArticleService interface {
	List(ctx context.Context, actor policy.Actor, q *dto.ArticleListQuery) (*dto.PageResult[dto.ArticleResponse], error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*dto.ArticleResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateArticleRequest) (*dto.ArticleResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type articleService struct {
	repo   *repository.Repository
	policy *policy.Policy
	pager  pager
	logger *zap.Logger
	now    func() time.Time
}

// NewArticleService 创建 ArticleService 实例
func NewArticleService(repo *repository.Repository, pol *policy.Policy, p pager, logger *zap.Logger) ArticleService {
	return &articleService{repo: repo, policy: pol, pager: p, logger: logger, now: time.Now}
}

func (s *articleService) List(ctx context.Context, actor policy.Actor, q *dto.ArticleListQuery) (*dto.PageResult[dto.ArticleResponse], error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceArticle, nil); err != nil {
		return nil, err
	}

	pg := s.pager.page(q.PageQuery)
	filter := repository.PublicationFilter{
		DivisionID:    q.DivisionID,
		AuthorID:      q.AuthorID,
		PublishedOnly: q.Published,
		Search:        q.Search,
	}
	articles, total, err := s.repo.Article.List(ctx, filter, pg)
	if err != nil {
		s.logger.Error("查询文章列表失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	items := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, toArticleResponse(&articles[i]))
	}
	return pageResult(items, total, pg), nil
}

// Get 详情附带渲染后的 content_html
func (s *articleService) Get(ctx context.Context, actor policy.Actor, id uint) (*dto.ArticleResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionView, policy.ResourceArticle, nil); err != nil {
		return nil, err
	}
	article, err := s.repo.Article.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Article", id)
	}
	resp := toArticleResponse(article)
	resp.ContentHTML = markdown.ToHTML(article.Content)
	return &resp, nil
}

func (s *articleService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ResourceArticle, nil); err != nil {
		return nil, err
	}

	// 未指定作者时默认为当前用户
	authorID := req.AuthorID
	if authorID == nil {
		id := actor.ID
		authorID = &id
	}
	if err := s.validateRefs(ctx, req.AuthorID, req.DivisionID); err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      authorID,
		DivisionID:    req.DivisionID,
	}
	if changed, published := dto.PublishChange(req.PublishedAt, req.IsPublished); changed {
		article.PublishedAt = publishTime(published, s.now)
	}

	if err := s.repo.Article.Create(ctx, article); err != nil {
		return nil, storageError(s.logger, err, "创建文章")
	}

	s.logger.Info("创建文章", zap.Uint("article_id", article.ID), zap.Uint("by", actor.ID))
	return s.reload(ctx, article.ID)
}

func (s *articleService) Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateArticleRequest) (*dto.ArticleResponse, error) {
	article, err := s.repo.Article.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Article", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ResourceArticle, nil); err != nil {
		return nil, err
	}
	if err := s.validateRefs(ctx, req.AuthorID, req.DivisionID.Value); err != nil {
		return nil, err
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.Excerpt != nil {
		article.Excerpt = req.Excerpt
	}
	if req.FeaturedImage != nil {
		article.FeaturedImage = req.FeaturedImage
	}
	if req.AuthorID != nil {
		article.AuthorID = req.AuthorID
	}
	req.DivisionID.Apply(&article.DivisionID)
	if changed, published := dto.PublishChange(req.PublishedAt, req.IsPublished); changed {
		article.PublishedAt = publishTime(published, s.now)
	}

	if err := s.repo.Article.Update(ctx, article); err != nil {
		return nil, storageError(s.logger, err, "更新文章")
	}

	s.logger.Info("更新文章", zap.Uint("article_id", article.ID), zap.Uint("by", actor.ID))
	return s.reload(ctx, article.ID)
}

func (s *articleService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if _, err := s.repo.Article.GetByID(ctx, id); err != nil {
		return lookupError(s.logger, err, "Article", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ResourceArticle, nil); err != nil {
		return err
	}

	if err := s.repo.Article.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Article")
		}
		return storageError(s.logger, err, "删除文章")
	}

	s.logger.Info("删除文章", zap.Uint("article_id", id), zap.Uint("by", actor.ID))
	return nil
}

func (s *articleService) validateRefs(ctx context.Context, authorID, divisionID *uint) error {
	fe := fieldErrors{}
	if authorID != nil {
		ok, err := s.repo.User.Exists(ctx, *authorID)
		if err != nil {
			s.logger.Error("检查作者失败", zap.Error(err))
			return apperrors.Internal(err)
		}
		if !ok {
			fe.add("author_id", "The selected author id is invalid.")
		}
	}
	if err := checkDivision(ctx, s.repo.Division, divisionID, fe); err != nil {
		s.logger.Error("检查分部失败", zap.Error(err))
		return apperrors.Internal(err)
	}
	return fe.err()
}

func (s *articleService) reload(ctx context.Context, id uint) (*dto.ArticleResponse, error) {
	article, err := s.repo.Article.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Article", id)
	}
	resp := toArticleResponse(article)
	return &resp, nil
}

// ════════════════════════ 新闻 ════════════════════════

// NewsService 新闻业务接口
type NewsService interface {
	List(ctx context.Context, actor policy.Actor, q *dto.NewsListQuery) (*dto.PageResult[dto.NewsResponse], error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*dto.NewsResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateNewsRequest) (*dto.NewsResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateNewsRequest) (*dto.NewsResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type newsService struct {
	repo   *repository.Repository
	policy *policy.Policy
	pager  pager
	logger *zap.Logger
	now    func() time.Time
}

// NewNewsService 创建 NewsService 实例
func NewNewsService(repo *repository.Repository, pol *policy.Policy, p pager, logger *zap.Logger) NewsService {
	return &newsService{repo: repo, policy: pol, pager: p, logger: logger, now: time.Now}
}

func (s *newsService) List(ctx context.Context, actor policy.Actor, q *dto.NewsListQuery) (*dto.PageResult[dto.NewsResponse], error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceNews, nil); err != nil {
		return nil, err
	}

	pg := s.pager.page(q.PageQuery)
	filter := repository.PublicationFilter{DivisionID: q.DivisionID, PublishedOnly: q.Published, Search: q.Search}
	news, total, err := s.repo.News.List(ctx, filter, pg)
	if err != nil {
		s.logger.Error("查询新闻列表失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	items := make([]dto.NewsResponse, 0, len(news))
	for i := range news {
		items = append(items, toNewsResponse(&news[i]))
	}
	return pageResult(items, total, pg), nil
}

func (s *newsService) Get(ctx context.Context, actor policy.Actor, id uint) (*dto.NewsResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionView, policy.ResourceNews, nil); err != nil {
		return nil, err
	}
	news, err := s.repo.News.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "News", id)
	}
	resp := toNewsResponse(news)
	resp.ContentHTML = markdown.ToHTML(news.Content)
	return &resp, nil
}

func (s *newsService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateNewsRequest) (*dto.NewsResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ResourceNews, nil); err != nil {
		return nil, err
	}
	if err := s.validateDivision(ctx, req.DivisionID); err != nil {
		return nil, err
	}

	news := &model.News{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		DivisionID:    req.DivisionID,
	}
	if changed, published := dto.PublishChange(req.PublishedAt, req.IsPublished); changed {
		news.PublishedAt = publishTime(published, s.now)
	}

	if err := s.repo.News.Create(ctx, news); err != nil {
		return nil, storageError(s.logger, err, "创建新闻")
	}

	s.logger.Info("创建新闻", zap.Uint("news_id", news.ID), zap.Uint("by", actor.ID))
	return s.reload(ctx, news.ID)
}

func (s *newsService) Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateNewsRequest) (*dto.NewsResponse, error) {
	news, err := s.repo.News.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "News", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ResourceNews, nil); err != nil {
		return nil, err
	}
	if err := s.validateDivision(ctx, req.DivisionID.Value); err != nil {
		return nil, err
	}

	if req.Title != nil {
		news.Title = *req.Title
	}
	if req.Content != nil {
		news.Content = *req.Content
	}
	if req.Excerpt != nil {
		news.Excerpt = req.Excerpt
	}
	if req.FeaturedImage != nil {
		news.FeaturedImage = req.FeaturedImage
	}
	req.DivisionID.Apply(&news.DivisionID)
	if changed, published := dto.PublishChange(req.PublishedAt, req.IsPublished); changed {
		news.PublishedAt = publishTime(published, s.now)
	}

	if err := s.repo.News.Update(ctx, news); err != nil {
		return nil, storageError(s.logger, err, "更新新闻")
	}

	s.logger.Info("更新新闻", zap.Uint("news_id", news.ID), zap.Uint("by", actor.ID))
	return s.reload(ctx, news.ID)
}

func (s *newsService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if _, err := s.repo.News.GetByID(ctx, id); err != nil {
		return lookupError(s.logger, err, "News", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ResourceNews, nil); err != nil {
		return err
	}

	if err := s.repo.News.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("News")
		}
		return storageError(s.logger, err, "删除新闻")
	}

	s.logger.Info("删除新闻", zap.Uint("news_id", id), zap.Uint("by", actor.ID))
	return nil
}

func (s *newsService) validateDivision(ctx context.Context, divisionID *uint) error {
	fe := fieldErrors{}
	if err := checkDivision(ctx, s.repo.Division, divisionID, fe); err != nil {
		s.logger.Error("检查分部失败", zap.Error(err))
		return apperrors.Internal(err)
	}
	return fe.err()
}

func (s *newsService) reload(ctx context.Context, id uint) (*dto.NewsResponse, error) {
	news, err := s.repo.News.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "News", id)
	}
	resp := toNewsResponse(news)
	return &resp, nil
}
