package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

// 精选列表缺省条数
const defaultTopLimit = 10

// BookService 书籍业务接口
type BookService interface {
	List(ctx context.Context, actor policy.Actor, q *dto.BookListQuery) (*dto.PageResult[dto.BookResponse], error)
	Popular(ctx context.Context, actor policy.Actor, limit int) ([]dto.BookResponse, error)
	Recent(ctx context.Context, actor policy.Actor, limit int) ([]dto.BookResponse, error)
	Reviewed(ctx context.Context, actor policy.Actor, q *dto.PageQuery) (*dto.PageResult[dto.BookResponse], error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*dto.BookResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateBookRequest) (*dto.BookResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateBookRequest) (*dto.BookResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
	ToggleLike(ctx context.Context, actor policy.Actor, id uint) (*dto.LikeResponse, error)
}

type bookService struct {
	repo   *repository.Repository
	policy *policy.Policy
	pager  pager
	logger *zap.Logger
}

// NewBookService 创建 BookService 实例
func NewBookService(repo *repository.Repository, pol *policy.Policy, p pager, logger *zap.Logger) BookService {
	return &bookService{repo: repo, policy: pol, pager: p, logger: logger}
}

// ────────────────────── 列表 ──────────────────────

func (s *bookService) List(ctx context.Context, actor policy.Actor, q *dto.BookListQuery) (*dto.PageResult[dto.BookResponse], error) {
	filter := repository.BookFilter{
		Search:  q.Search,
		Author:  q.Author,
		SortBy:  q.SortBy,
		SortDir: q.SortDir,
	}
	return s.list(ctx, actor, filter, s.pager.page(q.PageQuery))
}

func (s *bookService) Reviewed(ctx context.Context, actor policy.Actor, q *dto.PageQuery) (*dto.PageResult[dto.BookResponse], error) {
	filter := repository.BookFilter{SortBy: "created_at", OnlyReviewed: true}
	return s.list(ctx, actor, filter, s.pager.page(*q))
}

func (s *bookService) list(ctx context.Context, actor policy.Actor, filter repository.BookFilter, pg repository.Page) (*dto.PageResult[dto.BookResponse], error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceBook, nil); err != nil {
		return nil, err
	}

	books, total, err := s.repo.Book.List(ctx, filter, pg)
	if err != nil {
		s.logger.Error("查询书籍列表失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	items, err := s.decorate(ctx, actor, books)
	if err != nil {
		return nil, err
	}
	return pageResult(items, total, pg), nil
}

func (s *bookService) Popular(ctx context.Context, actor policy.Actor, limit int) ([]dto.BookResponse, error) {
	return s.top(ctx, actor, "popular", limit)
}

func (s *bookService) Recent(ctx context.Context, actor policy.Actor, limit int) ([]dto.BookResponse, error) {
	return s.top(ctx, actor, "created_at", limit)
}

func (s *bookService) top(ctx context.Context, actor policy.Actor, sortBy string, limit int) ([]dto.BookResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceBook, nil); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > s.pager.maxPerPage {
		limit = s.pager.maxPerPage
	}

	books, err := s.repo.Book.Top(ctx, sortBy, limit)
	if err != nil {
		s.logger.Error("查询精选书籍失败", zap.String("sort", sortBy), zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return s.decorate(ctx, actor, books)
}

// decorate 转换为响应并批量附加当前用户的点赞 / 评论标记
func (s *bookService) decorate(ctx context.Context, actor policy.Actor, books []model.Book) ([]dto.BookResponse, error) {
	items := make([]dto.BookResponse, 0, len(books))
	if len(books) == 0 {
		return items, nil
	}

	ids := make([]uint, 0, len(books))
	for i := range books {
		ids = append(ids, books[i].ID)
	}
	flags, err := s.repo.Book.FlagsForUser(ctx, actor.ID, ids)
	if err != nil {
		s.logger.Error("查询用户书籍标记失败", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	for i := range books {
		resp := toBookResponse(&books[i])
		if actor.Authenticated() {
			f := flags[books[i].ID]
			liked, reviewed := f.Liked, f.Reviewed
			resp.UserHasLiked = &liked
			resp.UserHasReviewed = &reviewed
		}
		items = append(items, resp)
	}
	return items, nil
}

// ────────────────────── Get ──────────────────────

func (s *bookService) Get(ctx context.Context, actor policy.Actor, id uint) (*dto.BookResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionView, policy.ResourceBook, nil); err != nil {
		return nil, err
	}
	return s.load(ctx, actor, id)
}

func (s *bookService) load(ctx context.Context, actor policy.Actor, id uint) (*dto.BookResponse, error) {
	book, err := s.repo.Book.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Book", id)
	}
	items, err := s.decorate(ctx, actor, []model.Book{*book})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// ────────────────────── Create ──────────────────────

func (s *bookService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateBookRequest) (*dto.BookResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ResourceBook, nil); err != nil {
		return nil, err
	}
	if err := s.checkRecommender(ctx, req.RecommendedByUserID); err != nil {
		return nil, err
	}

	book := &model.Book{
		Title:               req.Title,
		Author:              req.Author,
		Description:         req.Description,
		CoverImage:          req.CoverImage,
		PDFFile:             req.PDFFile,
		RecommendedByUserID: req.RecommendedByUserID,
	}
	if err := s.repo.Book.Create(ctx, book); err != nil {
		return nil, storageError(s.logger, err, "创建书籍")
	}

	s.logger.Info("创建书籍", zap.Uint("book_id", book.ID), zap.Uint("by", actor.ID))
	return s.load(ctx, actor, book.ID)
}

// ────────────────────── Update ──────────────────────

func (s *bookService) Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateBookRequest) (*dto.BookResponse, error) {
	book, err := s.repo.Book.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Book", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ResourceBook, nil); err != nil {
		return nil, err
	}
	if err := s.checkRecommender(ctx, req.RecommendedByUserID.Value); err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.CoverImage != nil {
		book.CoverImage = req.CoverImage
	}
	if req.PDFFile != nil {
		book.PDFFile = req.PDFFile
	}
	req.RecommendedByUserID.Apply(&book.RecommendedByUserID)

	if err := s.repo.Book.Update(ctx, book); err != nil {
		return nil, storageError(s.logger, err, "更新书籍")
	}

	s.logger.Info("更新书籍", zap.Uint("book_id", book.ID), zap.Uint("by", actor.ID))
	return s.load(ctx, actor, book.ID)
}

// ────────────────────── Delete ──────────────────────

func (s *bookService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	if _, err := s.repo.Book.GetByID(ctx, id); err != nil {
		return lookupError(s.logger, err, "Book", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ResourceBook, nil); err != nil {
		return err
	}

	if err := s.repo.Book.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Book")
		}
		return storageError(s.logger, err, "删除书籍")
	}

	s.logger.Info("删除书籍", zap.Uint("book_id", id), zap.Uint("by", actor.ID))
	return nil
}

// ────────────────────── Like ──────────────────────

// ToggleLike 已点赞则取消，否则点赞；返回最新状态与点赞数
func (s *bookService) ToggleLike(ctx context.Context, actor policy.Actor, id uint) (*dto.LikeResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionLike, policy.ResourceBook, nil); err != nil {
		return nil, err
	}
	exists, err := s.repo.Book.Exists(ctx, id)
	if err != nil {
		s.logger.Error("查询书籍失败", zap.Uint("id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if !exists {
		return nil, apperrors.NotFound("Book")
	}

	removed, err := s.repo.Like.Remove(ctx, actor.ID, id)
	if err != nil {
		return nil, storageError(s.logger, err, "取消点赞")
	}
	liked := false
	if !removed {
		if err := s.repo.Like.Create(ctx, &model.BookLike{UserID: actor.ID, BookID: id}); err != nil {
			// 并发的重复点赞由唯一索引兜底
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Constraint("book_id", "You have already liked this book.")
			}
			return nil, storageError(s.logger, err, "点赞")
		}
		liked = true
	}

	count, err := s.repo.Like.CountByBook(ctx, id)
	if err != nil {
		s.logger.Error("统计点赞数失败", zap.Uint("book_id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return &dto.LikeResponse{Liked: liked, LikesCount: count}, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *bookService) checkRecommender(ctx context.Context, userID *uint) error {
	if userID == nil {
		return nil
	}
	ok, err := s.repo.User.Exists(ctx, *userID)
	if err != nil {
		s.logger.Error("检查推荐人失败", zap.Error(err))
		return apperrors.Internal(err)
	}
	if !ok {
		return apperrors.Validation(map[string][]string{
			"recommended_by_user_id": {"The selected recommended by user id is invalid."},
		})
	}
	return nil
}
