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

const msgAlreadyReviewed = "You have already reviewed this book"

// ReviewService 书评业务接口
type ReviewService interface {
	Submit(ctx context.Context, actor policy.Actor, bookID uint, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ListByBook(ctx context.Context, actor policy.Actor, bookID uint, q *dto.PageQuery) (*dto.PageResult[dto.ReviewResponse], error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type reviewService struct {
	repo   *repository.Repository
	policy *policy.Policy
	pager  pager
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, pol *policy.Policy, p pager, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, policy: pol, pager: p, logger: logger}
}

// Submit 提交书评，每位用户对同一本书仅能评论一次
func (s *reviewService) Submit(ctx context.Context, actor policy.Actor, bookID uint, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionReview, policy.ResourceBook, nil); err != nil {
		return nil, err
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Review.Exists(ctx, actor.ID, bookID)
	if err != nil {
		s.logger.Error("查询书评失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, apperrors.Duplicate(msgAlreadyReviewed)
	}

	review := &model.BookReview{UserID: actor.ID, BookID: bookID, Rating: req.Rating, Comment: req.Comment}
	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Duplicate(msgAlreadyReviewed)
		}
		return nil, storageError(s.logger, err, "创建书评")
	}

	s.logger.Info("提交书评", zap.Uint("book_id", bookID), zap.Uint("user_id", actor.ID))
	created, err := s.repo.Review.GetByID(ctx, review.ID)
	if err != nil {
		return nil, lookupError(s.logger, err, "Review", review.ID)
	}
	resp := toReviewResponse(created)
	return &resp, nil
}

func (s *reviewService) ListByBook(ctx context.Context, actor policy.Actor, bookID uint, q *dto.PageQuery) (*dto.PageResult[dto.ReviewResponse], error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceReview, nil); err != nil {
		return nil, err
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	pg := s.pager.page(*q)
	reviews, total, err := s.repo.Review.ListByBook(ctx, bookID, pg)
	if err != nil {
		s.logger.Error("查询书评列表失败", zap.Uint("book_id", bookID), zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, toReviewResponse(&reviews[i]))
	}
	return pageResult(items, total, pg), nil
}

func (s *reviewService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	review, err := s.repo.Review.GetByID(ctx, id)
	if err != nil {
		return lookupError(s.logger, err, "Review", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ResourceReview, &policy.Target{OwnerID: review.UserID}); err != nil {
		return err
	}

	if err := s.repo.Review.Delete(ctx, review.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Review")
		}
		return storageError(s.logger, err, "删除书评")
	}

	s.logger.Info("删除书评", zap.Uint("review_id", review.ID), zap.Uint("by", actor.ID))
	return nil
}

func (s *reviewService) ensureBook(ctx context.Context, bookID uint) error {
	ok, err := s.repo.Book.Exists(ctx, bookID)
	if err != nil {
		s.logger.Error("查询书籍失败", zap.Uint("id", bookID), zap.Error(err))
		return apperrors.Internal(err)
	}
	if !ok {
		return apperrors.NotFound("Book")
	}
	return nil
}

func toReviewResponse(r *model.BookReview) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		BookID:    r.BookID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		User:      toUserBrief(r.User),
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
}
