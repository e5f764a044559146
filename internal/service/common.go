package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/config"
	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

// 时间统一以 UTC RFC 3339 输出
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// pager 将请求中的分页参数规范化
type pager struct {
	defaultPerPage int
	maxPerPage     int
}

func newPager(cfg *config.PaginationConfig) pager {
	return pager{defaultPerPage: cfg.DefaultPerPage, maxPerPage: cfg.MaxPerPage}
}

func (p pager) page(q dto.PageQuery) repository.Page {
	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = p.defaultPerPage
	}
	if perPage > p.maxPerPage {
		perPage = p.maxPerPage
	}
	return repository.Page{Page: page, PerPage: perPage}
}

func pageResult[T any](items []T, total int64, pg repository.Page) *dto.PageResult[T] {
	return &dto.PageResult[T]{Items: items, Total: total, Page: pg.Page, PerPage: pg.PerPage}
}

// ── 错误映射 ──

// lookupError 查询错误：记录不存在 → NotFound，其余记录日志后返回 Internal
func lookupError(logger *zap.Logger, err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource)
	}
	logger.Error("查询"+resource+"失败", zap.Uint("id", id), zap.Error(err))
	return apperrors.Internal(err)
}

// storageError 写入错误：约束冲突 → 422，其余记录日志后返回 Internal
func storageError(logger *zap.Logger, err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Constraint("record", "The record conflicts with an existing one.")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Constraint("record", "A related record does not exist.")
	}
	logger.Error(action+"失败", zap.Error(err))
	return apperrors.Internal(err)
}

// fieldErrors 字段错误收集器
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.Validation(f)
}

// ── 通用 DTO 转换 ──

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &dto.UserBrief{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toDivisionBrief(d *model.Division) *dto.DivisionBrief {
	if d == nil || d.ID == 0 {
		return nil
	}
	return &dto.DivisionBrief{ID: d.ID, Name: d.Name, Description: d.Description}
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		DivisionID: u.DivisionID,
		Division:   toDivisionBrief(u.Division),
		CreatedAt:  formatTime(u.CreatedAt),
		UpdatedAt:  formatTime(u.UpdatedAt),
	}
}

func toBookResponse(b *model.Book) dto.BookResponse {
	return dto.BookResponse{
		ID:                  b.ID,
		Title:               b.Title,
		Author:              b.Author,
		Description:         b.Description,
		CoverImage:          b.CoverImage,
		PDFFile:             b.PDFFile,
		RecommendedByUserID: b.RecommendedByUserID,
		RecommendedBy:       toUserBrief(b.RecommendedBy),
		LikesCount:          b.LikesCount,
		ReviewsCount:        b.ReviewsCount,
		CreatedAt:           formatTime(b.CreatedAt),
		UpdatedAt:           formatTime(b.UpdatedAt),
	}
}

func toEventResponse(e *model.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		StartDate:       formatTime(e.StartDate),
		EndDate:         formatTimePtr(e.EndDate),
		Location:        e.Location,
		MaxParticipants: e.MaxParticipants,
		DivisionID:      e.DivisionID,
		Division:        toDivisionBrief(e.Division),
		CreatedAt:       formatTime(e.CreatedAt),
		UpdatedAt:       formatTime(e.UpdatedAt),
	}
}

func toArticleResponse(a *model.Article) dto.ArticleResponse {
	return dto.ArticleResponse{
		ID:            a.ID,
		Title:         a.Title,
		Content:       a.Content,
		Excerpt:       a.Excerpt,
		FeaturedImage: a.FeaturedImage,
		AuthorID:      a.AuthorID,
		Author:        toUserBrief(a.Author),
		DivisionID:    a.DivisionID,
		Division:      toDivisionBrief(a.Division),
		IsPublished:   a.IsPublished(),
		PublishedAt:   formatTimePtr(a.PublishedAt),
		CreatedAt:     formatTime(a.CreatedAt),
		UpdatedAt:     formatTime(a.UpdatedAt),
	}
}

func toNewsResponse(n *model.News) dto.NewsResponse {
	return dto.NewsResponse{
		ID:            n.ID,
		Title:         n.Title,
		Content:       n.Content,
		Excerpt:       n.Excerpt,
		FeaturedImage: n.FeaturedImage,
		DivisionID:    n.DivisionID,
		Division:      toDivisionBrief(n.Division),
		IsPublished:   n.IsPublished(),
		PublishedAt:   formatTimePtr(n.PublishedAt),
		CreatedAt:     formatTime(n.CreatedAt),
		UpdatedAt:     formatTime(n.UpdatedAt),
	}
}

// checkDivision 校验可选的 division_id 是否存在
func checkDivision(ctx context.Context, repo repository.DivisionRepository, id *uint, fe fieldErrors) error {
	if id == nil {
		return nil
	}
	ok, err := repo.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		fe.add("division_id", "The selected division id is invalid.")
	}
	return nil
}
