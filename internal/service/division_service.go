package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

const msgDivisionNameTaken = "The name has already been taken."

// DivisionService 分部管理业务接口
type DivisionService interface {
	List(ctx context.Context, actor policy.Actor) ([]dto.DivisionResponse, error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*dto.DivisionDetailResponse, error)
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateDivisionRequest) (*dto.DivisionResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateDivisionRequest) (*dto.DivisionResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type divisionService struct {
	repo   *repository.Repository
	policy *policy.Policy
	logger *zap.Logger
}

// NewDivisionService 创建 DivisionService 实例
func NewDivisionService(repo *repository.Repository, pol *policy.Policy, logger *zap.Logger) DivisionService {
	return &divisionService{repo: repo, policy: pol, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *divisionService) List(ctx context.Context, actor policy.Actor) ([]dto.DivisionResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceDivision, nil); err != nil {
		return nil, err
	}

	divisions, err := s.repo.Division.ListWithCounts(ctx)
	if err != nil {
		s.logger.Error("查询分部列表失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	result := make([]dto.DivisionResponse, 0, len(divisions))
	for i := range divisions {
		d := &divisions[i]
		resp := toDivisionResponse(d)
		resp.UsersCount = &d.UsersCount
		resp.EventsCount = &d.EventsCount
		resp.ArticlesCount = &d.ArticlesCount
		resp.NewsCount = &d.NewsCount
		result = append(result, resp)
	}
	return result, nil
}

func (s *divisionService) Get(ctx context.Context, actor policy.Actor, id uint) (*dto.DivisionDetailResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionView, policy.ResourceDivision, nil); err != nil {
		return nil, err
	}

	d, err := s.repo.Division.GetDetail(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Division", id)
	}

	resp := &dto.DivisionDetailResponse{
		DivisionResponse: toDivisionResponse(d),
		Users:            make([]dto.UserResponse, 0, len(d.Users)),
		Events:           make([]dto.EventResponse, 0, len(d.Events)),
		Articles:         make([]dto.ArticleResponse, 0, len(d.Articles)),
		News:             make([]dto.NewsResponse, 0, len(d.News)),
	}
	for i := range d.Users {
		resp.Users = append(resp.Users, toUserResponse(&d.Users[i]))
	}
	for i := range d.Events {
		resp.Events = append(resp.Events, toEventResponse(&d.Events[i]))
	}
	for i := range d.Articles {
		resp.Articles = append(resp.Articles, toArticleResponse(&d.Articles[i]))
	}
	for i := range d.News {
		resp.News = append(resp.News, toNewsResponse(&d.News[i]))
	}
	return resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *divisionService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateDivisionRequest) (*dto.DivisionResponse, error) {
	if err := s.policy.Authorize(actor, policy.ActionCreate, policy.ResourceDivision, nil); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}

	division := &model.Division{Name: name, Description: req.Description}
	if err := s.repo.Division.Create(ctx, division); err != nil {
		return nil, s.writeError(err, "创建分部")
	}

	s.logger.Info("创建分部", zap.Uint("division_id", division.ID), zap.String("name", name))
	resp := toDivisionResponse(division)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *divisionService) Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateDivisionRequest) (*dto.DivisionResponse, error) {
	division, err := s.repo.Division.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "Division", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ResourceDivision, nil); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkName(ctx, name, division.ID); err != nil {
			return nil, err
		}
		division.Name = name
	}
	if req.Description != nil {
		division.Description = *req.Description
	}

	if err := s.repo.Division.Update(ctx, division); err != nil {
		return nil, s.writeError(err, "更新分部")
	}

	s.logger.Info("更新分部", zap.Uint("division_id", division.ID))
	resp := toDivisionResponse(division)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *divisionService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	division, err := s.repo.Division.GetByID(ctx, id)
	if err != nil {
		return lookupError(s.logger, err, "Division", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ResourceDivision, nil); err != nil {
		return err
	}

	// 用户必须隶属于一个分部，仍有成员时拒绝删除
	members, err := s.repo.Division.CountMembers(ctx, division.ID)
	if err != nil {
		s.logger.Error("统计分部成员失败", zap.Uint("division_id", division.ID), zap.Error(err))
		return apperrors.Internal(err)
	}
	if members > 0 {
		return apperrors.Constraint("division", "Division still has members and cannot be deleted.")
	}

	if err := s.repo.Division.Delete(ctx, division.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Division")
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperrors.Constraint("division", "Division still has members and cannot be deleted.")
		}
		return storageError(s.logger, err, "删除分部")
	}

	s.logger.Info("删除分部", zap.Uint("division_id", division.ID))
	return nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *divisionService) checkName(ctx context.Context, name string, exceptID uint) error {
	taken, err := s.repo.Division.NameTaken(ctx, name, exceptID)
	if err != nil {
		s.logger.Error("检查分部名称失败", zap.Error(err))
		return apperrors.Internal(err)
	}
	if taken {
		return apperrors.Validation(map[string][]string{"name": {msgDivisionNameTaken}})
	}
	return nil
}

func (s *divisionService) writeError(err error, action string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Validation(map[string][]string{"name": {msgDivisionNameTaken}})
	}
	return storageError(s.logger, err, action)
}

func toDivisionResponse(d *model.Division) dto.DivisionResponse {
	return dto.DivisionResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   formatTime(d.CreatedAt),
		UpdatedAt:   formatTime(d.UpdatedAt),
	}
}
