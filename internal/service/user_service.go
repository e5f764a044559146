package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

// UserService 用户管理业务接口
type UserService interface {
	List(ctx context.Context, actor policy.Actor, q *dto.UserListQuery) (*dto.PageResult[dto.UserResponse], error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*dto.UserResponse, error)
	Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) error
}

type userService struct {
	repo   *repository.Repository
	policy *policy.Policy
	pager  pager
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, pol *policy.Policy, p pager, logger *zap.Logger) UserService {
	return &userService{repo: repo, policy: pol, pager: p, logger: logger}
}

func (s *userService) List(ctx context.Context, actor policy.Actor, q *dto.UserListQuery) (*dto.PageResult[dto.UserResponse], error) {
	if err := s.policy.Authorize(actor, policy.ActionList, policy.ResourceUser, nil); err != nil {
		return nil, err
	}

	pg := s.pager.page(q.PageQuery)
	users, total, err := s.repo.User.List(ctx, repository.UserFilter{DivisionID: q.DivisionID, Role: q.Role}, pg)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}
	return pageResult(items, total, pg), nil
}

func (s *userService) Get(ctx context.Context, actor policy.Actor, id uint) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetDetail(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "User", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionView, policy.ResourceUser, &policy.Target{OwnerID: user.ID}); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	resp.RecommendedBooks = make([]dto.BookResponse, 0, len(user.RecommendedBooks))
	for i := range user.RecommendedBooks {
		resp.RecommendedBooks = append(resp.RecommendedBooks, toBookResponse(&user.RecommendedBooks[i]))
	}
	resp.Articles = make([]dto.ArticleResponse, 0, len(user.Articles))
	for i := range user.Articles {
		resp.Articles = append(resp.Articles, toArticleResponse(&user.Articles[i]))
	}
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, actor policy.Actor, id uint, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.logger, err, "User", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionUpdate, policy.ResourceUser, &policy.Target{OwnerID: user.ID}); err != nil {
		return nil, err
	}

	// 无权修改的受限字段直接丢弃
	if req.Role != nil && !s.policy.FieldWritable(actor, policy.ResourceUser, "role") {
		req.Role = nil
	}

	fe := fieldErrors{}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		fe.add("role", "The selected role is invalid.")
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
		taken, err := s.repo.User.EmailTaken(ctx, email, user.ID)
		if err != nil {
			s.logger.Error("检查邮箱失败", zap.Error(err))
			return nil, apperrors.Internal(err)
		}
		if taken {
			fe.add("email", "The email has already been taken.")
		}
	}
	if err := checkDivision(ctx, s.repo.Division, req.DivisionID, fe); err != nil {
		s.logger.Error("检查分部失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if req.Password != nil {
		s.checkPasswordChange(actor, user, req, fe)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.DivisionID != nil {
		user.DivisionID = *req.DivisionID
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error("密码加密失败", zap.Error(err))
			return nil, apperrors.Internal(err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Validation(map[string][]string{"email": {"The email has already been taken."}})
		}
		return nil, storageError(s.logger, err, "更新用户")
	}

	s.logger.Info("更新用户", zap.Uint("user_id", user.ID), zap.Uint("by", actor.ID))
	updated, err := s.repo.User.GetByID(ctx, user.ID)
	if err != nil {
		return nil, lookupError(s.logger, err, "User", user.ID)
	}
	resp := toUserResponse(updated)
	return &resp, nil
}

// checkPasswordChange 修改密码需确认；修改自己的密码还需校验当前密码
func (s *userService) checkPasswordChange(actor policy.Actor, user *model.User, req *dto.UpdateUserRequest, fe fieldErrors) {
	if req.PasswordConfirmation == nil || *req.PasswordConfirmation != *req.Password {
		fe.add("password", "The password field confirmation does not match.")
	}
	if actor.ID != user.ID {
		return
	}
	if req.CurrentPassword == nil || *req.CurrentPassword == "" {
		fe.add("current_password", "The current password field is required.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.CurrentPassword)) != nil {
		fe.add("current_password", "The current password is incorrect.")
	}
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, actor policy.Actor, id uint) error {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return lookupError(s.logger, err, "User", id)
	}
	if err := s.policy.Authorize(actor, policy.ActionDelete, policy.ResourceUser, &policy.Target{OwnerID: user.ID}); err != nil {
		return err
	}

	if err := s.repo.User.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User")
		}
		return storageError(s.logger, err, "删除用户")
	}

	s.logger.Info("删除用户", zap.Uint("user_id", user.ID), zap.Uint("by", actor.ID))
	return nil
}
