package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
	"github.com/eyesmystery/bookclub-api/pkg/jwt"
)

// 登录失败统一提示，不区分邮箱不存在与密码错误
const msgBadCredentials = "The provided credentials are incorrect."

// TokenBlacklist 已吊销 Token 存储（Redis 或数据库）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	CurrentUser(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error)
	Authenticate(ctx context.Context, token string) (policy.Actor, *jwt.Claims, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, blacklist: blacklist, logger: logger}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	fe := fieldErrors{}
	if req.Password != req.PasswordConfirmation {
		fe.add("password", "The password field confirmation does not match.")
	}

	email := strings.TrimSpace(req.Email)
	taken, err := s.repo.User.EmailTaken(ctx, email, 0)
	if err != nil {
		s.logger.Error("检查邮箱失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if taken {
		fe.add("email", "The email has already been taken.")
	}
	if err := checkDivision(ctx, s.repo.Division, &req.DivisionID, fe); err != nil {
		s.logger.Error("检查分部失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码加密失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	// 注册用户一律为普通角色，忽略请求中的 role
	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		DivisionID:   req.DivisionID,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Validation(map[string][]string{"email": {"The email has already been taken."}})
		}
		return nil, storageError(s.logger, err, "创建用户")
	}

	s.logger.Info("用户注册", zap.Uint("user_id", user.ID))
	return s.issue(ctx, user.ID)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	badCredentials := apperrors.Validation(map[string][]string{"email": {msgBadCredentials}})

	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, badCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, badCredentials
	}

	return s.issue(ctx, user.ID)
}

// issue 重新加载用户（含分部）并签发 Token
func (s *authService) issue(ctx context.Context, userID uint) (*dto.AuthResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(s.logger, err, "User", userID)
	}
	token, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Role, user.DivisionID)
	if err != nil {
		s.logger.Error("签发 Token 失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return &dto.AuthResponse{User: toUserResponse(user), Token: token}, nil
}

// ────────────────────── Logout ──────────────────────

// Logout 吊销当前 Token，黑名单保留到 Token 过期
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.Unauthenticated()
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("吊销 Token 失败", zap.String("jti", claims.ID), zap.Error(err))
		return apperrors.Internal(err)
	}
	return nil
}

// ────────────────────── Current user ──────────────────────

func (s *authService) CurrentUser(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	if !actor.Authenticated() {
		return nil, apperrors.Unauthenticated()
	}
	user, err := s.repo.User.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthenticated()
		}
		return nil, lookupError(s.logger, err, "User", actor.ID)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Authenticate 校验 Token 并加载当前用户；任何失败均视为未认证
func (s *authService) Authenticate(ctx context.Context, token string) (policy.Actor, *jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return policy.Guest, nil, apperrors.Unauthenticated()
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("查询 Token 黑名单失败", zap.Error(err))
		return policy.Guest, nil, apperrors.Internal(err)
	}
	if revoked {
		return policy.Guest, nil, apperrors.Unauthenticated()
	}

	// 角色以数据库为准，Token 中的角色可能已过期
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Guest, nil, apperrors.Unauthenticated()
		}
		return policy.Guest, nil, lookupError(s.logger, err, "User", claims.UserID)
	}

	return policy.Actor{ID: user.ID, Role: user.Role, DivisionID: user.DivisionID}, claims, nil
}
