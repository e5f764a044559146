package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eyesmystery/bookclub-api/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

const defaultIssuer = "bookclub-api"

// Claims 自定义 JWT 声明
// 角色与分部仅作参考，鉴权时以数据库中的用户为准
type Claims struct {
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	DivisionID uint   `json:"division_id"`
	jwtv5.RegisteredClaims
}

// Manager JWT 管理器
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
	issuer   string
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &Manager{
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
		issuer:   issuer,
	}
}

// GenerateAccessToken 生成 Access Token，每个 Token 带唯一 JTI 以便单独吊销
func (m *Manager) GenerateAccessToken(userID uint, role string, divisionID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		Role:       role,
		DivisionID: divisionID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.tokenTTL)),
			Issuer:    m.issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析并验证 Token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
