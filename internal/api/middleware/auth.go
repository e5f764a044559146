package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/pkg/jwt"
	"github.com/eyesmystery/bookclub-api/pkg/response"
)

const (
	actorKey  = "actor"
	claimsKey = "claims"
)

// Authenticator 校验 Bearer Token 并解析出当前用户
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (policy.Actor, *jwt.Claims, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取 Token，校验签名、黑名单与用户是否仍存在
func JWTAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c)
			return
		}

		actor, claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}

		// 将用户信息注入上下文
		c.Set(actorKey, actor)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// Authorize 路由级授权，在绑定请求体之前拒绝无权限的调用者
func Authorize(pol *policy.Policy, res policy.Resource, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pol.Authorize(CurrentActor(c), action, res, nil); err != nil {
			response.Fail(c, err)
			return
		}
		c.Next()
	}
}

// CurrentActor 当前请求的调用者；未认证时返回访客
func CurrentActor(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Guest
}

// CurrentClaims 当前请求的 Token 声明
func CurrentClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
