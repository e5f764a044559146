package jwt

import (
	"testing"
	"time"

	"github.com/eyesmystery/bookclub-api/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:  720 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken(7, "admin", 2)
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != 7 {
		t.Errorf("期望 UserID=7，实际=%d", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.DivisionID != 2 {
		t.Errorf("期望 DivisionID=2，实际=%d", claims.DivisionID)
	}
	if claims.Issuer != "bookclub-api" {
		t.Errorf("期望 Issuer=bookclub-api，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}

	// 检查过期时间约为 30 天
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 719*time.Hour || ttl > 721*time.Hour {
		t.Errorf("TTL 期望约720h，实际=%v", ttl)
	}
}

func TestGenerateAccessToken_UniqueJTI(t *testing.T) {
	m := newTestManager()

	t1, _ := m.GenerateAccessToken(1, "user", 1)
	t2, _ := m.GenerateAccessToken(1, "user", 1)
	c1, _ := m.ParseToken(t1)
	c2, _ := m.ParseToken(t2)
	if c1 == nil || c2 == nil {
		t.Fatal("token 解析失败")
	}
	if c1.ID == c2.ID {
		t.Error("同一用户的两个 token 应有不同的 JTI")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseToken("invalid.token.string")
	if err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret: "different-secret-key",
		TokenTTL:  time.Hour,
	})

	token, _ := m1.GenerateAccessToken(1, "admin", 1)
	_, err := m2.ParseToken(token)
	if err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:  time.Hour,
		Issuer:    "someone-else",
	})

	token, _ := m1.GenerateAccessToken(1, "admin", 1)
	if _, err := m2.ParseToken(token); err == nil {
		t.Error("签发者不匹配的 token 不应通过验证")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	// 创建一个 TTL 极短的 manager 来测试过期
	m := NewManager(&config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  1 * time.Millisecond,
	})

	token, _ := m.GenerateAccessToken(1, "admin", 1)
	time.Sleep(10 * time.Millisecond)

	_, err := m.ParseToken(token)
	if err == nil {
		t.Error("过期 token 不应通过验证")
	}
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
