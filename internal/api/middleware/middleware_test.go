package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eyesmystery/bookclub-api/internal/policy"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
	"github.com/eyesmystery/bookclub-api/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── mockAuthenticator ──

type mockAuthenticator struct {
	actor     policy.Actor
	err       error
	lastToken string
}

func (m *mockAuthenticator) Authenticate(_ context.Context, token string) (policy.Actor, *jwt.Claims, error) {
	m.lastToken = token
	if m.err != nil {
		return policy.Guest, nil, m.err
	}
	return m.actor, &jwt.Claims{UserID: m.actor.ID, Role: m.actor.Role}, nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// JWTAuth
// ═══════════════════════════════════════════════════════════

func TestJWTAuth(t *testing.T) {
	member := policy.Actor{ID: 7, Role: "user", DivisionID: 1}

	tests := []struct {
		name       string
		header     string
		authErr    error
		wantStatus int
	}{
		{"缺少 Authorization", "", nil, http.StatusUnauthorized},
		{"非 Bearer 方案", "Basic abc", nil, http.StatusUnauthorized},
		{"空 Token", "Bearer   ", nil, http.StatusUnauthorized},
		{"Token 无效", "Bearer bad", apperrors.Unauthenticated(), http.StatusUnauthorized},
		{"黑名单查询失败", "Bearer good", apperrors.Internal(context.DeadlineExceeded), http.StatusInternalServerError},
		{"认证通过", "Bearer good", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthenticator{actor: member, err: tt.authErr}
			r := gin.New()
			r.GET("/me", JWTAuth(auth), func(c *gin.Context) {
				if CurrentActor(c).ID != member.ID || CurrentClaims(c) == nil {
					t.Error("expected actor and claims in context")
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestJWTAuth_CaseInsensitiveScheme(t *testing.T) {
	auth := &mockAuthenticator{actor: policy.Actor{ID: 1, Role: "user"}}
	r := gin.New()
	r.GET("/me", JWTAuth(auth), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "bearer token-123")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if auth.lastToken != "token-123" {
		t.Errorf("unexpected token: %q", auth.lastToken)
	}
}

// ═══════════════════════════════════════════════════════════
// Authorize
// ═══════════════════════════════════════════════════════════

func TestAuthorize(t *testing.T) {
	pol := policy.New()

	tests := []struct {
		name       string
		actor      *policy.Actor
		wantStatus int
	}{
		{"访客", nil, http.StatusUnauthorized},
		{"普通用户", &policy.Actor{ID: 2, Role: "user"}, http.StatusForbidden},
		{"版主", &policy.Actor{ID: 3, Role: "moderator"}, http.StatusForbidden},
		{"管理员", &policy.Actor{ID: 1, Role: "admin"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			r := gin.New()
			r.POST("/books", func(c *gin.Context) {
				if tt.actor != nil {
					c.Set(actorKey, *tt.actor)
				}
				c.Next()
			}, Authorize(pol, policy.ResourceBook, policy.ActionCreate), func(c *gin.Context) {
				reached = true
				c.Status(http.StatusCreated)
			})

			w := serve(r, httptest.NewRequest("POST", "/books", strings.NewReader("{}")))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if reached != (tt.wantStatus == http.StatusCreated) {
				t.Errorf("handler reached=%v", reached)
			}
		})
	}
}

func TestCurrentActor_DefaultsToGuest(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if CurrentActor(c).Authenticated() {
		t.Error("expected guest")
	}
	if CurrentClaims(c) != nil {
		t.Error("expected nil claims")
	}
}

// ═══════════════════════════════════════════════════════════
// RequestID / CORS / BodyLimit / SecurityHeaders / Logger
// ═══════════════════════════════════════════════════════════

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	// 自动生成
	w := serve(r, httptest.NewRequest("GET", "/", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("expected generated uuid, got %q", w.Header().Get("X-Request-ID"))
	}

	// 沿用外部传入
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = serve(r, req)
	if w.Header().Get("X-Request-ID") != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("expected passthrough, got %q", w.Header().Get("X-Request-ID"))
	}

	// 过长则重新生成
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	w = serve(r, req)
	if w.Header().Get("X-Request-ID") == strings.Repeat("x", requestIDMaxLen+1) {
		t.Error("overlong request id should be replaced")
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("expected allowed origin to be echoed")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unexpected origin allowed")
	}

	req = httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = serve(r, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := serve(r, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "http://anywhere.example" {
		t.Error("wildcard should allow any origin")
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("a", 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}

	w = serve(r, httptest.NewRequest("POST", "/", strings.NewReader("{}")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest("GET", "/", nil))
	if w.Header().Get("X-Frame-Options") != "DENY" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, httptest.NewRequest("GET", "/ok", nil))
	serve(r, httptest.NewRequest("GET", "/bad", nil))
	serve(r, httptest.NewRequest("GET", "/boom", nil))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	want := []string{"info", "warn", "error"}
	for i, e := range entries {
		if e.Level.String() != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], e.Level.String())
		}
		if e.ContextMap()["request_id"] == "" {
			t.Errorf("entry %d: missing request_id", i)
		}
	}
}
