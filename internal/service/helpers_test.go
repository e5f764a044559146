package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyesmystery/bookclub-api/config"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/repository"
	"github.com/eyesmystery/bookclub-api/internal/testutil"
	"github.com/eyesmystery/bookclub-api/pkg/jwt"
)

// ── 测试环境 ──

type testEnv struct {
	db     *gorm.DB
	repo   *repository.Repository
	policy *policy.Policy
	pager  pager
	logger *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	return &testEnv{
		db:     db,
		repo:   repository.NewRepository(db),
		policy: policy.New(),
		pager:  newPager(&config.PaginationConfig{DefaultPerPage: 15, MaxPerPage: 100}),
		logger: zap.NewNop(),
	}
}

func actorOf(u *model.User) policy.Actor {
	return policy.Actor{ID: u.ID, Role: u.Role, DivisionID: u.DivisionID}
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TokenTTL:  time.Hour,
	})
}

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

// ── mockBlacklist ──

type mockBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: map[string]time.Duration{}}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}
