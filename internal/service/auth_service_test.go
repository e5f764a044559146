package service

import (
	"context"
	"errors"
	"testing"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	"github.com/eyesmystery/bookclub-api/internal/testutil"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

func newAuthSvc(t *testing.T) (*testEnv, AuthService, *mockBlacklist) {
	env := newTestEnv(t)
	bl := newMockBlacklist()
	return env, NewAuthService(env.repo, newTestJWT(), bl, env.logger), bl
}

func fieldMessages(t *testing.T, err error, field string) []string {
	t.Helper()
	appErr, ok := apperrors.As(err)
	if !ok {
		t.Fatalf("期望 AppError，实际: %v", err)
	}
	return appErr.Fields[field]
}

// ────────────────────── Register ──────────────────────

func TestRegister_IgnoresRequestedRole(t *testing.T) {
	env, svc, _ := newAuthSvc(t)
	d := testutil.Division(t, env.db, "Readers")

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:                 "Mallory",
		Email:                "mallory@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
		DivisionID:           d.ID,
		Role:                 model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("期望注册成功，实际: %v", err)
	}
	if resp.User.Role != model.RoleUser {
		t.Errorf("期望角色为 user，实际: %s", resp.User.Role)
	}
	if resp.Token == "" {
		t.Error("期望返回 token")
	}
	if resp.User.Division == nil || resp.User.Division.ID != d.ID {
		t.Error("期望响应附带分部信息")
	}

	var stored model.User
	env.db.First(&stored, resp.User.ID)
	if stored.Role != model.RoleUser {
		t.Errorf("数据库中角色应为 user，实际: %s", stored.Role)
	}
	if stored.PasswordHash == "secret123" {
		t.Error("密码不应明文存储")
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	env, svc, _ := newAuthSvc(t)
	d := testutil.Division(t, env.db, "Readers")
	testutil.User(t, env.db, "taken@example.com", model.RoleUser, d.ID)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:                 "Dup",
		Email:                "taken@example.com",
		Password:             "secret123",
		PasswordConfirmation: "different",
		DivisionID:           999,
	})
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("期望 Validation 错误，实际: %v", err)
	}
	if len(fieldMessages(t, err, "email")) == 0 {
		t.Error("期望 email 字段错误")
	}
	if len(fieldMessages(t, err, "password")) == 0 {
		t.Error("期望 password 字段错误")
	}
	if len(fieldMessages(t, err, "division_id")) == 0 {
		t.Error("期望 division_id 字段错误")
	}
}

// ────────────────────── Login ──────────────────────

func TestLogin_GenericErrorForBadCredentials(t *testing.T) {
	env, svc, _ := newAuthSvc(t)
	d := testutil.Division(t, env.db, "Readers")
	testutil.User(t, env.db, "alice@example.com", model.RoleUser, d.ID)

	cases := []dto.LoginRequest{
		{Email: "alice@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "password"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), &req)
		msgs := fieldMessages(t, err, "email")
		if len(msgs) != 1 || msgs[0] != msgBadCredentials {
			t.Errorf("%s: 期望统一的凭证错误提示，实际: %v", req.Email, msgs)
		}
	}
}

func TestLogin_CaseInsensitiveEmail(t *testing.T) {
	env, svc, _ := newAuthSvc(t)
	d := testutil.Division(t, env.db, "Readers")
	u := testutil.User(t, env.db, "alice@example.com", model.RoleUser, d.ID)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "Alice@Example.com", Password: "password"})
	if err != nil {
		t.Fatalf("期望登录成功，实际: %v", err)
	}
	if resp.User.ID != u.ID {
		t.Errorf("期望用户 %d，实际 %d", u.ID, resp.User.ID)
	}
}

// ────────────────────── Authenticate / Logout ──────────────────────

func TestAuthenticate_LogoutRevokesOnlyPresentedToken(t *testing.T) {
	env, svc, bl := newAuthSvc(t)
	d := testutil.Division(t, env.db, "Readers")
	testutil.User(t, env.db, "alice@example.com", model.RoleAdmin, d.ID)
	ctx := context.Background()

	first, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	second, _ := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password"})

	actor, claims, err := svc.Authenticate(ctx, first.Token)
	if err != nil {
		t.Fatalf("期望认证成功，实际: %v", err)
	}
	if !actor.IsAdmin() {
		t.Error("期望角色取自数据库")
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("登出失败: %v", err)
	}
	if len(bl.revoked) != 1 {
		t.Errorf("期望仅吊销 1 个 token，实际 %d", len(bl.revoked))
	}

	if _, _, err := svc.Authenticate(ctx, first.Token); !apperrors.Is(err, apperrors.KindUnauthenticated) {
		t.Errorf("已吊销的 token 应返回 Unauthenticated，实际: %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, second.Token); err != nil {
		t.Errorf("其他 token 应仍然有效，实际: %v", err)
	}
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	env, svc, _ := newAuthSvc(t)
	d := testutil.Division(t, env.db, "Readers")
	u := testutil.User(t, env.db, "gone@example.com", model.RoleUser, d.ID)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "gone@example.com", Password: "password"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if err := env.repo.User.Delete(ctx, u.ID); err != nil {
		t.Fatalf("删除用户失败: %v", err)
	}

	if _, _, err := svc.Authenticate(ctx, resp.Token); !apperrors.Is(err, apperrors.KindUnauthenticated) {
		t.Errorf("用户已删除时应返回 Unauthenticated，实际: %v", err)
	}
	if _, err := svc.CurrentUser(ctx, policy.Actor{ID: u.ID, Role: model.RoleUser}); !apperrors.Is(err, apperrors.KindUnauthenticated) {
		t.Errorf("CurrentUser 应返回 Unauthenticated，实际: %v", err)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	_, svc, _ := newAuthSvc(t)
	if _, _, err := svc.Authenticate(context.Background(), "not-a-token"); !apperrors.Is(err, apperrors.KindUnauthenticated) {
		t.Errorf("期望 Unauthenticated，实际: %v", err)
	}
}

func TestAuthenticate_BlacklistFailure(t *testing.T) {
	env, svc, bl := newAuthSvc(t)
	d := testutil.Division(t, env.db, "Readers")
	testutil.User(t, env.db, "alice@example.com", model.RoleUser, d.ID)
	ctx := context.Background()

	resp, _ := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password"})
	bl.err = errors.New("redis down")

	if _, _, err := svc.Authenticate(ctx, resp.Token); !apperrors.Is(err, apperrors.KindInternal) {
		t.Errorf("黑名单不可用时应返回 Internal，实际: %v", err)
	}
}
