package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
	"github.com/eyesmystery/bookclub-api/pkg/jwt"
	"github.com/eyesmystery/bookclub-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult *dto.AuthResponse
	registerErr    error
	lastRegister   *dto.RegisterRequest
	loginResult    *dto.AuthResponse
	loginErr       error
	logoutErr      error
	logoutClaims   *jwt.Claims
	currentResult  *dto.UserResponse
	currentErr     error
}

func (m *mockAuthService) Register(_ context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	m.lastRegister = req
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.AuthResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.logoutClaims = claims
	return m.logoutErr
}
func (m *mockAuthService) CurrentUser(_ context.Context, _ policy.Actor) (*dto.UserResponse, error) {
	return m.currentResult, m.currentErr
}
func (m *mockAuthService) Authenticate(_ context.Context, _ string) (policy.Actor, *jwt.Claims, error) {
	return policy.Guest, nil, apperrors.Unauthenticated()
}

// ── Mock BookService ──

type mockBookService struct {
	listResult *dto.PageResult[dto.BookResponse]
	listErr    error
	lastQuery  *dto.BookListQuery
	getResult  *dto.BookResponse
	getErr     error
	likeResult *dto.LikeResponse
	likeErr    error
	deleteErr  error
	lastID     uint
}

func (m *mockBookService) List(_ context.Context, _ policy.Actor, q *dto.BookListQuery) (*dto.PageResult[dto.BookResponse], error) {
	m.lastQuery = q
	return m.listResult, m.listErr
}
func (m *mockBookService) Popular(_ context.Context, _ policy.Actor, _ int) ([]dto.BookResponse, error) {
	return nil, nil
}
func (m *mockBookService) Recent(_ context.Context, _ policy.Actor, _ int) ([]dto.BookResponse, error) {
	return nil, nil
}
func (m *mockBookService) Reviewed(_ context.Context, _ policy.Actor, _ *dto.PageQuery) (*dto.PageResult[dto.BookResponse], error) {
	return m.listResult, m.listErr
}
func (m *mockBookService) Get(_ context.Context, _ policy.Actor, id uint) (*dto.BookResponse, error) {
	m.lastID = id
	return m.getResult, m.getErr
}
func (m *mockBookService) Create(_ context.Context, _ policy.Actor, _ *dto.CreateBookRequest) (*dto.BookResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockBookService) Update(_ context.Context, _ policy.Actor, _ uint, _ *dto.UpdateBookRequest) (*dto.BookResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockBookService) Delete(_ context.Context, _ policy.Actor, id uint) error {
	m.lastID = id
	return m.deleteErr
}
func (m *mockBookService) ToggleLike(_ context.Context, _ policy.Actor, _ uint) (*dto.LikeResponse, error) {
	return m.likeResult, m.likeErr
}

// ── Mock ReviewService ──

type mockReviewService struct {
	submitResult *dto.ReviewResponse
	submitErr    error
}

func (m *mockReviewService) Submit(_ context.Context, _ policy.Actor, _ uint, _ *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockReviewService) ListByBook(_ context.Context, _ policy.Actor, _ uint, _ *dto.PageQuery) (*dto.PageResult[dto.ReviewResponse], error) {
	return &dto.PageResult[dto.ReviewResponse]{Items: []dto.ReviewResponse{}, Page: 1, PerPage: 15}, nil
}
func (m *mockReviewService) Delete(_ context.Context, _ policy.Actor, _ uint) error {
	return nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportUsers(_ context.Context, _ policy.Actor) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

var testActor = policy.Actor{ID: 1, Role: "admin", DivisionID: 1}

// withActor 模拟 JWT 中间件注入的调用者
func withActor(a policy.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("actor", a)
		c.Set("claims", &jwt.Claims{UserID: a.ID, Role: a.Role})
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("响应不是合法 JSON: %v (%s)", err, w.Body.String())
	}
	return body
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Register_Success(t *testing.T) {
	mock := &mockAuthService{
		registerResult: &dto.AuthResponse{
			User:  dto.UserResponse{ID: 5, Name: "Ann", Email: "ann@example.com", Role: "user"},
			Token: "test-token",
		},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/register", h.Register)
	w := serve(r, "POST", "/register", jsonBody(map[string]interface{}{
		"name":                  "Ann",
		"email":                 "ann@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
		"division_id":           1,
		"role":                  "admin",
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := parseBody(t, w)
	if body["success"] != true || body["token"] != "test-token" {
		t.Errorf("unexpected body: %v", body)
	}
	if body["message"] != "User registered successfully" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if _, ok := body["user"].(map[string]interface{}); !ok {
		t.Error("expected user object")
	}
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/register", h.Register)
	w := serve(r, "POST", "/register", jsonBody(map[string]interface{}{
		"email":    "not-an-email",
		"password": "short",
	}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := parseBody(t, w)
	if body["success"] != false {
		t.Error("expected success=false")
	}
	errs, ok := body["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected errors map, got %v", body["errors"])
	}
	for _, field := range []string{"name", "email", "password", "division_id"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for %s", field)
		}
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/login", h.Login)
	w := serve(r, "POST", "/login", bytes.NewReader([]byte("invalid json")))

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{
		loginErr: apperrors.Validation(map[string][]string{"email": {"The provided credentials are incorrect."}}),
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/login", h.Login)
	w := serve(r, "POST", "/login", jsonBody(dto.LoginRequest{Email: "a@example.com", Password: "wrong"}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := parseBody(t, w)
	errs := body["errors"].(map[string]interface{})
	if msgs := errs["email"].([]interface{}); msgs[0] != "The provided credentials are incorrect." {
		t.Errorf("unexpected email error: %v", msgs)
	}
}

func TestAuthHandler_Logout_PassesClaims(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/logout", withActor(testActor), h.Logout)
	w := serve(r, "POST", "/logout", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.logoutClaims == nil || mock.logoutClaims.UserID != testActor.ID {
		t.Error("expected claims from context to be passed to service")
	}
}

func TestAuthHandler_Me_InternalError(t *testing.T) {
	mock := &mockAuthService{currentErr: errors.New("db down")}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.GET("/user", withActor(testActor), h.Me)
	w := serve(r, "GET", "/user", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := parseBody(t, w)
	if body["message"] != "Server Error" {
		t.Errorf("internal details must not leak, got %v", body["message"])
	}
}

// ═══════════════════════════════════════════════════════════
// BookHandler Tests
// ═══════════════════════════════════════════════════════════

func TestBookHandler_List_PageEnvelope(t *testing.T) {
	mock := &mockBookService{
		listResult: &dto.PageResult[dto.BookResponse]{
			Items:   []dto.BookResponse{{ID: 1, Title: "Dune"}},
			Total:   16,
			Page:    2,
			PerPage: 15,
		},
	}
	h := NewBookHandler(mock)

	r := gin.New()
	r.GET("/books", withActor(testActor), h.List)
	w := serve(r, "GET", "/books?page=2&search=dune&sort_by=popular", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	books := parseBody(t, w)["books"].(map[string]interface{})
	if books["current_page"].(float64) != 2 || books["last_page"].(float64) != 2 || books["total"].(float64) != 16 {
		t.Errorf("unexpected page envelope: %v", books)
	}
	if len(books["data"].([]interface{})) != 1 {
		t.Error("expected 1 item in data")
	}
	if mock.lastQuery.Search != "dune" || mock.lastQuery.SortBy != "popular" {
		t.Errorf("query not bound: %+v", mock.lastQuery)
	}
}

func TestBookHandler_List_InvalidSort(t *testing.T) {
	h := NewBookHandler(&mockBookService{})

	r := gin.New()
	r.GET("/books", withActor(testActor), h.List)
	w := serve(r, "GET", "/books?sort_by=price", nil)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestBookHandler_Get_InvalidID(t *testing.T) {
	mock := &mockBookService{}
	h := NewBookHandler(mock)

	r := gin.New()
	r.GET("/books/:id", withActor(testActor), h.Get)
	w := serve(r, "GET", "/books/abc", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if parseBody(t, w)["message"] != "Book not found" {
		t.Error("unexpected not found message")
	}
}

func TestBookHandler_Get_NotFound(t *testing.T) {
	mock := &mockBookService{getErr: apperrors.NotFound("Book")}
	h := NewBookHandler(mock)

	r := gin.New()
	r.GET("/books/:id", withActor(testActor), h.Get)
	w := serve(r, "GET", "/books/42", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if mock.lastID != 42 {
		t.Errorf("expected id 42, got %d", mock.lastID)
	}
}

func TestBookHandler_ToggleLike(t *testing.T) {
	cases := []struct {
		liked   bool
		message string
	}{
		{true, "Book liked successfully"},
		{false, "Book unliked successfully"},
	}
	for _, tc := range cases {
		mock := &mockBookService{likeResult: &dto.LikeResponse{Liked: tc.liked, LikesCount: 3}}
		h := NewBookHandler(mock)

		r := gin.New()
		r.POST("/books/:id/like", withActor(testActor), h.ToggleLike)
		w := serve(r, "POST", "/books/1/like", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := parseBody(t, w)
		if body["liked"] != tc.liked || body["likes_count"].(float64) != 3 || body["message"] != tc.message {
			t.Errorf("unexpected body: %v", body)
		}
	}
}

func TestBookHandler_Delete_Forbidden(t *testing.T) {
	mock := &mockBookService{deleteErr: apperrors.Forbidden(policy.MsgAdminRequired)}
	h := NewBookHandler(mock)

	r := gin.New()
	r.DELETE("/books/:id", withActor(testActor), h.Delete)
	w := serve(r, "DELETE", "/books/1", nil)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if parseBody(t, w)["message"] != policy.MsgAdminRequired {
		t.Error("unexpected forbidden message")
	}
}

// ═══════════════════════════════════════════════════════════
// ReviewHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReviewHandler_Submit_Duplicate(t *testing.T) {
	mock := &mockReviewService{submitErr: apperrors.Duplicate("You have already reviewed this book")}
	h := NewReviewHandler(mock)

	r := gin.New()
	r.POST("/books/:id/review", withActor(testActor), h.Submit)
	w := serve(r, "POST", "/books/1/review", jsonBody(map[string]interface{}{"rating": 4}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := parseBody(t, w)
	if body["message"] != "You have already reviewed this book" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if _, ok := body["errors"]; ok {
		t.Error("duplicate action should not carry field errors")
	}
}

func TestReviewHandler_Submit_RatingOutOfRange(t *testing.T) {
	h := NewReviewHandler(&mockReviewService{})

	r := gin.New()
	r.POST("/books/:id/review", withActor(testActor), h.Submit)
	w := serve(r, "POST", "/books/1/review", jsonBody(map[string]interface{}{"rating": 6}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	errs := parseBody(t, w)["errors"].(map[string]interface{})
	if _, ok := errs["rating"]; !ok {
		t.Error("expected rating error")
	}
}

func TestReviewHandler_Submit_Created(t *testing.T) {
	mock := &mockReviewService{submitResult: &dto.ReviewResponse{ID: 9, Rating: 5}}
	h := NewReviewHandler(mock)

	r := gin.New()
	r.POST("/books/:id/review", withActor(testActor), h.Submit)
	w := serve(r, "POST", "/books/1/review", jsonBody(map[string]interface{}{"rating": 5, "comment": "Great"}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if parseBody(t, w)["review"].(map[string]interface{})["id"].(float64) != 9 {
		t.Error("expected review in body")
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportUsers_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("fake-excel-content"),
		filename: "members_20260101.xlsx",
	}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/users/export", withActor(testActor), h.ExportUsers)
	w := serve(r, "GET", "/users/export", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''members_20260101.xlsx" {
		t.Errorf("unexpected content disposition: %s", cd)
	}
	if w.Body.String() != "fake-excel-content" {
		t.Error("unexpected body")
	}
}

func TestExportHandler_ExportUsers_Forbidden(t *testing.T) {
	mock := &mockExportService{err: apperrors.Forbidden(policy.MsgAdminRequired)}
	h := NewExportHandler(mock)

	r := gin.New()
	r.GET("/users/export", withActor(testActor), h.ExportUsers)
	w := serve(r, "GET", "/users/export", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
