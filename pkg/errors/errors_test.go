package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKind_HTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindDuplicateAction, http.StatusUnprocessableEntity},
		{KindConstraint, http.StatusUnprocessableEntity},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.kind.HTTPStatus(); got != tc.want {
			t.Errorf("Kind(%d): 期望 %d，实际 %d", tc.kind, tc.want, got)
		}
	}
}

func TestNotFound_Message(t *testing.T) {
	if msg := NotFound("Book").Message; msg != "Book not found" {
		t.Errorf("期望 'Book not found'，实际: %s", msg)
	}
}

func TestValidation_Summary(t *testing.T) {
	single := FieldError("title", "The title field is required.")
	if single.Message != "The title field is required." {
		t.Errorf("单字段摘要错误: %s", single.Message)
	}

	multi := Validation(map[string][]string{
		"title":   {"The title field is required."},
		"content": {"The content field is required."},
		"author":  {"The author field is required."},
	})
	want := "The author field is required. (and 2 more errors)"
	if multi.Message != want {
		t.Errorf("期望 %q，实际 %q", want, multi.Message)
	}

	if empty := Validation(nil); empty.Message != "The given data was invalid." {
		t.Errorf("空字段摘要错误: %s", empty.Message)
	}
}

func TestAs_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Forbidden("nope"))
	appErr, ok := As(wrapped)
	if !ok {
		t.Fatal("期望能从包装错误中提取 AppError")
	}
	if appErr.Kind != KindForbidden {
		t.Errorf("期望 KindForbidden，实际 %d", appErr.Kind)
	}
	if !Is(wrapped, KindForbidden) {
		t.Error("Is 应返回 true")
	}
	if _, ok := As(stderrors.New("plain")); ok {
		t.Error("普通错误不应被识别为 AppError")
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	e := Internal(cause)
	if e.Message != "Server Error" {
		t.Errorf("对外信息应为 'Server Error'，实际: %s", e.Message)
	}
	if !stderrors.Is(e, cause) {
		t.Error("Internal 应保留原始错误链")
	}
}
