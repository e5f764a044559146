package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
)

// Kind 业务错误类别，决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindDuplicateAction
	KindConstraint
)

// HTTPStatus 错误类别对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindDuplicateAction, KindConstraint:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// AppError 统一业务错误
// Fields 仅在字段级校验错误时存在：字段名 → 错误信息列表
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// ── 构造函数 ──

// Unauthenticated 未认证（缺少、无效或已吊销的 Token）
func Unauthenticated() *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: "Unauthenticated."}
}

// Forbidden 已认证但无权限
func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// NotFound 资源不存在，resource 形如 "Book"
func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

// Validation 字段级校验失败，摘要信息取自首个字段错误
func Validation(fields map[string][]string) *AppError {
	return &AppError{Kind: KindValidation, Message: summarize(fields), Fields: fields}
}

// FieldError 单字段校验失败
func FieldError(field, message string) *AppError {
	return Validation(map[string][]string{field: {message}})
}

// Duplicate 重复操作（如重复评论）
func Duplicate(message string) *AppError {
	return &AppError{Kind: KindDuplicateAction, Message: message}
}

// Constraint 存储层约束冲突（唯一键、外键）
func Constraint(field, message string) *AppError {
	return &AppError{
		Kind:    KindConstraint,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// Internal 包装未预期的错误，对外统一返回 "Server Error"
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Server Error", Err: err}
}

// As 提取 *AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is 判断 err 是否为指定类别的业务错误
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// summarize 生成校验错误摘要："<首条信息> (and N more errors)"
func summarize(fields map[string][]string) string {
	if len(fields) == 0 {
		return "The given data was invalid."
	}
	keys := make([]string, 0, len(fields))
	total := 0
	for k, msgs := range fields {
		keys = append(keys, k)
		total += len(msgs)
	}
	sort.Strings(keys)

	first := ""
	for _, k := range keys {
		if len(fields[k]) > 0 {
			first = fields[k][0]
			break
		}
	}
	if first == "" {
		return "The given data was invalid."
	}

	switch rest := total - 1; {
	case rest == 1:
		return first + " (and 1 more error)"
	case rest > 1:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	default:
		return first
	}
}
