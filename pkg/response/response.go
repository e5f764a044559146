package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

// Page 分页数据（data / current_page / per_page / total / last_page）
type Page struct {
	Data        interface{} `json:"data"`
	CurrentPage int         `json:"current_page"`
	PerPage     int         `json:"per_page"`
	Total       int64       `json:"total"`
	LastPage    int         `json:"last_page"`
}

// NewPage 构造分页数据，last_page 至少为 1
func NewPage(data interface{}, total int64, page, perPage int) Page {
	lastPage := 1
	if perPage > 0 && total > 0 {
		lastPage = int(total) / perPage
		if int(total)%perPage > 0 {
			lastPage++
		}
	}
	return Page{
		Data:        data,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
}

// ── 成功响应 ──

// OK 200 成功响应：{success:true, <key>: data}
func OK(c *gin.Context, key string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, key: data})
}

// OKMessage 200 带提示信息：{success:true, message, <key>: data}
// key 为空时只返回 message
func OKMessage(c *gin.Context, message, key string, data interface{}) {
	body := gin.H{"success": true, "message": message}
	if key != "" {
		body[key] = data
	}
	c.JSON(http.StatusOK, body)
}

// Created 201 创建成功：{success:true, message, <key>: data}
func Created(c *gin.Context, message, key string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, key: data})
}

// JSON 自定义状态码与附加字段
func JSON(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// ── 错误响应 ──

// Error 通用错误响应：{success:false, message, errors?}
func Error(c *gin.Context, httpStatus int, message string, fields map[string][]string) {
	body := gin.H{"success": false, "message": message}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	c.AbortWithStatusJSON(httpStatus, body)
}

// Unauthorized 401
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthenticated.", nil)
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Server Error", nil)
}

// Fail 按 AppError 类别写出错误响应；非 AppError 一律视为 500
func Fail(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindInternal {
		InternalError(c)
		return
	}
	Error(c, appErr.Kind.HTTPStatus(), appErr.Message, appErr.Fields)
}
