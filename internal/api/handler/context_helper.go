package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eyesmystery/bookclub-api/internal/api/middleware"
	"github.com/eyesmystery/bookclub-api/internal/dto"
	"github.com/eyesmystery/bookclub-api/internal/policy"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
	"github.com/eyesmystery/bookclub-api/pkg/response"
	"github.com/eyesmystery/bookclub-api/pkg/validator"
)

// actor 当前调用者（由 JWT 中间件注入，未认证时为访客）
func actor(c *gin.Context) policy.Actor {
	return middleware.CurrentActor(c)
}

// parseID 解析路径参数 id；非法 id 与不存在的记录一样返回 404
func parseID(c *gin.Context, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c, resource+" not found")
		return 0, false
	}
	return uint(id), true
}

// bindJSON 绑定并校验请求体，失败时写入 422（或 413）
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

// bindQuery 绑定并校验查询参数
func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		writeBindError(c, err)
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, "The request body is too large.", nil)
		return
	}
	response.Fail(c, apperrors.Validation(validator.Translate(err)))
}

// handleError 业务错误统一出口：按类别映射状态码，内部错误记入请求日志
func handleError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); !ok || appErr.Kind == apperrors.KindInternal {
		_ = c.Error(err)
	}
	response.Fail(c, err)
}

// writePage 分页响应：{success, <key>: {data, current_page, per_page, total, last_page}}
func writePage[T any](c *gin.Context, key string, page *dto.PageResult[T]) {
	response.OK(c, key, response.NewPage(page.Items, page.Total, page.Page, page.PerPage))
}
