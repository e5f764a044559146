package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ── 通用查询参数 ──

// PageQuery 分页参数；per_page 缺省时使用配置默认值
type PageQuery struct {
	Page    int `form:"page"     binding:"omitempty,min=1"`
	PerPage int `form:"per_page" binding:"omitempty,min=1"`
}

// LimitQuery 限量列表参数
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// PublishFlag 发布开关
// 接受 true/false、1/0、"1"/"0"、任意非空字符串（如日期）与 null
type PublishFlag struct {
	Set   bool // 请求中是否出现该字段
	Value bool
}

// UnmarshalJSON 按真值语义解析
func (f *PublishFlag) UnmarshalJSON(data []byte) error {
	f.Set = true
	data = bytes.TrimSpace(data)

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch t := v.(type) {
	case nil:
		f.Value = false
	case bool:
		f.Value = t
	case float64:
		f.Value = t != 0
	case string:
		f.Value = truthyString(t)
	default:
		f.Value = true
	}
	return nil
}

func truthyString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return true
}

// Nullable 可置空字段：区分未提供与显式 null
type Nullable[T any] struct {
	Set   bool // 请求中是否出现该字段
	Value *T   // 显式 null 时为 nil
}

// NullOf 构造已设置的值
func NullOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// UnmarshalJSON 出现即视为已设置，null 清空
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Apply 字段已提供时写入 dst（含置空）
func (n Nullable[T]) Apply(dst **T) {
	if n.Set {
		*dst = n.Value
	}
}

// ── 通用嵌套对象 ──

// UserBrief 用户公开信息
type UserBrief struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DivisionBrief 分部简要信息
type DivisionBrief struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PageResult 分页结果
type PageResult[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}
