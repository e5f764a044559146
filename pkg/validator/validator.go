// Package validator 将 go-playground/validator 注册为 gin 的绑定引擎，
// 并把校验错误翻译为 字段 → 信息列表 的结构。
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateTimeLayouts 可接受的日期时间格式，按顺序尝试
var DateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var setupOnce sync.Once

// Setup 配置 gin 默认校验器：使用 json 标签名并注册自定义标签
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		Register(v)
	})
}

// Register 向校验器注册标签名函数与自定义校验
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("datetime_any", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := ParseDateTime(s)
		return err == nil
	})
}

// ParseDateTime 按 DateTimeLayouts 解析时间字符串
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析时间 %q", s)
}

// Translate 将绑定/校验错误转换为 字段 → 信息列表
func Translate(err error) map[string][]string {
	fields := make(map[string][]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			name := fe.Field()
			fields[name] = append(fields[name], message(fe))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		name := typeErr.Field
		if name == "" {
			name = "body"
		}
		fields[name] = append(fields[name], fmt.Sprintf("The %s field has an invalid type.", humanize(name)))
		return fields
	}

	if errors.Is(err, io.EOF) {
		fields["body"] = []string{"The request body is empty."}
		return fields
	}

	fields["body"] = []string{"The request body is not valid JSON."}
	return fields
}

// message 生成单条字段错误信息
func message(fe validator.FieldError) string {
	name := humanize(fe.Field())
	numeric := isNumeric(fe.Kind())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min":
		if numeric {
			return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("The %s must not be greater than %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must not be greater than %s characters.", name, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", name, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "eqfield":
		return fmt.Sprintf("The %s and %s must match.", name, strings.ToLower(fe.Param()))
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", name)
	case "datetime_any":
		return fmt.Sprintf("The %s is not a valid date.", name)
	default:
		return fmt.Sprintf("The %s is invalid.", name)
	}
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
