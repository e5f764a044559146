package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Page 分页参数（page 从 1 开始）
type Page struct {
	Page    int
	PerPage int
}

// Offset 计算偏移量
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// paginate 分页 scope
func paginate(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.PerPage <= 0 {
			return db
		}
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern 生成大小写不敏感的子串匹配模式
func likePattern(term string) string {
	return "%" + strings.ToLower(likeEscaper.Replace(term)) + "%"
}

// search 在多个列上做大小写不敏感的子串匹配（OR）
// 空关键字不生效
func search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := likePattern(term)
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// orderBy 按允许的排序键排序，未知键回退到 fallback；tiebreak 追加在排序键之后保证分页稳定
func orderBy(sortKey, dir string, allowed map[string]string, fallback, tiebreak string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		expr, ok := allowed[sortKey]
		if !ok {
			expr = fallback
		}
		if dir != "asc" {
			dir = "desc"
		}
		db = db.Order(expr + " " + strings.ToUpper(dir))
		if tiebreak != "" {
			db = db.Order(tiebreak)
		}
		return db
	}
}

// listPage 先计数再查询当前页；base 每次调用返回新的查询构造器
func listPage[T any](base func() *gorm.DB, p Page, find func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}

	if err := find(base()).Scopes(paginate(p)).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
