// Package policy 声明式授权表。
//
// 判定顺序：访客 → 禁止作用于自身 → 角色 → 所有者。
// 未登记的 (资源, 动作) 一律拒绝。
package policy

import (
	"slices"

	"github.com/eyesmystery/bookclub-api/internal/model"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

// Action 操作类型
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
	ActionLike   Action = "like"
	ActionReview Action = "review"
)

// Resource 资源类型
type Resource string

const (
	ResourceDivision Resource = "division"
	ResourceUser     Resource = "user"
	ResourceBook     Resource = "book"
	ResourceReview   Resource = "review"
	ResourceEvent    Resource = "event"
	ResourceArticle  Resource = "article"
	ResourceNews     Resource = "news"
)

// 拒绝信息
const (
	MsgAdminRequired = "Access denied. Admin privileges required."
	MsgAccessDenied  = "Access denied."
	MsgSelfDelete    = "You cannot delete your own account."
)

// Actor 请求发起者；ID 为 0 表示访客
type Actor struct {
	ID         uint
	Role       string
	DivisionID uint
}

// Guest 未认证访客
var Guest = Actor{}

// Authenticated 是否已认证
func (a Actor) Authenticated() bool { return a.ID != 0 }

// IsAdmin 是否为管理员
func (a Actor) IsAdmin() bool { return a.Authenticated() && a.Role == model.RoleAdmin }

// Target 操作目标；OwnerID 为目标所属用户（User 资源即其自身 ID）
type Target struct {
	OwnerID uint
}

// Rule 单条授权规则
type Rule struct {
	Public   bool     // 访客可访问
	Roles    []string // 非空时限定角色；为空表示任意已认证用户
	Owner    bool     // 目标所有者同样放行（与 Roles 为"或"关系）
	DenySelf bool     // 目标为自身时拒绝，优先于角色
}

type key struct {
	resource Resource
	action   Action
}

// Policy 授权表
type Policy struct {
	rules  map[key]Rule
	fields map[Resource]map[string][]string // 受限字段 → 可写角色
}

// New 创建默认授权表
func New() *Policy {
	p := &Policy{
		rules:  make(map[key]Rule),
		fields: make(map[Resource]map[string][]string),
	}

	admin := Rule{Roles: []string{model.RoleAdmin}}
	member := Rule{}

	// 分部：公开浏览，管理员维护
	p.Allow(ResourceDivision, ActionList, Rule{Public: true})
	p.Allow(ResourceDivision, ActionView, Rule{Public: true})
	p.Allow(ResourceDivision, ActionCreate, admin)
	p.Allow(ResourceDivision, ActionUpdate, admin)
	p.Allow(ResourceDivision, ActionDelete, admin)

	// 用户
	p.Allow(ResourceUser, ActionList, admin)
	p.Allow(ResourceUser, ActionExport, admin)
	p.Allow(ResourceUser, ActionView, Rule{Roles: []string{model.RoleAdmin}, Owner: true})
	p.Allow(ResourceUser, ActionUpdate, Rule{Roles: []string{model.RoleAdmin}, Owner: true})
	p.Allow(ResourceUser, ActionDelete, Rule{Roles: []string{model.RoleAdmin}, DenySelf: true})
	p.RestrictField(ResourceUser, "role", model.RoleAdmin)

	// 书籍
	p.Allow(ResourceBook, ActionList, member)
	p.Allow(ResourceBook, ActionView, member)
	p.Allow(ResourceBook, ActionLike, member)
	p.Allow(ResourceBook, ActionReview, member)
	p.Allow(ResourceBook, ActionCreate, admin)
	p.Allow(ResourceBook, ActionUpdate, admin)
	p.Allow(ResourceBook, ActionDelete, admin)

	// 书评
	p.Allow(ResourceReview, ActionList, member)
	p.Allow(ResourceReview, ActionDelete, admin)

	// 活动 / 文章 / 新闻
	for _, r := range []Resource{ResourceEvent, ResourceArticle, ResourceNews} {
		p.Allow(r, ActionList, member)
		p.Allow(r, ActionView, member)
		p.Allow(r, ActionCreate, admin)
		p.Allow(r, ActionUpdate, admin)
		p.Allow(r, ActionDelete, admin)
	}

	return p
}

// Allow 登记规则（覆盖已有规则）
func (p *Policy) Allow(res Resource, action Action, rule Rule) {
	p.rules[key{res, action}] = rule
}

// RestrictField 限定字段仅指定角色可写
func (p *Policy) RestrictField(res Resource, field string, roles ...string) {
	if p.fields[res] == nil {
		p.fields[res] = make(map[string][]string)
	}
	p.fields[res][field] = roles
}

// Authorize 判定 actor 能否对 res 执行 action；target 可为 nil
func (p *Policy) Authorize(actor Actor, action Action, res Resource, target *Target) error {
	rule, ok := p.rules[key{res, action}]

	// 1. 访客
	if !actor.Authenticated() {
		if ok && rule.Public {
			return nil
		}
		return apperrors.Unauthenticated()
	}
	if !ok {
		return apperrors.Forbidden(MsgAccessDenied)
	}

	// 2. 禁止作用于自身
	if rule.DenySelf && target != nil && target.OwnerID == actor.ID {
		return apperrors.Forbidden(MsgSelfDelete)
	}

	// 3. 角色
	if len(rule.Roles) == 0 || slices.Contains(rule.Roles, actor.Role) {
		return nil
	}

	// 4. 所有者
	if rule.Owner && target != nil && target.OwnerID == actor.ID {
		return nil
	}

	if rule.Owner {
		return apperrors.Forbidden(MsgAccessDenied)
	}
	return apperrors.Forbidden(MsgAdminRequired)
}

// Can 布尔形式的 Authorize
func (p *Policy) Can(actor Actor, action Action, res Resource, target *Target) bool {
	return p.Authorize(actor, action, res, target) == nil
}

// FieldWritable 判断字段对 actor 是否可写；未受限字段均可写
func (p *Policy) FieldWritable(actor Actor, res Resource, field string) bool {
	roles, restricted := p.fields[res][field]
	if !restricted {
		return true
	}
	return actor.Authenticated() && slices.Contains(roles, actor.Role)
}
