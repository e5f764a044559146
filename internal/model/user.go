package model

// 用户角色
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// ValidRole 判断角色取值是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// User 用户表（users）
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(255);not null"                json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"    json:"email"`
	PasswordHash string `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'user'"  json:"role"`
	DivisionID   uint   `gorm:"not null;index"                            json:"division_id"`

	// 关联
	Division         *Division `gorm:"foreignKey:DivisionID;constraint:OnDelete:RESTRICT" json:"division,omitempty"`
	RecommendedBooks []Book    `gorm:"foreignKey:RecommendedByUserID"                      json:"-"`
	Articles         []Article `gorm:"foreignKey:AuthorID"                                 json:"-"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
