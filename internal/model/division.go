package model

// Division 分部表（divisions）
type Division struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Description string `gorm:"type:text"                              json:"description"`

	// 关联
	Users    []User    `gorm:"foreignKey:DivisionID" json:"-"`
	Events   []Event   `gorm:"foreignKey:DivisionID" json:"-"`
	Articles []Article `gorm:"foreignKey:DivisionID" json:"-"`
	News     []News    `gorm:"foreignKey:DivisionID" json:"-"`

	// 聚合计数，由子查询填充
	UsersCount    int64 `gorm:"->;-:migration" json:"-"`
	EventsCount   int64 `gorm:"->;-:migration" json:"-"`
	ArticlesCount int64 `gorm:"->;-:migration" json:"-"`
	NewsCount     int64 `gorm:"->;-:migration" json:"-"`
}

// TableName 指定表名
func (Division) TableName() string { return "divisions" }

// DefaultDivisionNames 初始分部（与 000002 迁移保持一致）
var DefaultDivisionNames = []string{
	"برج القراءة",
	"برج الخبرة",
	"برج الفلسفة",
	"برج السينما",
}
