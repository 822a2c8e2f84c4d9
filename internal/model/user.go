package model

// ── 角色常量 ──

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User 用户表 — 对应 users
// 角色在注册时确定，应用内不提供修改角色的入口
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                      json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"          json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                      json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"     json:"role"`
	AvatarURL    string `gorm:"type:varchar(512)"                               json:"avatar_url,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
